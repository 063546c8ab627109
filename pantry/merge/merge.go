// pantry/merge/merge.go
package merge

// Extend merges extension into original and returns the result.
//
// For every key of extension:
//   - if both sides hold a *List, the extension items are appended to the
//     original list in place, keeping their order;
//   - otherwise original[key] is replaced by extension[key]. This is a
//     shallow overwrite: nested mappings are not merged.
//
// Keys present only in original are left alone and extension is never
// modified.
//
// Ownership: original is mutated and returned. When original is nil the
// extension mapping itself is returned, so the result aliases the caller's
// input. A nil extension is a no-op. Use ExtendCopy when neither input may
// be shared with the result.
//
// Extend does no locking; the caller must own original for the duration
// of the call.
func Extend(original, extension Mapping) Mapping {
	if original == nil {
		return extension
	}
	for key, ext := range extension {
		if appendList(original[key], ext) {
			continue
		}
		original[key] = ext
	}
	return original
}

// appendList appends ext's items to dst when both are non-nil lists and
// reports whether it did.
func appendList(dst, ext Value) bool {
	el, ok := ext.(*List)
	if !ok || el == nil {
		return false
	}
	dl, ok := dst.(*List)
	if !ok || dl == nil {
		return false
	}
	dl.Items = append(dl.Items, el.Items...)
	return true
}

// ExtendAll folds Extend over extensions from left to right. original is
// mutated as in Extend; the extensions never are. Every extension but the
// last is cloned before it is merged, so a later list append cannot reach
// into an earlier extension's list.
func ExtendAll(original Mapping, extensions ...Mapping) Mapping {
	for i, ext := range extensions {
		if i < len(extensions)-1 {
			ext = Clone(ext)
		}
		original = Extend(original, ext)
	}
	return original
}

// ExtendCopy is Extend on deep copies of both inputs. Neither original nor
// extension is mutated, and the result shares no lists or mappings with them.
func ExtendCopy(original, extension Mapping) Mapping {
	return Extend(Clone(original), Clone(extension))
}

// Clone returns a deep copy of m. Clone(nil) is nil.
func Clone(m Mapping) Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue returns a deep copy of v.
func CloneValue(v Value) Value {
	switch t := v.(type) {
	case *List:
		if t == nil {
			return t
		}
		items := make([]Value, len(t.Items))
		for i, item := range t.Items {
			items[i] = CloneValue(item)
		}
		return &List{Items: items}
	case Mapping:
		return Clone(t)
	default:
		// Scalars are plain values.
		return v
	}
}
