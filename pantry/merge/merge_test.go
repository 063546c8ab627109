package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtend_NilOriginalReturnsExtension(t *testing.T) {
	ext := Mapping{"b": S(2)}

	got := Extend(nil, ext)

	require.NotNil(t, got)
	got["c"] = S(3)
	assert.Equal(t, S(3), ext["c"], "result should alias the extension mapping")
}

func TestExtend_NilExtensionIsNoop(t *testing.T) {
	orig := Mapping{"a": S(1)}

	got := Extend(orig, nil)

	assert.Equal(t, Mapping{"a": S(1)}, got)
	assert.Nil(t, Extend(nil, nil))
}

func TestExtend(t *testing.T) {
	tests := []struct {
		name string
		orig Mapping
		ext  Mapping
		want Mapping
	}{
		{
			name: "disjoint keys",
			orig: Mapping{"a": S(1)},
			ext:  Mapping{"b": S(2)},
			want: Mapping{"a": S(1), "b": S(2)},
		},
		{
			name: "lists append",
			orig: Mapping{"tags": Strings("x")},
			ext:  Mapping{"tags": Strings("y")},
			want: Mapping{"tags": Strings("x", "y")},
		},
		{
			name: "lists keep order",
			orig: Mapping{"ids": NewList(S(1), S(2))},
			ext:  Mapping{"ids": NewList(S(3), S(4))},
			want: Mapping{"ids": NewList(S(1), S(2), S(3), S(4))},
		},
		{
			name: "scalar overwrite",
			orig: Mapping{"name": S("old")},
			ext:  Mapping{"name": S("new")},
			want: Mapping{"name": S("new")},
		},
		{
			name: "list replaces scalar",
			orig: Mapping{"v": S("one")},
			ext:  Mapping{"v": Strings("two")},
			want: Mapping{"v": Strings("two")},
		},
		{
			name: "scalar replaces list",
			orig: Mapping{"v": Strings("one")},
			ext:  Mapping{"v": S(nil)},
			want: Mapping{"v": S(nil)},
		},
		{
			name: "nested mappings are overwritten, not merged",
			orig: Mapping{"rule": Mapping{"a": S(1), "b": S(2)}},
			ext:  Mapping{"rule": Mapping{"b": S(3)}},
			want: Mapping{"rule": Mapping{"b": S(3)}},
		},
		{
			name: "empty extension",
			orig: Mapping{"a": S(1)},
			ext:  Mapping{},
			want: Mapping{"a": S(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extend(tt.orig, tt.ext)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtend_MutatesOriginalListInPlace(t *testing.T) {
	list := Strings("a")
	orig := Mapping{"tags": list}
	ext := Mapping{"tags": Strings("b")}

	got := Extend(orig, ext)

	assert.Same(t, list, got["tags"])
	assert.Equal(t, Strings("a", "b"), list)
	assert.Equal(t, Strings("b"), ext["tags"], "extension must not change")
}

func TestExtend_ReturnsOriginal(t *testing.T) {
	orig := Mapping{"a": S(1)}
	got := Extend(orig, Mapping{"b": S(2)})

	got["c"] = S(3)
	assert.Equal(t, S(3), orig["c"])
}

func TestExtend_NilListIsOverwritten(t *testing.T) {
	orig := Mapping{"tags": (*List)(nil)}
	ext := Mapping{"tags": Strings("x")}

	got := Extend(orig, ext)

	assert.Equal(t, Strings("x"), got["tags"])
}

func TestExtendAll(t *testing.T) {
	got := ExtendAll(Mapping{"tags": Strings("a")},
		Mapping{"tags": Strings("b"), "name": S("first")},
		nil,
		Mapping{"tags": Strings("c"), "name": S("second")},
	)

	assert.Equal(t, Mapping{"tags": Strings("a", "b", "c"), "name": S("second")}, got)
	assert.Nil(t, ExtendAll(nil))
}

func TestExtendAll_DoesNotTouchExtensions(t *testing.T) {
	a := Mapping{"tags": Strings("x")}
	b := Mapping{"tags": Strings("y")}

	got := ExtendAll(nil, a, b)
	assert.Equal(t, Mapping{"tags": Strings("x", "y")}, got)
	assert.Equal(t, Mapping{"tags": Strings("x")}, a)
	assert.Equal(t, Mapping{"tags": Strings("y")}, b)

	orig := Mapping{}
	ExtendAll(orig, a, b)
	assert.Equal(t, Mapping{"tags": Strings("x")}, a)

	// A single extension into nil keeps Extend's identity return.
	single := Mapping{"k": S(1)}
	out := ExtendAll(nil, single)
	out["k2"] = S(2)
	assert.Contains(t, single, "k2")
}

func TestExtendCopy_DoesNotTouchInputs(t *testing.T) {
	orig := Mapping{"tags": Strings("a"), "rule": Mapping{"x": S(1)}}
	ext := Mapping{"tags": Strings("b"), "extra": Strings("z")}

	got := ExtendCopy(orig, ext)

	assert.Equal(t, Mapping{
		"tags":  Strings("a", "b"),
		"rule":  Mapping{"x": S(1)},
		"extra": Strings("z"),
	}, got)
	assert.Equal(t, Strings("a"), orig["tags"])
	assert.NotContains(t, orig, "extra")

	got["extra"].(*List).Items = append(got["extra"].(*List).Items, S("y"))
	assert.Equal(t, Strings("z"), ext["extra"])
}

func TestExtendCopy_NilOriginalCopiesExtension(t *testing.T) {
	ext := Mapping{"tags": Strings("a")}

	got := ExtendCopy(nil, ext)

	require.Equal(t, ext, got)
	got["tags"].(*List).Items = nil
	assert.Equal(t, 1, ext["tags"].(*List).Len())
}

func TestClone(t *testing.T) {
	src := Mapping{
		"name":  S("list"),
		"tags":  Strings("a", "b"),
		"rules": NewList(Mapping{"op": S("eq")}),
		"none":  (*List)(nil),
	}

	cp := Clone(src)
	require.Equal(t, src, cp)

	cp["rules"].(*List).Items[0].(Mapping)["op"] = S("ne")
	assert.Equal(t, S("eq"), src["rules"].(*List).Items[0].(Mapping)["op"])
	assert.Nil(t, Clone(nil))
}

func TestKeys(t *testing.T) {
	m := Mapping{"b": S(1), "a": S(2), "c": S(3)}
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "scalar", S(1).Kind().String())
	assert.Equal(t, "list", NewList().Kind().String())
	assert.Equal(t, "mapping", Mapping{}.Kind().String())
	assert.Equal(t, "unknown", Kind(99).String())
}
