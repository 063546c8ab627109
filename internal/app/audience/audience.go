// internal/app/audience/audience.go
package audience

import (
	"errors"
	"fmt"

	"github.com/dalemusser/audiencekit/metrics"
	"github.com/dalemusser/audiencekit/pantry/merge"
	"github.com/dalemusser/audiencekit/pantry/urlutil"
	"go.uber.org/zap"
)

// ErrInvalidURL is returned by Upsert in strict mode.
var ErrInvalidURL = errors.New("not an absolute http(s) URL")

// Service runs merges and query upserts for the CLI and the HTTP API and
// records them in metrics.
type Service struct {
	logger *zap.Logger
}

// New returns a Service. A nil logger discards output.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Merge extends original with each extension in order. With isolate set
// the inputs are left untouched and the result shares nothing with them.
func (s *Service) Merge(isolate bool, original merge.Mapping, extensions ...merge.Mapping) merge.Mapping {
	mode := metrics.ModeExtend
	var out merge.Mapping
	if isolate {
		mode = metrics.ModeCopy
		out = merge.Clone(original)
		for _, ext := range extensions {
			out = merge.ExtendCopy(out, ext)
		}
	} else {
		out = merge.ExtendAll(original, extensions...)
	}
	for range extensions {
		metrics.ObserveMerge(mode)
	}

	s.logger.Debug("merged mappings",
		zap.String("mode", mode),
		zap.Int("extensions", len(extensions)),
		zap.Int("keys", len(out)),
	)
	return out
}

// Upsert applies params to rawURL in order. Every param is validated before
// any is applied. With strict set, rawURL must be an absolute http(s) URL.
func (s *Service) Upsert(rawURL string, params []urlutil.Param, strict bool) (string, error) {
	if strict && !urlutil.IsValidAbsHTTPURL(rawURL) {
		metrics.ObserveQuery(metrics.ResultError)
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if len(params) == 0 {
		metrics.ObserveQuery(metrics.ResultError)
		return "", urlutil.ErrEmptyKey
	}

	out, err := urlutil.ApplyQueryParams(rawURL, params)
	if err != nil {
		metrics.ObserveQuery(metrics.ResultError)
		return "", err
	}

	seen := make(map[string]bool, len(params))
	for _, p := range params {
		result := metrics.ResultInserted
		if seen[p.Key] || urlutil.HasQueryParam(rawURL, p.Key) {
			result = metrics.ResultReplaced
		}
		seen[p.Key] = true
		metrics.ObserveQuery(result)
	}

	s.logger.Debug("upserted query params",
		zap.Int("params", len(params)),
		zap.Int("url_len_before", len(rawURL)),
		zap.Int("url_len_after", len(out)),
	)
	return out, nil
}
