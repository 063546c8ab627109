// internal/app/features/queryurl/handler.go
package queryurl

import (
	"errors"
	"net/http"

	"github.com/dalemusser/audiencekit/httputil"
	"github.com/dalemusser/audiencekit/internal/app/audience"
	"github.com/dalemusser/audiencekit/pantry/requestid"
	"github.com/dalemusser/audiencekit/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Request is the body of POST /v1/query. Key and Value, when given, are
// applied before Params.
type Request struct {
	URL    string          `json:"url"`
	Key    string          `json:"key"`
	Value  string          `json:"value"`
	Params []urlutil.Param `json:"params"`
	Strict bool            `json:"strict"`
}

// Response carries the rewritten URL.
type Response struct {
	URL string `json:"url"`
}

// params returns Key/Value followed by Params.
func (req Request) params() []urlutil.Param {
	out := make([]urlutil.Param, 0, len(req.Params)+1)
	if req.Key != "" || req.Value != "" {
		out = append(out, urlutil.Param{Key: req.Key, Value: req.Value})
	}
	return append(out, req.Params...)
}

type Handler struct {
	svc    *audience.Service
	logger *zap.Logger
}

func NewHandler(svc *audience.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Mount registers POST /query on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/query", h.serveQuery)
}

func (h *Handler) serveQuery(w http.ResponseWriter, r *http.Request) {
	logger := requestid.Logger(r.Context(), h.logger)

	var req Request
	if err := httputil.BindJSON(r, &req); err != nil {
		logger.Debug("query request rejected", zap.Error(err))
		httputil.BindError(w, err)
		return
	}

	out, err := h.svc.Upsert(req.URL, req.params(), req.Strict)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, Response{URL: out})
	case errors.Is(err, audience.ErrInvalidURL):
		httputil.JSONError(w, http.StatusBadRequest, "invalid_url", err.Error())
	case errors.Is(err, urlutil.ErrEmptyKey), errors.Is(err, urlutil.ErrInvalidParam):
		httputil.JSONError(w, http.StatusBadRequest, "invalid_param", err.Error())
	default:
		logger.Error("query upsert failed", zap.Error(err))
		httputil.JSONError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
