// internal/app/features/mergebody/handler.go
package mergebody

import (
	"net/http"

	"github.com/dalemusser/audiencekit/httputil"
	"github.com/dalemusser/audiencekit/internal/app/audience"
	"github.com/dalemusser/audiencekit/pantry/merge"
	"github.com/dalemusser/audiencekit/pantry/requestid"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Request is the body of POST /v1/merge. A null or missing original
// returns the extension unchanged.
type Request struct {
	Original  merge.Mapping `json:"original"`
	Extension merge.Mapping `json:"extension"`
	Copy      bool          `json:"copy"`
}

// Response is the body of a successful merge.
type Response struct {
	Result merge.Mapping `json:"result"`
}

type Handler struct {
	svc    *audience.Service
	logger *zap.Logger
}

func NewHandler(svc *audience.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Mount registers POST /merge on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/merge", h.serveMerge)
}

func (h *Handler) serveMerge(w http.ResponseWriter, r *http.Request) {
	logger := requestid.Logger(r.Context(), h.logger)

	var req Request
	if err := httputil.BindJSON(r, &req); err != nil {
		logger.Debug("merge request rejected", zap.Error(err))
		httputil.BindError(w, err)
		return
	}
	if req.Extension == nil {
		httputil.JSONError(w, http.StatusBadRequest, "invalid_request", "extension must be a JSON object")
		return
	}

	result := h.svc.Merge(req.Copy, req.Original, req.Extension)
	httputil.WriteJSON(w, http.StatusOK, Response{Result: result})
}
