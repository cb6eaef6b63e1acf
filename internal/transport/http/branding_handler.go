package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shortenhub/shorten/internal/constants"
	"github.com/shortenhub/shorten/internal/infrastructure/logger"
	"github.com/shortenhub/shorten/pkg/httputils"
	"go.uber.org/zap"
)

// BrandingStore persists the optional branding image for the device-profile
// backend. The image is a data URI; an empty value clears it.
type BrandingStore interface {
	Logo(ctx context.Context) (string, error)
	SetLogo(ctx context.Context, dataURI string) error
}

type BrandingHandler struct {
	store BrandingStore
}

func NewBrandingHandler(store BrandingStore) *BrandingHandler {
	return &BrandingHandler{store: store}
}

type brandingResponse struct {
	Logo string `json:"logo"`
}

func (h *BrandingHandler) Logo(w http.ResponseWriter, r *http.Request) {
	logo, err := h.store.Logo(r.Context())
	if err != nil {
		logger.Error("Failed to load branding logo", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessBrandingFound, brandingResponse{Logo: logo})
}

func (h *BrandingHandler) SetLogo(w http.ResponseWriter, r *http.Request) {
	var req brandingResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if req.Logo != "" && !strings.HasPrefix(req.Logo, "data:") {
		httputils.WriteAPIError(w, r,
			constants.ErrInvalidRequestBody.WithMessage("logo must be a data URI or empty"))
		return
	}

	if err := h.store.SetLogo(r.Context(), req.Logo); err != nil {
		logger.Error("Failed to store branding logo", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessBrandingUpdated, brandingResponse{Logo: req.Logo})
}
