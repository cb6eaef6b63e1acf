package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shortenhub/shorten/internal/auth"
	"github.com/shortenhub/shorten/internal/constants"
	"github.com/shortenhub/shorten/internal/events"
	"github.com/shortenhub/shorten/internal/infrastructure/logger"
	appvalidation "github.com/shortenhub/shorten/internal/infrastructure/validation"
	"github.com/shortenhub/shorten/internal/processing/links"
	"github.com/shortenhub/shorten/internal/qr"
	"github.com/shortenhub/shorten/pkg/httputils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type LinksHandler struct {
	svc       *links.Service
	publisher *events.Publisher
}

func NewLinksHandler(svc *links.Service, publisher *events.Publisher) *LinksHandler {
	return &LinksHandler{svc: svc, publisher: publisher}
}

// identityFrom maps the request to a history scope: the authenticated user
// id when a session is present, the shared device scope otherwise.
func identityFrom(r *http.Request) links.Identity {
	if claims, ok := auth.ClaimsFrom(r.Context()); ok && claims.UserID != "" {
		return links.Identity(claims.UserID)
	}
	return links.DeviceIdentity
}

type createLinkRequest struct {
	URL      string `json:"url" validate:"required,notblank,http_url"`
	Alias    string `json:"alias,omitempty" validate:"omitempty,alias"`
	Provider string `json:"provider,omitempty" validate:"omitempty,provider"`
	Summary  string `json:"summary,omitempty"`
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		apiErr := constants.ErrInvalidRequestBody
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, e := range validationErrs {
				if e.Field() == "url" {
					apiErr = constants.ErrInvalidURL
					break
				}
				if e.Field() == "provider" {
					apiErr = constants.ErrInvalidProvider
					break
				}
				if e.Field() == "alias" {
					apiErr = apiErr.WithMessage("alias may only contain lowercase letters, digits and hyphens")
					break
				}
			}
		}
		httputils.WriteAPIError(w, r, apiErr)
		return
	}

	identity := identityFrom(r)
	link, err := h.svc.Create(r.Context(), identity, links.CreateInput{
		OriginalURL: req.URL,
		Provider:    links.Provider(req.Provider),
		Alias:       req.Alias,
		Summary:     req.Summary,
	})
	if err != nil {
		switch {
		case errors.Is(err, links.ErrInvalidURL):
			httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		case errors.Is(err, links.ErrInvalidProvider):
			httputils.WriteAPIError(w, r, constants.ErrInvalidProvider)
		default:
			logger.Error("failed to create link", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	if h.publisher != nil {
		h.publisher.LinkCreated(r.Context(), identity, link)
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, link)
}

type historyResponse struct {
	Items []links.ShortenedLink `json:"items"`
}

func (h *LinksHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), identityFrom(r))
	if err != nil {
		logger.Error("failed to list links", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}
	if items == nil {
		items = []links.ShortenedLink{}
	}
	httputils.WriteAPISuccess(w, r, constants.SuccessHistoryFound, historyResponse{Items: items})
}

func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity := identityFrom(r)

	if err := h.svc.Delete(r.Context(), identity, id); err != nil {
		switch {
		case errors.Is(err, links.ErrNotFound):
			httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
		default:
			logger.Error("failed to delete link", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	if h.publisher != nil {
		h.publisher.LinkDeleted(r.Context(), identity, id)
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkDeleted, map[string]string{"id": id})
}

type analyzeRequest struct {
	URL string `json:"url" validate:"required,notblank,http_url"`
}

func (h *LinksHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		return
	}

	analysis, err := h.svc.Analyze(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, links.ErrInvalidURL):
			httputils.WriteAPIError(w, r, constants.ErrInvalidURL)
		case errors.Is(err, links.ErrAnalysisUnavailable):
			httputils.WriteAPIError(w, r, constants.ErrAnalysisFailed)
		default:
			logger.Error("failed to analyze url", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessAnalysisDone, analysis)
}

// QRCode renders a PNG for one stored link. Options come from the query
// string; unset ones take defaults.
func (h *LinksHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity := identityFrom(r)

	items, err := h.svc.List(r.Context(), identity)
	if err != nil {
		logger.Error("failed to list links for qr", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	var link *links.ShortenedLink
	for i := range items {
		if items[i].ID == id {
			link = &items[i]
			break
		}
	}
	if link == nil {
		httputils.WriteAPIError(w, r, constants.ErrLinkNotFound)
		return
	}

	opts := qr.Options{
		Level:      r.URL.Query().Get("level"),
		Foreground: r.URL.Query().Get("fg"),
		Background: r.URL.Query().Get("bg"),
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			httputils.WriteAPIError(w, r, constants.ErrInvalidQROptions.WithMessage("size must be an integer"))
			return
		}
		opts.PixelSize = size
	}

	png, err := qr.RenderPNG(link.ShortURL, opts)
	if err != nil {
		if errors.Is(err, qr.ErrInvalidOptions) {
			httputils.WriteAPIError(w, r, constants.ErrInvalidQROptions.WithMessage(err.Error()))
			return
		}
		logger.Error("failed to render qr code", zap.Error(err))
		httputils.WriteAPIError(w, r, constants.ErrInternalError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
