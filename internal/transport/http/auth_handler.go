package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shortenhub/shorten/internal/auth"
	"github.com/shortenhub/shorten/internal/constants"
	"github.com/shortenhub/shorten/internal/infrastructure/logger"
	appvalidation "github.com/shortenhub/shorten/internal/infrastructure/validation"
	"github.com/shortenhub/shorten/internal/transport/http/middleware"
	"github.com/shortenhub/shorten/pkg/httputils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}

	user, err := h.svc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			httputils.WriteAPIError(w, r, constants.ErrEmailTaken)
		case errors.Is(err, auth.ErrPasswordTooShort):
			httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody.WithMessage(err.Error()))
		default:
			logger.Error("failed to sign up", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	// No session yet: the account must confirm its email first.
	httputils.WriteAPISuccess(w, r, constants.SuccessConfirmationPending, map[string]string{
		"userId":  user.ID,
		"email":   user.Email,
		"message": constants.MsgConfirmationPending,
	})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidCredentials)
		return
	}

	session, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			httputils.WriteAPIError(w, r, constants.ErrInvalidCredentials)
		case errors.Is(err, auth.ErrEmailUnconfirmed):
			httputils.WriteAPIError(w, r, constants.ErrEmailUnconfirmed)
		default:
			logger.Error("failed to sign in", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessSignedIn, session)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.svc.SignOut()
	httputils.WriteAPISuccess(w, r, constants.SuccessSignedOut, nil)
}

// Session reports who the bearer token belongs to, or a null session for
// anonymous callers.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		httputils.WriteAPISuccess(w, r, constants.SuccessSessionFound, map[string]any{"session": nil})
		return
	}

	claims, err := h.svc.Verify(token)
	if err != nil {
		httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessSessionFound, map[string]any{
		"session": map[string]string{
			"userId": claims.UserID,
			"email":  claims.Email,
		},
	})
}
