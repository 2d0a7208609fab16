package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/comflo/identity/internal/config"
	"github.com/comflo/identity/internal/domain/user"
	"github.com/comflo/identity/internal/identity"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, in identity.RegisterInput) (*user.Sanitized, error)
	Login(ctx context.Context, in identity.LoginInput) (*user.Sanitized, error)
	RequestRecoveryCode(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, in identity.ResetInput) error
}

type AuthHandler struct {
	svc AuthService
	// legacyRecovery puts the plaintext recovery code in the response
	// body instead of keeping it inside the notification pipeline.
	legacyRecovery bool
}

func NewAuthHandler(svc AuthService, legacyRecovery bool) *AuthHandler {
	return &AuthHandler{svc: svc, legacyRecovery: legacyRecovery}
}

// Required-field checks live in the service so the 412 response can list
// every missing field; the request structs deliberately carry no binding
// tags.

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RecoveryCodeRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.svc.Register(cctx, identity.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})

	if err != nil {
		respondAuthError(ctx, err, "Could not create user")
		return
	}

	RespondSuccess(ctx, http.StatusOK, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.svc.Login(cctx, identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		respondAuthError(ctx, err, "Could not login user")
		return
	}

	RespondSuccess(ctx, http.StatusOK, u)
}

func (h *AuthHandler) RequestRecoveryCode(ctx *gin.Context) {
	var req RecoveryCodeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	code, err := h.svc.RequestRecoveryCode(cctx, req.Email)

	if err != nil {
		respondAuthError(ctx, err, "Error getting user")
		return
	}

	if h.legacyRecovery {
		RespondSuccess(ctx, http.StatusOK, code)
		return
	}

	// the code travels out-of-band through the notification pipeline
	RespondSuccess(ctx, http.StatusOK, nil)
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.svc.ResetPassword(cctx, identity.ResetInput{
		Email:    req.Email,
		Password: req.Password,
		Code:     req.Code,
	})

	if err != nil {
		respondAuthError(ctx, err, "Error reseting password")
		return
	}

	RespondSuccess(ctx, http.StatusOK, nil)
}

// respondAuthError maps the service's error taxonomy onto the four
// failure classes. Anything unrecognized gets the generic message; the
// cause was already logged inside the service.
func respondAuthError(ctx *gin.Context, err error, generic string) {
	var (
		validationErr *identity.ValidationError
		conflictErr   *identity.ConflictError
		ruleErr       *identity.BusinessRuleError
		notFoundErr   *identity.NotFoundError
		authErr       *identity.AuthenticationError
	)

	switch {
	case errors.As(err, &validationErr):
		RespondPreconditionFailed(ctx, validationErr.Error())
	case errors.As(err, &conflictErr):
		RespondBadRequest(ctx, conflictErr.Message)
	case errors.As(err, &ruleErr):
		RespondBadRequest(ctx, ruleErr.Message)
	case errors.As(err, &notFoundErr):
		RespondNotFound(ctx, notFoundErr.Message)
	case errors.As(err, &authErr):
		RespondUnauthorized(ctx, authErr.Message)
	default:
		RespondBadRequest(ctx, generic)
	}
}
