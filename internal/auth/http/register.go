package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
)

// RegisterHandler serves POST /v1/auth/register.
type RegisterHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Creates a buyer or supplier account, optionally with its company.
//	@Description	Admin and publisher accounts cannot self-register.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"Account details"
//	@Success		201		{object}	authsdk.RegisterResponse	"user_id, email, role, company_id"
//	@Failure		400		{object}	authsdk.ErrorResponse		"error, error_description, fields"
//	@Failure		409		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		413		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		429		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"invalid JSON body")
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "required"
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		fields["role"] = "must be buyer or supplier"
	}
	if len(fields) > 0 {
		httpx.WriteValidationError(w, fields)
		return
	}

	u, err := h.UserService.Register(ctx, service.RegisterParams{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		Role:        role,
		CompanyName: req.CompanyName,
		Country:     req.CompanyCountry,
	}, httpx.IPKeyExtractor(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleNotAllowed):
			httpx.WriteValidationError(w, map[string]string{"role": "must be buyer or supplier"})
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteValidationError(w, map[string]string{
				"password": "must be at least 8 characters with a letter and a digit",
			})
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, authsdk.ErrorCodeEmailTaken,
				"an account with this email already exists")
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	resp := authsdk.RegisterResponse{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	}
	if u.CompanyID != nil {
		resp.CompanyID = *u.CompanyID
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}
