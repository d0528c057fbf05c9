package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/pkg/authsdk"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
)

// MembershipsHandler serves the membership application workflow. The role
// gate runs in the router middleware; these handlers only execute the
// transitions.
type MembershipsHandler struct {
	MembershipService *service.MembershipService
}

// HandleApply godoc
//
//	@Summary		Apply for Membership
//	@Description	Files a membership tier application for the caller's company.
//	@Tags			Memberships
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.MembershipApplyRequest	true	"Tier"
//	@Success		201		{object}	authsdk.MembershipApplication	"the pending application"
//	@Failure		400		{object}	authsdk.ErrorResponse			"error, error_description, fields"
//	@Failure		401		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		403		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/memberships/applications [post].
func (h *MembershipsHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := principalFromRequest(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken,
			"authentication required")
		return
	}
	if principal.CompanyID == "" {
		httpx.WriteValidationError(w, map[string]string{
			"company": "account is not linked to a company",
		})
		return
	}

	var req authsdk.MembershipApplyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"invalid JSON body")
		return
	}

	a, err := h.MembershipService.Apply(ctx, principal.CompanyID, domain.MembershipTier(req.Tier))
	if err != nil {
		httpx.WriteValidationError(w, map[string]string{"tier": "must be basic, silver or gold"})
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toMembershipResponse(a))
}

// HandleList godoc
//
//	@Summary		List Membership Applications
//	@Description	Lists membership applications, optionally filtered by status. Admin only.
//	@Tags			Memberships
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string							false	"Filter by status"	Enums(pending, approved, rejected)
//	@Success		200		{object}	authsdk.MembershipListResponse	"applications"
//	@Failure		400		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		403		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/memberships/applications [get].
func (h *MembershipsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := domain.MembershipStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.MembershipPending, domain.MembershipApproved, domain.MembershipRejected:
	default:
		httpx.WriteValidationError(w, map[string]string{
			"status": "must be pending, approved or rejected",
		})
		return
	}

	apps, err := h.MembershipService.List(ctx, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.MembershipListResponse{
		Applications: make([]authsdk.MembershipApplication, 0, len(apps)),
	}
	for _, a := range apps {
		out.Applications = append(out.Applications, toMembershipResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDecide godoc
//
//	@Summary		Decide Membership Application
//	@Description	Approves or rejects a pending application. Applications that were already decided return 409. Admin only.
//	@Tags			Memberships
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"Application ID"
//	@Param			request	body		authsdk.MembershipDecisionRequest	true	"Decision"
//	@Success		200		{object}	authsdk.MembershipApplication		"the decided application"
//	@Failure		400		{object}	authsdk.ErrorResponse				"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse				"error, error_description"
//	@Failure		403		{object}	authsdk.ErrorResponse				"error, error_description"
//	@Failure		404		{object}	authsdk.ErrorResponse				"error, error_description"
//	@Failure		409		{object}	authsdk.ErrorResponse				"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/memberships/applications/{id}/decision [post].
func (h *MembershipsHandler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := principalFromRequest(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken,
			"authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httpx.WriteValidationError(w, map[string]string{"id": "required"})
		return
	}

	var req authsdk.MembershipDecisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"invalid JSON body")
		return
	}

	var approve bool
	switch req.Decision {
	case "approved":
		approve = true
	case "rejected":
		approve = false
	default:
		httpx.WriteValidationError(w, map[string]string{
			"decision": "must be approved or rejected",
		})
		return
	}

	a, err := h.MembershipService.Decide(ctx, id, approve, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, authsdk.ErrorCodeInvalidRequest,
				"application not found")
		case errors.Is(err, service.ErrAlreadyDecided):
			httpx.WriteError(w, http.StatusConflict, authsdk.ErrorCodeConflict,
				"application has already been decided")
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMembershipResponse(a))
}

func toMembershipResponse(a domain.MembershipApplication) authsdk.MembershipApplication {
	out := authsdk.MembershipApplication{
		ID:        a.ID,
		CompanyID: a.CompanyID,
		Tier:      string(a.Tier),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
	if a.DecidedBy != nil {
		out.DecidedBy = *a.DecidedBy
	}
	return out
}
