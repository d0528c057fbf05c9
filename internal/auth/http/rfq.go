package http

import (
	"net/http"
	"strings"

	"github.com/tradepost/tradepost-auth/pkg/authsdk"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
	"github.com/tradepost/tradepost-auth/pkg/idx"
)

// RFQHandler serves POST /v1/rfq/responses. Quote handling itself lives in
// the marketplace service; this endpoint validates and acknowledges the
// submission so suppliers authenticate against one place.
type RFQHandler struct{}

// HandleSubmit godoc
//
//	@Summary		Submit RFQ Response
//	@Description	Accepts a supplier quote against an open RFQ. Supplier or admin role required.
//	@Tags			RFQ
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.RFQResponseRequest	true	"Quote"
//	@Success		201		{object}	authsdk.RFQResponseAck		"id, rfq_id, supplier_id, status"
//	@Failure		400		{object}	authsdk.ErrorResponse		"error, error_description, fields"
//	@Failure		401		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/rfq/responses [post].
func (h *RFQHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken,
			"authentication required")
		return
	}

	var req authsdk.RFQResponseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"invalid JSON body")
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.RFQID) == "" {
		fields["rfq_id"] = "required"
	}
	if strings.TrimSpace(req.Price) == "" {
		fields["price"] = "required"
	}
	if len(req.Currency) != 3 {
		fields["currency"] = "must be a 3-letter currency code"
	}
	if req.LeadTimeDays < 0 {
		fields["lead_time_days"] = "must not be negative"
	}
	if len(fields) > 0 {
		httpx.WriteValidationError(w, fields)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RFQResponseAck{
		ID:         idx.New().String(),
		RFQID:      req.RFQID,
		SupplierID: principal.UserID,
		Status:     "received",
	})
}
