package payments

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/dto"
	"github.com/GlebRadaev/linkmarket/pkg/utils"
)

const secretHeader = "X-Webhook-Secret"

type Service interface {
	ConfirmInvoice(ctx context.Context, externalID string) (*domain.Invoice, error)
}

type PaymentHandler struct {
	service Service
	secret  string
}

// New builds the webhook handler. An empty secret accepts unsigned calls.
func New(service Service, secret string) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		secret:  secret,
	}
}

// Webhook godoc
//
//	@Summary		Payment provider callback
//	@Description	Credits the invoice amount once. Repeated calls for a paid invoice succeed without crediting again.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Webhook-Secret	header		string					false	"Shared secret"
//	@Param			request				body		dto.WebhookRequestDTO	true	"Invoice"
//	@Success		200					{object}	dto.InvoiceResponseDTO
//	@Failure		400					{object}	utils.Response	"Invalid request"
//	@Failure		401					{object}	utils.Response	"Bad secret"
//	@Failure		404					{object}	utils.Response	"Invoice not found"
//	@Router			/api/payments/webhook [post]
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(secretHeader)), []byte(h.secret)) != 1 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.WebhookRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InvoiceID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "invoice_id is required")
		return
	}

	inv, err := h.service.ConfirmInvoice(r.Context(), req.InvoiceID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.InvoiceResponseDTO{
		InvoiceID: inv.ExternalID,
		Amount:    inv.Amount,
		Status:    inv.Status,
	})
}
