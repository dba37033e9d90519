package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/dto"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
	"github.com/GlebRadaev/linkmarket/pkg/auth"
	"github.com/GlebRadaev/linkmarket/pkg/utils"
)

type Ledger interface {
	GetBalance(ctx context.Context, userID int) (*domain.User, error)
	Deposit(ctx context.Context, userID int, amount decimal.Decimal, description string) (*domain.User, error)
	GetUserTransactions(ctx context.Context, userID, limit, offset int) ([]domain.Transaction, error)
	CreateInvoice(ctx context.Context, userID int, amount decimal.Decimal) (*domain.Invoice, error)
}

type Pricing interface {
	GetPricingForUser(ctx context.Context, userID int) (*placementservice.PricingView, error)
}

type BillingHandler struct {
	ledger  Ledger
	pricing Pricing
}

func New(ledger Ledger, pricing Pricing) *BillingHandler {
	return &BillingHandler{
		ledger:  ledger,
		pricing: pricing,
	}
}

// GetBalance godoc
//
//	@Summary		Get current user balance
//	@Description	Balance, lifetime spend and the discount currently stored for the user.
//	@Tags			Billing
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/balance [get]
func (h *BillingHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{
		Balance:    user.Balance,
		TotalSpent: user.TotalSpent,
		Discount:   user.CurrentDiscount,
	})
}

// Deposit godoc
//
//	@Summary		Deposit funds
//	@Tags			Billing
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.DepositRequestDTO	true	"Deposit"
//	@Success		200		{object}	dto.BalanceResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid amount"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/deposit [post]
func (h *BillingHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req dto.DepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		req.Description = "Deposit"
	}

	user, err := h.ledger.Deposit(r.Context(), userID, req.Amount, req.Description)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{
		Balance:    user.Balance,
		TotalSpent: user.TotalSpent,
		Discount:   user.CurrentDiscount,
	})
}

// GetTransactions godoc
//
//	@Summary		Transaction history
//	@Description	Newest first. limit defaults to 50 and is capped at 200.
//	@Tags			Billing
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Offset"
//	@Success		200		{array}		dto.TransactionDTO
//	@Failure		400		{object}	utils.Response	"Invalid paging"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/transactions [get]
func (h *BillingHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	limit, err := queryInt(r, "limit")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	txs, err := h.ledger.GetUserTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}

	response := make([]dto.TransactionDTO, len(txs))
	for i, t := range txs {
		response[i] = dto.NewTransactionDTO(t)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetPricing godoc
//
//	@Summary		Prices for the current user
//	@Tags			Billing
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	placementservice.PricingView
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/pricing [get]
func (h *BillingHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	view, err := h.pricing.GetPricingForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// CreateInvoice godoc
//
//	@Summary		Create a payment invoice
//	@Description	The balance is credited when the payment provider confirms the invoice through the webhook.
//	@Tags			Billing
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.InvoiceRequestDTO	true	"Invoice"
//	@Success		201		{object}	dto.InvoiceResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid amount"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/invoices [post]
func (h *BillingHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req dto.InvoiceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.ledger.CreateInvoice(r.Context(), auth.UserID(r.Context()), req.Amount)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.InvoiceResponseDTO{
		InvoiceID: inv.ExternalID,
		Amount:    inv.Amount,
		Status:    inv.Status,
	})
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
