// Package admin serves moderation and money-correction endpoints. Every route
// sits behind auth.AdminOnly and the services check the role once more.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/dto"
	"github.com/GlebRadaev/linkmarket/internal/service/batchservice"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
	"github.com/GlebRadaev/linkmarket/pkg/auth"
	"github.com/GlebRadaev/linkmarket/pkg/utils"
)

type Moderation interface {
	Approve(ctx context.Context, adminID, placementID int) (*domain.Placement, error)
	Reject(ctx context.Context, adminID, placementID int, reason string) (*placementservice.RefundResult, error)
	RetryPublication(ctx context.Context, adminID, placementID int) (*domain.Placement, error)
	DeleteAndRefund(ctx context.Context, adminID, placementID int) (*placementservice.RefundResult, error)
}

type Batch interface {
	Delete(ctx context.Context, adminID int, placementIDs []int) (*batchservice.Result, error)
}

type Ledger interface {
	AdminAdjust(ctx context.Context, adminID, userID int, amount decimal.Decimal, reason string) (*domain.User, error)
	VerifyLedger(ctx context.Context, userID int) (*ledgerservice.LedgerReport, error)
}

type AdminHandler struct {
	moderation Moderation
	batch      Batch
	ledger     Ledger
}

func New(moderation Moderation, batch Batch, ledger Ledger) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		batch:      batch,
		ledger:     ledger,
	}
}

// Approve godoc
//
//	@Summary		Approve a pending placement
//	@Description	Publishes now, or schedules when the placement carries a future publish date.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Placement ID"
//	@Success		200	{object}	domain.Placement
//	@Failure		403	{object}	utils.Response	"Admin role required"
//	@Failure		404	{object}	utils.Response	"Placement not found"
//	@Failure		409	{object}	utils.Response	"Placement is not pending approval"
//	@Router			/api/admin/placements/{id}/approve [post]
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid placement id")
	if !ok {
		return
	}
	p, err := h.moderation.Approve(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// Reject godoc
//
//	@Summary	Reject a pending placement and refund the buyer
//	@Tags		Admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Placement ID"
//	@Param		request	body		dto.RejectRequestDTO	false	"Reason"
//	@Success	200		{object}	placementservice.RefundResult
//	@Failure	403		{object}	utils.Response	"Admin role required"
//	@Failure	404		{object}	utils.Response	"Placement not found"
//	@Failure	409		{object}	utils.Response	"Placement is not pending approval"
//	@Router		/api/admin/placements/{id}/reject [post]
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid placement id")
	if !ok {
		return
	}
	var req dto.RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.moderation.Reject(r.Context(), auth.UserID(r.Context()), id, req.Reason)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// Retry godoc
//
//	@Summary	Queue a failed placement for publication again
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Placement ID"
//	@Success	200	{object}	domain.Placement
//	@Failure	409	{object}	utils.Response	"Placement has not failed"
//	@Router		/api/admin/placements/{id}/retry [post]
func (h *AdminHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid placement id")
	if !ok {
		return
	}
	p, err := h.moderation.RetryPublication(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// Delete godoc
//
//	@Summary		Delete a placement
//	@Description	Refunds the buyer unless the placement is already placed or ended.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Placement ID"
//	@Success		200	{object}	placementservice.RefundResult
//	@Failure		404	{object}	utils.Response	"Placement not found"
//	@Router			/api/admin/placements/{id} [delete]
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid placement id")
	if !ok {
		return
	}
	res, err := h.moderation.DeleteAndRefund(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// BatchDelete godoc
//
//	@Summary	Delete several placements
//	@Tags		Admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.BatchDeleteRequestDTO	true	"Placement IDs"
//	@Success	200		{object}	batchservice.Result
//	@Failure	400		{object}	utils.Response	"Empty or oversized batch"
//	@Router		/api/admin/placements/batch-delete [post]
func (h *AdminHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchDeleteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.batch.Delete(r.Context(), auth.UserID(r.Context()), req.PlacementIDs)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// Adjust godoc
//
//	@Summary		Credit or debit a user balance
//	@Description	Positive amounts credit, negative amounts debit. The balance never goes below zero.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"User ID"
//	@Param			request	body		dto.AdjustRequestDTO	true	"Adjustment"
//	@Success		200		{object}	dto.BalanceResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid amount"
//	@Failure		402		{object}	utils.Response	"Debit exceeds balance"
//	@Router			/api/admin/users/{id}/adjust [post]
func (h *AdminHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "invalid user id")
	if !ok {
		return
	}
	var req dto.AdjustRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.ledger.AdminAdjust(r.Context(), auth.UserID(r.Context()), userID, req.Amount, req.Reason)
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

// VerifyLedger godoc
//
//	@Summary	Replay a user's transactions against the stored balance
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"User ID"
//	@Success	200	{object}	ledgerservice.LedgerReport
//	@Failure	404	{object}	utils.Response	"User not found"
//	@Router		/api/admin/users/{id}/ledger [get]
func (h *AdminHandler) VerifyLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "invalid user id")
	if !ok {
		return
	}
	report, err := h.ledger.VerifyLedger(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, report)
}

func pathID(w http.ResponseWriter, r *http.Request, message string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}
