package placements

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/dto"
	"github.com/GlebRadaev/linkmarket/internal/service/batchservice"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
	"github.com/GlebRadaev/linkmarket/pkg/auth"
	"github.com/GlebRadaev/linkmarket/pkg/utils"
)

type Service interface {
	Purchase(ctx context.Context, userID int, req placementservice.PurchaseRequest) (*placementservice.PurchaseResult, error)
	Renew(ctx context.Context, userID, placementID int) (*placementservice.RenewResult, error)
	ToggleAutoRenewal(ctx context.Context, userID, placementID int, enabled bool) (*domain.Placement, error)
	Refund(ctx context.Context, userID, placementID int) (*placementservice.RefundResult, error)
}

type Batch interface {
	Purchase(ctx context.Context, userID int, reqs []placementservice.PurchaseRequest) (*batchservice.Result, error)
}

type PlacementHandler struct {
	service Service
	batch   Batch
}

func New(service Service, batch Batch) *PlacementHandler {
	return &PlacementHandler{
		service: service,
		batch:   batch,
	}
}

// Purchase godoc
//
//	@Summary		Buy a placement
//	@Description	Charges the discounted price and reserves the site slot. Links are published right away unless a publish date is given.
//	@Tags			Placements
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.PurchaseRequestDTO	true	"Purchase"
//	@Success		200		{object}	dto.PurchaseResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		402		{object}	utils.Response	"Insufficient balance"
//	@Failure		403		{object}	utils.Response	"Project or content belongs to another user"
//	@Failure		404		{object}	utils.Response	"Site, project or content not found"
//	@Failure		409		{object}	utils.Response	"Duplicate placement or quota exhausted"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/purchase [post]
func (h *PlacementHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req dto.PurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Purchase(r.Context(), auth.UserID(r.Context()), req.ToRequest())
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPurchaseResponseDTO(res))
}

// PurchaseBatch godoc
//
//	@Summary		Buy several placements
//	@Description	Every item is purchased on its own. Failed items are listed in errors and never abort the others.
//	@Tags			Placements
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.BatchPurchaseRequestDTO	true	"Items"
//	@Success		200		{object}	batchservice.Result
//	@Failure		400		{object}	utils.Response	"Empty or oversized batch"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/purchase/batch [post]
func (h *PlacementHandler) PurchaseBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchPurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]placementservice.PurchaseRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = item.ToRequest()
	}
	res, err := h.batch.Purchase(r.Context(), auth.UserID(r.Context()), items)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// Renew godoc
//
//	@Summary		Renew a link for another period
//	@Tags			Placements
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Placement ID"
//	@Success		200	{object}	placementservice.RenewResult
//	@Failure		400	{object}	utils.Response	"Invalid placement id"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		404	{object}	utils.Response	"Placement not found"
//	@Failure		409	{object}	utils.Response	"Placement can't be renewed"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/placements/{id}/renew [post]
func (h *PlacementHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id, ok := placementID(w, r)
	if !ok {
		return
	}

	res, err := h.service.Renew(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// ToggleAutoRenewal godoc
//
//	@Summary	Switch auto-renewal on or off
//	@Tags		Placements
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"Placement ID"
//	@Param		request	body		dto.AutoRenewalRequestDTO	true	"Flag"
//	@Success	200		{object}	domain.Placement
//	@Failure	400		{object}	utils.Response	"Invalid request"
//	@Failure	404		{object}	utils.Response	"Placement not found"
//	@Failure	500		{object}	utils.Response	"Internal server error"
//	@Router		/api/billing/placements/{id}/auto-renewal [patch]
func (h *PlacementHandler) ToggleAutoRenewal(w http.ResponseWriter, r *http.Request) {
	id, ok := placementID(w, r)
	if !ok {
		return
	}
	var req dto.AutoRenewalRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.ToggleAutoRenewal(r.Context(), auth.UserID(r.Context()), id, req.Enabled)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// Refund godoc
//
//	@Summary		Cancel a placement and get the money back
//	@Description	Only pending, scheduled and failed placements are refundable by their buyer.
//	@Tags			Placements
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Placement ID"
//	@Success		200	{object}	placementservice.RefundResult
//	@Failure		400	{object}	utils.Response	"Invalid placement id"
//	@Failure		404	{object}	utils.Response	"Placement not found"
//	@Failure		409	{object}	utils.Response	"Placement is not refundable"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/billing/placements/{id} [delete]
func (h *PlacementHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id, ok := placementID(w, r)
	if !ok {
		return
	}

	res, err := h.service.Refund(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

func placementID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid placement id")
		return 0, false
	}
	return id, true
}
