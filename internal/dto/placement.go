package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
)

type PurchaseRequestDTO struct {
	ProjectID     int        `json:"projectId" example:"4"`
	SiteID        int        `json:"siteId" example:"9"`
	Type          string     `json:"type" example:"link"`
	ContentIDs    []int      `json:"contentIds"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty" example:"2026-02-01T10:00:00Z"`
	AutoRenewal   bool       `json:"autoRenewal" example:"true"`
}

// UnmarshalJSON also takes the snake_case keys of earlier API clients.
// A camelCase key wins when both are present.
func (d *PurchaseRequestDTO) UnmarshalJSON(data []byte) error {
	type plain PurchaseRequestDTO
	var aux struct {
		plain
		LegacyProjectID     *int       `json:"project_id"`
		LegacySiteID        *int       `json:"site_id"`
		LegacyContentIDs    []int      `json:"content_ids"`
		LegacyScheduledDate *time.Time `json:"scheduled_publish_date"`
		LegacyAutoRenewal   *bool      `json:"auto_renewal"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = PurchaseRequestDTO(aux.plain)
	if d.ProjectID == 0 && aux.LegacyProjectID != nil {
		d.ProjectID = *aux.LegacyProjectID
	}
	if d.SiteID == 0 && aux.LegacySiteID != nil {
		d.SiteID = *aux.LegacySiteID
	}
	if d.ContentIDs == nil {
		d.ContentIDs = aux.LegacyContentIDs
	}
	if d.ScheduledDate == nil {
		d.ScheduledDate = aux.LegacyScheduledDate
	}
	if !d.AutoRenewal && aux.LegacyAutoRenewal != nil {
		d.AutoRenewal = *aux.LegacyAutoRenewal
	}
	return nil
}

func (d PurchaseRequestDTO) ToRequest() placementservice.PurchaseRequest {
	return placementservice.PurchaseRequest{
		ProjectID:     d.ProjectID,
		SiteID:        d.SiteID,
		Type:          domain.PlacementType(d.Type),
		ContentIDs:    d.ContentIDs,
		ScheduledDate: d.ScheduledDate,
		AutoRenewal:   d.AutoRenewal,
	}
}

type PurchaseResponseDTO struct {
	PlacementID int               `json:"placementId" example:"12"`
	Status      string            `json:"status" example:"pending"`
	Placement   *domain.Placement `json:"placement"`
	Balance     decimal.Decimal   `json:"balance" swaggertype:"number" example:"42.5"`
	TierChanged bool              `json:"tier_changed"`
}

func NewPurchaseResponseDTO(res *placementservice.PurchaseResult) PurchaseResponseDTO {
	return PurchaseResponseDTO{
		PlacementID: res.Placement.ID,
		Status:      string(res.Placement.Status),
		Placement:   res.Placement,
		Balance:     res.Balance,
		TierChanged: res.TierChanged,
	}
}

type BatchPurchaseRequestDTO struct {
	Items []PurchaseRequestDTO `json:"items"`
}

type AutoRenewalRequestDTO struct {
	Enabled bool `json:"enabled" example:"false"`
}

type RejectRequestDTO struct {
	Reason string `json:"reason,omitempty" example:"Gambling content"`
}

type BatchDeleteRequestDTO struct {
	PlacementIDs []int `json:"placement_ids"`
}
