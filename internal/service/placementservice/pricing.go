package placementservice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
)

type PriceView struct {
	Base  decimal.Decimal `json:"base"`
	Final decimal.Decimal `json:"final"`
}

type NextTierView struct {
	Name      string          `json:"name"`
	Discount  int             `json:"discount"`
	MinSpent  decimal.Decimal `json:"min_spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

type PricingView struct {
	Balance      decimal.Decimal `json:"balance"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	Discount     int             `json:"discount"`
	Tier         string          `json:"tier"`
	NextTier     *NextTierView   `json:"next_tier,omitempty"`
	Link         PriceView       `json:"link"`
	Article      PriceView       `json:"article"`
	Renewal      PriceView       `json:"renewal"`
	OwnerRate    decimal.Decimal `json:"owner_rate"`
	Tiers        []pricing.Tier  `json:"tiers"`
	RenewalDays  int             `json:"renewal_days"`
	ScheduleDays int             `json:"max_schedule_days"`
}

// GetPricingForUser shows the prices the user would pay right now. The tier is
// derived from total_spent, so a stale cached discount never leaks out.
func (s *Service) GetPricingForUser(ctx context.Context, userID int) (*PricingView, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.NotFound("user", userID)
	}

	tier := s.pricing.TierFor(user.TotalSpent)
	link := s.pricing.PurchaseQuote(domain.PlacementLink, tier.Discount, false)
	article := s.pricing.PurchaseQuote(domain.PlacementArticle, tier.Discount, false)
	renewal := s.pricing.RenewalQuote(tier.Discount, false)

	view := &PricingView{
		Balance:      user.Balance,
		TotalSpent:   user.TotalSpent,
		Discount:     tier.Discount,
		Tier:         tier.Name,
		Link:         PriceView{Base: link.Original, Final: link.Final},
		Article:      PriceView{Base: article.Original, Final: article.Final},
		Renewal:      PriceView{Base: renewal.Original, Final: renewal.Final},
		OwnerRate:    s.pricing.OwnerRate,
		Tiers:        s.pricing.Tiers,
		RenewalDays:  int(s.pricing.RenewalPeriod.Hours() / 24),
		ScheduleDays: int(s.pricing.MaxScheduleAhead.Hours() / 24),
	}
	if next := s.pricing.NextTier(user.TotalSpent); next != nil {
		view.NextTier = &NextTierView{
			Name:      next.Name,
			Discount:  next.Discount,
			MinSpent:  next.MinSpent,
			Remaining: next.MinSpent.Sub(user.TotalSpent),
		}
	}
	return view, nil
}

// discountFor is the discount every quote uses. It follows total_spent under the
// loaded tier table, not the cached current_discount column.
func (s *Service) discountFor(user *domain.User) int {
	return s.pricing.TierFor(user.TotalSpent).Discount
}
