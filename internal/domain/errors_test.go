package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		kind   Kind
	}{
		{"not found", NotFound("site", 7), ErrNotFound, KindNotFound},
		{"wrapped quota", fmt.Errorf("purchase: %w", QuotaExceeded("site is full")), ErrQuotaExceeded, KindQuotaExceeded},
		{"funds", InsufficientFunds(decimal.NewFromInt(25), decimal.NewFromInt(5)), ErrInsufficientFunds, KindInsufficientFunds},
		{"external", ExternalFailure(errors.New("timeout"), "publish failed"), ErrExternalFailure, KindExternalFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.target)
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.NotErrorIs(t, tt.err, ErrValidation)
		})
	}
}

func TestInsufficientFundsMessage(t *testing.T) {
	err := InsufficientFunds(decimal.NewFromInt(25), decimal.RequireFromString("4.5"))

	assert.Equal(t, "insufficient balance: required $25.00, available $4.50", err.Error())
	assert.True(t, err.Required.Equal(decimal.NewFromInt(25)))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, "unknown", KindOf(nil).String())
	assert.Equal(t, "quota_exceeded", KindQuotaExceeded.String())
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusPendingApproval.Active())
	assert.True(t, StatusFailed.Active())
	assert.False(t, StatusRejected.Active())
	assert.False(t, StatusExpired.Refundable())
	assert.True(t, StatusPlaced.Refundable())
}

func TestSiteQuotaAndSells(t *testing.T) {
	site := &Site{SiteType: SiteTypeStatic, AllowArticles: true, MaxLinks: 3, UsedLinks: 1, MaxArticles: 2, UsedArticles: 2}

	used, max := site.Quota(PlacementLink)
	assert.Equal(t, 1, used)
	assert.Equal(t, 3, max)
	used, max = site.Quota(PlacementArticle)
	assert.Equal(t, 2, used)
	assert.Equal(t, 2, max)
	assert.False(t, site.Sells(PlacementArticle))
	assert.True(t, site.Sells(PlacementLink))
}
