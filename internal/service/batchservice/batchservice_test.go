package batchservice

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/linkmarket/internal/cache"
	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
	"github.com/GlebRadaev/linkmarket/internal/testutil/memstore"
)

func NewMock(t *testing.T, concurrency int) (*Service, *MockPlacements, *MockNotificationRepo) {
	ctrl := gomock.NewController(t)
	placements := NewMockPlacements(ctrl)
	notifications := NewMockNotificationRepo(ctrl)
	return New(placements, notifications, concurrency), placements, notifications
}

func TestService_Purchase(t *testing.T) {
	svc, placements, notifications := NewMock(t, 4)

	reqs := make([]placementservice.PurchaseRequest, 20)
	for i := range reqs {
		reqs[i] = placementservice.PurchaseRequest{SiteID: i + 1, Type: domain.PlacementLink, ContentIDs: []int{i + 100}}
	}

	var inFlight, peak int32
	placements.EXPECT().Purchase(gomock.Any(), 3, gomock.Any()).Times(20).
		DoAndReturn(func(_ context.Context, _ int, req placementservice.PurchaseRequest) (*placementservice.PurchaseResult, error) {
			n := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			if req.SiteID == 8 {
				return nil, domain.Validation("site %d does not accept link placements", req.SiteID)
			}
			return &placementservice.PurchaseResult{
				Placement: &domain.Placement{ID: req.SiteID * 10, SiteID: req.SiteID},
				Balance:   decimal.NewFromInt(int64(1000 - req.SiteID*25)),
			}, nil
		})
	notifications.EXPECT().AppendNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *domain.Notification) error {
			assert.Equal(t, "batch_purchase", n.Type)
			assert.Equal(t, 3, *n.UserID)
			assert.Equal(t, 19, n.Metadata["succeeded"])
			return nil
		})

	res, err := svc.Purchase(context.Background(), 3, reqs)
	require.NoError(t, err)

	assert.Equal(t, 19, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 7, res.Errors[0].Index)
	assert.Equal(t, "validation_error", res.Errors[0].Kind)
	require.Len(t, res.Placements, 19)
	assert.Equal(t, 10, res.Placements[0].ID)
	require.NotNil(t, res.Balance)
	assert.True(t, decimal.NewFromInt(500).Equal(*res.Balance))
	assert.NotEmpty(t, res.BatchID)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
}

func TestService_PurchaseSingleSuccessSkipsNotification(t *testing.T) {
	svc, placements, _ := NewMock(t, 0)

	placements.EXPECT().Purchase(gomock.Any(), 3, gomock.Any()).
		Return(&placementservice.PurchaseResult{Placement: &domain.Placement{ID: 1}, Balance: decimal.NewFromInt(5)}, nil)
	placements.EXPECT().Purchase(gomock.Any(), 3, gomock.Any()).
		Return(nil, domain.InsufficientFunds(decimal.NewFromInt(25), decimal.NewFromInt(5)))

	res, err := svc.Purchase(context.Background(), 3, make([]placementservice.PurchaseRequest, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "insufficient_funds", res.Errors[0].Kind)
}

func TestService_EmptyBatch(t *testing.T) {
	svc, _, _ := NewMock(t, 0)

	_, err := svc.Purchase(context.Background(), 1, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Delete(context.Background(), 1, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Delete(context.Background(), 1, make([]int, MaxBatchSize+1))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Delete(t *testing.T) {
	svc, placements, notifications := NewMock(t, 2)

	placements.EXPECT().DeleteAndRefund(gomock.Any(), 1, 11).
		Return(&placementservice.RefundResult{PlacementID: 11, Refunded: true, Amount: decimal.NewFromInt(25)}, nil)
	placements.EXPECT().DeleteAndRefund(gomock.Any(), 1, 12).
		Return(&placementservice.RefundResult{PlacementID: 12, Refunded: true, Amount: decimal.RequireFromString("12.75")}, nil)
	placements.EXPECT().DeleteAndRefund(gomock.Any(), 1, 13).
		Return(&placementservice.RefundResult{PlacementID: 13}, nil)
	placements.EXPECT().DeleteAndRefund(gomock.Any(), 1, 14).
		Return(nil, domain.NotFound("placement", 14))
	notifications.EXPECT().AppendNotification(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	res, err := svc.Delete(context.Background(), 1, []int{11, 12, 13, 14})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []ItemError{{Index: 3, PlacementID: 14, Kind: "not_found", Error: "placement 14 not found"}}, res.Errors)
	assert.True(t, decimal.RequireFromString("37.75").Equal(res.TotalRefunded))
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(context.Context, queue.Job) error { return nil }

func TestService_PurchaseAgainstEngine(t *testing.T) {
	store := memstore.New()
	cfg := pricing.Default()
	ledger := ledgerservice.New(store, store, store, store, store, store, cfg)
	engine := placementservice.New(placementservice.Repos{
		Users: store, Sites: store, Contents: store, Placements: store, Audit: store, Notifications: store,
	}, ledger, store, cfg, nopDispatcher{}, cache.Nop{})

	buyer := store.AddUser(domain.User{Balance: decimal.NewFromInt(1000)})
	owner := store.AddUser(domain.User{})
	project := store.AddProject(domain.Project{UserID: buyer})

	reqs := make([]placementservice.PurchaseRequest, 20)
	for i := range reqs {
		site := store.AddSite(domain.Site{OwnerID: owner, IsPublic: true, AvailableForPurchase: true, MaxLinks: 3})
		content := store.AddContent(domain.Content{ProjectID: project, Kind: domain.PlacementLink})
		reqs[i] = placementservice.PurchaseRequest{ProjectID: project, SiteID: site, Type: domain.PlacementLink, ContentIDs: []int{content}}
	}
	reqs[12].ContentIDs = []int{999999}

	svc := New(engine, store, 15)
	res, err := svc.Purchase(context.Background(), buyer, reqs)
	require.NoError(t, err)

	assert.Equal(t, 19, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 12, res.Errors[0].Index)
	assert.Equal(t, "not_found", res.Errors[0].Kind)
	assert.Len(t, store.Placements(), 19)

	spent := decimal.NewFromInt(19 * 25)
	assert.True(t, decimal.NewFromInt(1000).Sub(spent).Equal(store.User(buyer).Balance))
	require.NotNil(t, res.Balance)
	assert.True(t, store.User(buyer).Balance.Equal(*res.Balance))

	report, err := ledger.VerifyLedger(context.Background(), buyer)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}
