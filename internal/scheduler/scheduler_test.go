package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/linkmarket/internal/config"
	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func NewMock(t *testing.T) (*Scheduler, *MockPlacements) {
	ctrl := gomock.NewController(t)
	placements := NewMockPlacements(ctrl)

	pool := queue.NewWorkerPool(4)
	t.Cleanup(pool.Close)

	s := New(&config.Config{SchedulerBatch: 10, SchedulerInterval: time.Hour}, placements, pool)
	s.now = func() time.Time { return now }
	return s, placements
}

func TestScheduler_Tick(t *testing.T) {
	s, placements := NewMock(t)

	gomock.InOrder(
		placements.EXPECT().DueScheduled(gomock.Any(), now, 10).
			Return([]domain.Placement{{ID: 1}, {ID: 2}}, nil),
		placements.EXPECT().ExpiringLinks(gomock.Any(), now.Add(placementservice.AutoRenewWindow), 10).
			Return([]domain.Placement{{ID: 3, AutoRenewal: true}, {ID: 4}, {ID: 5, AutoRenewal: true}}, nil),
		placements.EXPECT().ExpiringLinks(gomock.Any(), now, 10).
			Return([]domain.Placement{{ID: 5}, {ID: 6}}, nil),
	)
	placements.EXPECT().PromoteScheduled(gomock.Any(), 1).Return(nil)
	placements.EXPECT().PromoteScheduled(gomock.Any(), 2).Return(errors.New("db down"))
	placements.EXPECT().AutoRenew(gomock.Any(), 3).
		Return(&placementservice.RenewResult{Price: decimal.NewFromInt(25)}, nil)
	placements.EXPECT().AutoRenew(gomock.Any(), 5).
		Return(nil, domain.InsufficientFunds(decimal.NewFromInt(25), decimal.Zero))
	placements.EXPECT().Expire(gomock.Any(), 5).Return(nil)
	placements.EXPECT().Expire(gomock.Any(), 6).Return(nil)

	res, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &placementservice.TickResult{Published: 1, Renewed: 1, Expired: 2, Failed: 2}, res)
}

func TestScheduler_TickFindError(t *testing.T) {
	s, placements := NewMock(t)

	placements.EXPECT().DueScheduled(gomock.Any(), now, 10).Return(nil, errors.New("db down"))

	_, err := s.Tick(context.Background())
	assert.ErrorContains(t, err, "find due placements")
}

func TestScheduler_SkipsInFlight(t *testing.T) {
	s, placements := NewMock(t)
	s.inFlight.Store(7, struct{}{})

	placements.EXPECT().DueScheduled(gomock.Any(), now, 10).Return([]domain.Placement{{ID: 7}, {ID: 8}}, nil)
	placements.EXPECT().PromoteScheduled(gomock.Any(), 8).Return(nil)
	placements.EXPECT().ExpiringLinks(gomock.Any(), gomock.Any(), 10).Return(nil, nil).Times(2)

	res, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	_, stillThere := s.inFlight.Load(7)
	assert.True(t, stillThere)
	_, released := s.inFlight.Load(8)
	assert.False(t, released)
}

func TestScheduler_AddTaskError(t *testing.T) {
	ctrl := gomock.NewController(t)
	placements := NewMockPlacements(ctrl)
	pool := queue.NewMockWorkerPoolI(ctrl)

	s := New(&config.Config{}, placements, pool)
	s.now = func() time.Time { return now }

	placements.EXPECT().DueScheduled(gomock.Any(), now, 100).Return([]domain.Placement{{ID: 1}}, nil)
	placements.EXPECT().ExpiringLinks(gomock.Any(), gomock.Any(), 100).Return(nil, nil).Times(2)
	pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).Return(context.Canceled)

	res, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	_, held := s.inFlight.Load(1)
	assert.False(t, held)
}

func TestScheduler_Start(t *testing.T) {
	s, placements := NewMock(t)
	s.updateInterval = 5 * time.Millisecond

	var ticks int32
	placements.EXPECT().DueScheduled(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time, int) ([]domain.Placement, error) {
			atomic.AddInt32(&ticks, 1)
			return nil, nil
		}).MinTimes(1)
	placements.EXPECT().ExpiringLinks(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&ticks) > 0 }, time.Second, 5*time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
}
