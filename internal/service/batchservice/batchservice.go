// Package batchservice fans multi-item purchases and deletions out over the
// placement engine with bounded parallelism. Items succeed or fail on their own.
package batchservice

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
)

const (
	DefaultConcurrency = 15
	MaxBatchSize       = 100
)

type Placements interface {
	Purchase(ctx context.Context, userID int, req placementservice.PurchaseRequest) (*placementservice.PurchaseResult, error)
	DeleteAndRefund(ctx context.Context, adminID, placementID int) (*placementservice.RefundResult, error)
}

type NotificationRepo interface {
	AppendNotification(ctx context.Context, n *domain.Notification) error
}

type Service struct {
	placements    Placements
	notifications NotificationRepo
	concurrency   int
}

func New(placements Placements, notifications NotificationRepo, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		placements:    placements,
		notifications: notifications,
		concurrency:   concurrency,
	}
}

type ItemError struct {
	Index       int    `json:"index"`
	PlacementID int    `json:"placement_id,omitempty"`
	Kind        string `json:"kind"`
	Error       string `json:"error"`
}

type Result struct {
	BatchID       string              `json:"batch_id"`
	Succeeded     int                 `json:"succeeded"`
	Failed        int                 `json:"failed"`
	Placements    []*domain.Placement `json:"placements,omitempty"`
	Errors        []ItemError         `json:"errors"`
	Balance       *decimal.Decimal    `json:"balance,omitempty"`
	TotalRefunded decimal.Decimal     `json:"total_refunded"`
	Duration      time.Duration       `json:"duration"`
}

// run calls fn for every index in chunks of s.concurrency. Within a chunk the
// items run in parallel; the next chunk starts when the previous one is done.
func (s *Service) run(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	for start := 0; start < n; start += s.concurrency {
		end := start + s.concurrency
		if end > n {
			end = n
		}
		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				fn(ctx, i)
				return nil
			})
		}
		_ = g.Wait()
	}
}

func checkSize(n int) error {
	switch {
	case n == 0:
		return domain.Validation("batch is empty")
	case n > MaxBatchSize:
		return domain.Validation("batch holds %d items, at most %d allowed", n, MaxBatchSize)
	}
	return nil
}

func itemError(i, placementID int, err error) ItemError {
	return ItemError{Index: i, PlacementID: placementID, Kind: domain.KindOf(err).String(), Error: err.Error()}
}

func (s *Service) Purchase(ctx context.Context, userID int, reqs []placementservice.PurchaseRequest) (*Result, error) {
	if err := checkSize(len(reqs)); err != nil {
		return nil, err
	}
	started := time.Now()
	res := &Result{BatchID: uuid.NewString(), Errors: []ItemError{}}
	placements := make([]*domain.Placement, len(reqs))

	var (
		mu      sync.Mutex
		balance decimal.Decimal
	)
	s.run(ctx, len(reqs), func(ctx context.Context, i int) {
		out, err := s.placements.Purchase(ctx, userID, reqs[i])
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, itemError(i, 0, err))
			return
		}
		res.Succeeded++
		placements[i] = out.Placement
		// purchases only lower the balance, so the smallest one seen is the latest
		if res.Succeeded == 1 || out.Balance.LessThan(balance) {
			balance = out.Balance
		}
	})

	for _, p := range placements {
		if p != nil {
			res.Placements = append(res.Placements, p)
		}
	}
	if res.Succeeded > 0 {
		res.Balance = &balance
	}
	sortErrors(res.Errors)
	res.Duration = time.Since(started)

	if res.Succeeded > 1 {
		s.notifyBatch(ctx, &userID, "batch_purchase", "Batch purchase completed",
			fmt.Sprintf("%d of %d placements purchased", res.Succeeded, len(reqs)), res)
	}
	zap.L().Info("batch purchase finished",
		zap.String("batch_id", res.BatchID), zap.Int("user_id", userID),
		zap.Int("succeeded", res.Succeeded), zap.Int("failed", res.Failed), zap.Duration("duration", res.Duration))
	return res, nil
}

func (s *Service) Delete(ctx context.Context, adminID int, placementIDs []int) (*Result, error) {
	if err := checkSize(len(placementIDs)); err != nil {
		return nil, err
	}
	started := time.Now()
	res := &Result{BatchID: uuid.NewString(), Errors: []ItemError{}, TotalRefunded: decimal.Zero}

	var mu sync.Mutex
	s.run(ctx, len(placementIDs), func(ctx context.Context, i int) {
		out, err := s.placements.DeleteAndRefund(ctx, adminID, placementIDs[i])
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, itemError(i, placementIDs[i], err))
			return
		}
		res.Succeeded++
		if out.Refunded {
			res.TotalRefunded = res.TotalRefunded.Add(out.Amount)
		}
	})
	sortErrors(res.Errors)
	res.Duration = time.Since(started)

	if res.Succeeded > 1 {
		s.notifyBatch(ctx, nil, "batch_delete", "Batch delete completed",
			fmt.Sprintf("%d of %d placements deleted, $%s refunded", res.Succeeded, len(placementIDs), res.TotalRefunded.StringFixed(2)), res)
	}
	zap.L().Info("batch delete finished",
		zap.String("batch_id", res.BatchID), zap.Int("admin_id", adminID),
		zap.Int("succeeded", res.Succeeded), zap.Int("failed", res.Failed),
		zap.String("refunded", res.TotalRefunded.String()))
	return res, nil
}

func (s *Service) notifyBatch(ctx context.Context, userID *int, kind, title, message string, res *Result) {
	err := s.notifications.AppendNotification(ctx, &domain.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Metadata: map[string]any{
			"batch_id":  res.BatchID,
			"succeeded": res.Succeeded,
			"failed":    res.Failed,
		},
	})
	if err != nil {
		zap.L().Error("can't store batch notification", zap.String("batch_id", res.BatchID), zap.Error(err))
	}
}

func sortErrors(errs []ItemError) {
	sort.Slice(errs, func(i, j int) bool { return errs[i].Index < errs[j].Index })
}
