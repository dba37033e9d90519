package service

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/linkmarket/internal/pg"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/repo"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	pool := queue.NewWorkerPool(1)
	defer pool.Close()

	services := New(repo.New(mockDB), Options{
		TXManager:  pg.NewMockTXManager(ctrl),
		Pricing:    pricing.Default(),
		Dispatcher: queue.NewPoolDispatcher(pool, nil),
	})

	assert.NotNil(t, services.Ledger)
	assert.NotNil(t, services.Placements)
	assert.NotNil(t, services.Batch)
}
