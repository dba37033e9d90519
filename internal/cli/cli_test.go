package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
)

func NewMock(t *testing.T) (*MockBackend, Connector, *int) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	released := new(int)
	connect := func(context.Context, *RootOptions) (Backend, func(), error) {
		return backend, func() { *released++ }, nil
	}
	return backend, connect, released
}

func execute(connect Connector, args ...string) (string, error) {
	cmd := NewRootCommand(connect)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	for _, name := range []string{"approve", "reject", "refund", "adjust", "verify-ledger", "scheduler-tick"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	for _, flag := range []string{"database", "admin", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestApprove(t *testing.T) {
	backend, connect, released := NewMock(t)

	backend.EXPECT().Approve(gomock.Any(), 1, 5).Return(&domain.Placement{ID: 5, Status: domain.StatusPending}, nil)
	out, err := execute(connect, "--admin", "1", "approve", "5")
	require.NoError(t, err)
	assert.Equal(t, "placement 5 approved, now pending\n", out)
	assert.Equal(t, 1, *released)
}

func TestApprove_JSON(t *testing.T) {
	backend, connect, _ := NewMock(t)

	backend.EXPECT().Approve(gomock.Any(), 1, 5).Return(nil, domain.InvalidState("placement 5 is placed, not pending approval"))
	out, err := execute(connect, "--admin", "1", "--format", "json", "approve", "5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, exitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_state", resp.Error.Kind)
}

func TestArgumentErrors(t *testing.T) {
	_, connect, released := NewMock(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing admin", []string{"approve", "5"}},
		{"bad format", []string{"--admin", "1", "--format", "xml", "approve", "5"}},
		{"bad placement id", []string{"--admin", "1", "refund", "x"}},
		{"bad user id", []string{"--admin", "1", "adjust", "0", "10"}},
		{"bad amount", []string{"--admin", "1", "adjust", "3", "ten"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(connect, tt.args...)
			assert.Equal(t, ExitCommandError, exitCode(err))
		})
	}
	assert.Zero(t, *released)
}

func TestConnectFailure(t *testing.T) {
	connect := func(context.Context, *RootOptions) (Backend, func(), error) {
		return nil, nil, errors.New("connection refused")
	}
	_, err := execute(connect, "verify-ledger", "3")
	assert.Equal(t, ExitCommandError, exitCode(err))
	assert.ErrorContains(t, err, "connection refused")
}

func TestReject(t *testing.T) {
	backend, connect, _ := NewMock(t)

	backend.EXPECT().Reject(gomock.Any(), 1, 5, "spam").Return(&placementservice.RefundResult{
		PlacementID: 5, UserID: 3, Refunded: true, Amount: decimal.NewFromInt(25),
	}, nil)
	out, err := execute(connect, "--admin", "1", "reject", "5", "--reason", "spam")
	require.NoError(t, err)
	assert.Equal(t, "placement 5 rejected, $25.00 refunded to user 3\n", out)
}

func TestRefund(t *testing.T) {
	backend, connect, _ := NewMock(t)

	backend.EXPECT().DeleteAndRefund(gomock.Any(), 1, 5).Return(&placementservice.RefundResult{
		PlacementID: 5, UserID: 3, Refunded: true, Amount: decimal.RequireFromString("22.5"),
	}, nil)
	out, err := execute(connect, "--admin", "1", "refund", "5")
	require.NoError(t, err)
	assert.Equal(t, "placement 5 deleted, $22.50 refunded to user 3\n", out)

	backend.EXPECT().DeleteAndRefund(gomock.Any(), 1, 6).Return(&placementservice.RefundResult{PlacementID: 6}, nil)
	out, err = execute(connect, "--admin", "1", "refund", "6")
	require.NoError(t, err)
	assert.Equal(t, "placement 6 deleted, nothing refunded\n", out)
}

func TestAdjust(t *testing.T) {
	backend, connect, _ := NewMock(t)

	backend.EXPECT().AdminAdjust(gomock.Any(), 1, 3, decimal.RequireFromString("-10"), "chargeback").
		Return(&domain.User{ID: 3, Balance: decimal.NewFromInt(20)}, nil)
	out, err := execute(connect, "--admin", "1", "adjust", "--reason", "chargeback", "3", "-10")
	require.NoError(t, err)
	assert.Equal(t, "user 3 balance is now $20.00\n", out)

	backend.EXPECT().AdminAdjust(gomock.Any(), 1, 3, decimal.RequireFromString("-100"), "").
		Return(nil, domain.InsufficientFunds(decimal.NewFromInt(100), decimal.NewFromInt(20)))
	out, err = execute(connect, "--admin", "1", "adjust", "3", "-100")
	assert.Equal(t, ExitFailure, exitCode(err))
	assert.Contains(t, out, "Error [insufficient_funds]")
}

func TestVerifyLedger(t *testing.T) {
	backend, connect, _ := NewMock(t)

	backend.EXPECT().VerifyLedger(gomock.Any(), 3).Return(&ledgerservice.LedgerReport{
		UserID: 3, Balance: decimal.NewFromInt(20), Replayed: decimal.NewFromInt(20), Consistent: true,
	}, nil)
	out, err := execute(connect, "verify-ledger", "3")
	require.NoError(t, err)
	assert.Equal(t, "user 3 ok: balance $20.00\n", out)

	backend.EXPECT().VerifyLedger(gomock.Any(), 4).Return(&ledgerservice.LedgerReport{
		UserID: 4, Balance: decimal.NewFromInt(20), Replayed: decimal.NewFromInt(15),
	}, nil)
	out, err = execute(connect, "verify-ledger", "4")
	assert.Equal(t, ExitFailure, exitCode(err))
	assert.Contains(t, out, "MISMATCH")
}

func TestSchedulerTick(t *testing.T) {
	backend, connect, _ := NewMock(t)

	backend.EXPECT().Tick(gomock.Any(), 50).Return(&placementservice.TickResult{Published: 2, Renewed: 1, Expired: 3}, nil)
	out, err := execute(connect, "--format", "json", "scheduler-tick", "--limit", "50")
	require.NoError(t, err)

	var resp struct {
		Status string                      `json:"status"`
		Data   placementservice.TickResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, placementservice.TickResult{Published: 2, Renewed: 1, Expired: 3}, resp.Data)
}
