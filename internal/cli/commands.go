package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var adminRequired = map[string]string{"admin": "required"}

// run opens the backend, applies the timeout and hands both to fn.
func run(cmd *cobra.Command, opts *RootOptions, connect Connector, fn func(ctx context.Context, b Backend, out *OutputFormatter) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	b, release, err := connect(ctx, opts)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "open database", Err: err}
	}
	defer release()

	return fn(ctx, b, &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()})
}

func positiveID(raw, what string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid %s %q", what, raw)}
	}
	return id, nil
}

func newApproveCommand(opts *RootOptions, connect Connector) *cobra.Command {
	return &cobra.Command{
		Use:         "approve <placement-id>",
		Short:       "Approve a placement waiting for moderation",
		Args:        cobra.ExactArgs(1),
		Annotations: adminRequired,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := positiveID(args[0], "placement id")
			if err != nil {
				return err
			}
			return run(cmd, opts, connect, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				p, err := b.Approve(ctx, opts.AdminID, id)
				if err != nil {
					return out.Fail(err)
				}
				return out.Success(p, fmt.Sprintf("placement %d approved, now %s", p.ID, p.Status))
			})
		},
	}
}

func newRejectCommand(opts *RootOptions, connect Connector) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:         "reject <placement-id>",
		Short:       "Reject a placement and refund its buyer",
		Args:        cobra.ExactArgs(1),
		Annotations: adminRequired,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := positiveID(args[0], "placement id")
			if err != nil {
				return err
			}
			return run(cmd, opts, connect, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				res, err := b.Reject(ctx, opts.AdminID, id, reason)
				if err != nil {
					return out.Fail(err)
				}
				return out.Success(res, fmt.Sprintf("placement %d rejected, $%s refunded to user %d",
					res.PlacementID, res.Amount.StringFixed(2), res.UserID))
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to the buyer")
	return cmd
}

func newRefundCommand(opts *RootOptions, connect Connector) *cobra.Command {
	return &cobra.Command{
		Use:         "refund <placement-id>",
		Short:       "Delete a placement, refunding it when it never went live",
		Args:        cobra.ExactArgs(1),
		Annotations: adminRequired,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := positiveID(args[0], "placement id")
			if err != nil {
				return err
			}
			return run(cmd, opts, connect, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				res, err := b.DeleteAndRefund(ctx, opts.AdminID, id)
				if err != nil {
					return out.Fail(err)
				}
				text := fmt.Sprintf("placement %d deleted, nothing refunded", res.PlacementID)
				if res.Refunded {
					text = fmt.Sprintf("placement %d deleted, $%s refunded to user %d",
						res.PlacementID, res.Amount.StringFixed(2), res.UserID)
				}
				return out.Success(res, text)
			})
		},
	}
}

func newAdjustCommand(opts *RootOptions, connect Connector) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:         "adjust [flags] <user-id> <amount>",
		Short:       "Credit (positive) or debit (negative) a user balance",
		Args:        cobra.ExactArgs(2),
		Annotations: adminRequired,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := positiveID(args[0], "user id")
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid amount %q", args[1]), Err: err}
			}
			return run(cmd, opts, connect, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				user, err := b.AdminAdjust(ctx, opts.AdminID, userID, amount, reason)
				if err != nil {
					return out.Fail(err)
				}
				return out.Success(user, fmt.Sprintf("user %d balance is now $%s", user.ID, user.Balance.StringFixed(2)))
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in the ledger")
	// flags go before the arguments so a negative amount is not read as one
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newVerifyLedgerCommand(opts *RootOptions, connect Connector) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-ledger <user-id>",
		Short: "Check that a user's transactions add up to the stored balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := positiveID(args[0], "user id")
			if err != nil {
				return err
			}
			return run(cmd, opts, connect, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				report, err := b.VerifyLedger(ctx, userID)
				if err != nil {
					return out.Fail(err)
				}
				if !report.Consistent {
					if err := out.Success(report, fmt.Sprintf("user %d MISMATCH: balance $%s, transactions sum to $%s",
						userID, report.Balance.StringFixed(2), report.Replayed.StringFixed(2))); err != nil {
						return err
					}
					return &ExitError{Code: ExitFailure, Message: "ledger mismatch"}
				}
				return out.Success(report, fmt.Sprintf("user %d ok: balance $%s", userID, report.Balance.StringFixed(2)))
			})
		},
	}
}

func newSchedulerTickCommand(opts *RootOptions, connect Connector) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "scheduler-tick",
		Short: "Run one scheduler pass: publish due, auto-renew, expire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, connect, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				res, err := b.Tick(ctx, limit)
				if err != nil {
					return out.Fail(err)
				}
				return out.Success(res, fmt.Sprintf("published %d, renewed %d, expired %d, failed %d",
					res.Published, res.Renewed, res.Expired, res.Failed))
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "max placements per phase")
	return cmd
}
