// Package cli is the operator command line: moderation, refunds, balance
// corrections and ledger checks straight against the database.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/config"
	"github.com/GlebRadaev/linkmarket/pkg/logger"
)

type RootOptions struct {
	Database    string
	RedisAddr   string
	PricingFile string
	AdminID     int
	Format      string
	LogLvl      string
	Timeout     time.Duration
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand wires every subcommand to backends opened by connect.
func NewRootCommand(connect Connector) *cobra.Command {
	cfg := config.FromEnv()
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "linkmarketctl",
		Short:         "Operate the linkmarket billing engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)}
			}
			if opts.AdminID <= 0 && cmd.Annotations["admin"] == "required" {
				return &ExitError{Code: ExitCommandError, Message: "--admin is required"}
			}
			log, err := logger.New(opts.LogLvl, "stderr")
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "init logger", Err: err}
			}
			zap.ReplaceGlobals(log)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Database, "database", cfg.Database, "database DSN")
	flags.StringVar(&opts.RedisAddr, "redis", cfg.RedisAddr, "redis address used to evict site feeds")
	flags.StringVar(&opts.PricingFile, "pricing", cfg.PricingFile, "pricing YAML file")
	flags.IntVar(&opts.AdminID, "admin", 0, "id of the admin user acting")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.LogLvl, "log-level", "warn", "log level")
	flags.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "command timeout")

	cmd.AddCommand(
		newApproveCommand(opts, connect),
		newRejectCommand(opts, connect),
		newRefundCommand(opts, connect),
		newAdjustCommand(opts, connect),
		newVerifyLedgerCommand(opts, connect),
		newSchedulerTickCommand(opts, connect),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand(Connect)
	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
			return ExitCommandError
		}
		if exitErr.Code == ExitCommandError {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitErr.Code
	}
	return ExitSuccess
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
