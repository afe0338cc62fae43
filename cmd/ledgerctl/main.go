package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/banking/internal/domain"
	"github.com/iho/banking/internal/infrastructure/config"
	"github.com/iho/banking/internal/infrastructure/logger"
	"github.com/iho/banking/internal/usecase"
)

// Exit codes.
const (
	exitOK                = 0
	exitFailure           = 1
	exitInsufficientFunds = 2
	exitAccountNotFound   = 3
	exitInvalidInput      = 4
)

var errInvalidInput = errors.New("invalid input")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultDeps())
	stop()
	os.Exit(code)
}

// app carries state shared by all subcommands of one invocation.
type app struct {
	deps     deps
	out      io.Writer
	errOut   io.Writer
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, d deps) int {
	a := &app{
		deps:     d,
		out:      stdout,
		errOut:   stderr,
		logger:   zerolog.Nop(),
		registry: prometheus.NewRegistry(),
	}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}

	a.writeMetrics()

	return exitCodeFor(err)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Banking ledger operator tool",
		Long:          `Reads balances and moves funds between accounts in the banking ledger database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.deps.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			a.cfg = cfg
			a.logger = logger.New(logger.Config{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				Output: a.errOut,
			})

			return nil
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errInvalidInput, err)
	})

	root.AddCommand(a.migrateCmd(), a.balanceCmd(), a.transferCmd(), a.ledgerCmd())

	return root
}

func (a *app) migrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.deps.migrateUp(a.cfg.DatabaseURL)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.deps.migrateDown(a.cfg.DatabaseURL)
			},
		},
	)

	return migrateCmd
}

func (a *app) balanceCmd() *cobra.Command {
	return allowNegativeArgs(&cobra.Command{
		Use:   "balance <account-id>",
		Short: "Print the balance of an account",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}

			return a.withServices(cmd.Context(), func(s *services) error {
				balance, err := s.transfer.BalanceForAccount(cmd.Context(), id)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, balance.StringFixed(domain.AmountScale))
				return nil
			})
		},
	})
}

func (a *app) transferCmd() *cobra.Command {
	return allowNegativeArgs(&cobra.Command{
		Use:   "transfer <from-account-id> <to-account-id> <amount>",
		Short: "Move funds from one account to another",
		Long: `Debits the source account and credits the destination account in one transaction.
Every invocation moves funds again; the command is not idempotent.`,
		Args: exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseAccountID(args[0])
			if err != nil {
				return err
			}

			to, err := parseAccountID(args[1])
			if err != nil {
				return err
			}

			amount, err := domain.ParseAmount(args[2])
			if err != nil {
				return err
			}

			return a.withServices(cmd.Context(), func(s *services) error {
				if err := s.transfer.Transfer(cmd.Context(), usecase.TransferInput{
					FromAccountID: from,
					ToAccountID:   to,
					Amount:        amount,
				}); err != nil {
					return err
				}

				fmt.Fprintf(a.out, "transferred %s from %d to %d\n", amount.StringFixed(domain.AmountScale), from, to)
				return nil
			})
		},
	})
}

func (a *app) ledgerCmd() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(
		&cobra.Command{
			Use:   "total",
			Short: "Print the sum of all account balances",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withServices(cmd.Context(), func(s *services) error {
					total, err := s.ledger.TotalBalance(cmd.Context())
					if err != nil {
						return err
					}

					fmt.Fprintln(a.out, total.StringFixed(domain.AmountScale))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "check <expected-total>",
			Short: "Check that the sum of all balances equals the expected total",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				expected, err := parseTotal(args[0])
				if err != nil {
					return err
				}

				return a.withServices(cmd.Context(), func(s *services) error {
					if err := s.ledger.CheckConservation(cmd.Context(), expected); err != nil {
						return err
					}

					fmt.Fprintln(a.out, "ledger balanced")
					return nil
				})
			},
		},
	)

	return ledgerCmd
}

func (a *app) withServices(ctx context.Context, fn func(*services) error) error {
	s, err := a.deps.open(ctx, a.cfg, a.logger, a.registry)
	if err != nil {
		return err
	}
	defer s.close()

	return fn(s)
}

// writeMetrics dumps the registry when METRICS_TEXTFILE is set.
func (a *app) writeMetrics() {
	if a.cfg == nil || a.cfg.MetricsTextfile == "" {
		return
	}

	if err := prometheus.WriteToTextfile(a.cfg.MetricsTextfile, a.registry); err != nil {
		a.logger.Warn().Err(err).Str("path", a.cfg.MetricsTextfile).Msg("failed to write metrics textfile")
	}
}

// allowNegativeArgs disables flag parsing so that negative account ids such
// as "-5" reach the command as arguments instead of failing as unknown
// shorthand flags. -h and --help still print the command help.
func allowNegativeArgs(cmd *cobra.Command) *cobra.Command {
	cmd.DisableFlagParsing = true

	validate, runE := cmd.Args, cmd.RunE
	cmd.Args = func(c *cobra.Command, args []string) error {
		if wantsHelp(args) {
			return nil
		}
		return validate(c, args)
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		if wantsHelp(args) {
			return c.Help()
		}
		return runE(c, args)
	}

	return cmd
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s expects %d argument(s), got %d", errInvalidInput, cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func parseAccountID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: account id %q is not an integer", errInvalidInput, s)
	}

	return id, nil
}

func parseTotal(s string) (decimal.Decimal, error) {
	total, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: total %q is not a decimal", errInvalidInput, s)
	}

	return total, nil
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrInsufficientFunds):
		return exitInsufficientFunds
	case errors.Is(err, domain.ErrAccountNotFound):
		return exitAccountNotFound
	case errors.Is(err, errInvalidInput),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount):
		return exitInvalidInput
	default:
		return exitFailure
	}
}
