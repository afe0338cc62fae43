package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iho/banking/internal/domain"
)

const tracerName = "github.com/iho/banking/internal/usecase"

// TransferUseCase reads balances and moves funds between two accounts atomically.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	idGen       IDGenerator
	cache       BalanceCache
	metrics     MetricsRecorder
	tracer      trace.Tracer
	logger      zerolog.Logger
	txTimeout   time.Duration
}

// Option configures optional TransferUseCase collaborators.
type Option func(*TransferUseCase)

// WithBalanceCache routes balance reads through cache and invalidates
// both accounts after every committed transfer.
func WithBalanceCache(cache BalanceCache) Option {
	return func(uc *TransferUseCase) {
		uc.cache = cache
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(uc *TransferUseCase) {
		uc.metrics = m
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(uc *TransferUseCase) {
		uc.tracer = t
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(uc *TransferUseCase) {
		uc.logger = l
	}
}

// WithTransactionTimeout overrides DefaultTransactionTimeout. Zero disables it.
func WithTransactionTimeout(d time.Duration) Option {
	return func(uc *TransferUseCase) {
		uc.txTimeout = d
	}
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	idGen IDGenerator,
	opts ...Option,
) *TransferUseCase {
	uc := &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		idGen:       idGen,
		metrics:     nopMetrics{},
		tracer:      otel.Tracer(tracerName),
		logger:      zerolog.Nop(),
		txTimeout:   DefaultTransactionTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
}

// BalanceForAccount returns the current balance of an account.
// A missing account yields domain.ErrAccountNotFound, never a zero balance.
func (uc *TransferUseCase) BalanceForAccount(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.BalanceForAccount",
		trace.WithAttributes(attribute.Int64("account.id", accountID)),
	)
	defer span.End()

	if uc.cache != nil {
		balance, ok, err := uc.cache.Get(ctx, accountID)
		switch {
		case err != nil:
			uc.logger.Warn().Err(err).Int64("account_id", accountID).Msg("balance cache read failed")
		case ok:
			uc.metrics.ObserveBalanceLookup(SourceCache, "hit")
			span.SetAttributes(attribute.Bool("cache.hit", true))

			return balance, nil
		}
	}

	balance, err := uc.accountRepo.GetBalance(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			uc.metrics.ObserveBalanceLookup(SourceStore, "not_found")
			span.SetStatus(codes.Error, err.Error())

			return decimal.Zero, err
		}

		err = asStoreFailure("read balance", err)
		uc.metrics.ObserveBalanceLookup(SourceStore, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return decimal.Zero, err
	}

	uc.metrics.ObserveBalanceLookup(SourceStore, "found")

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, accountID, balance); err != nil {
			uc.logger.Warn().Err(err).Int64("account_id", accountID).Msg("balance cache write failed")
		}
	}

	return balance, nil
}

// Transfer debits the source account and credits the destination account
// within a single transaction. On any error neither balance has changed.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (err error) {
	ref := uc.idGen.Generate()
	start := time.Now()

	ctx, span := uc.tracer.Start(ctx, "ledger.Transfer",
		trace.WithAttributes(
			attribute.String("transfer.ref", ref),
			attribute.Int64("transfer.from_account_id", input.FromAccountID),
			attribute.Int64("transfer.to_account_id", input.ToAccountID),
			attribute.String("transfer.amount", input.Amount.String()),
		),
	)
	defer span.End()

	logger := uc.logger.With().
		Str("transfer_ref", ref).
		Int64("from_account_id", input.FromAccountID).
		Int64("to_account_id", input.ToAccountID).
		Str("amount", input.Amount.String()).
		Logger()

	defer func() {
		outcome := transferOutcome(err)
		uc.metrics.ObserveTransfer(outcome, input.Amount, time.Since(start))

		if err == nil {
			logger.Info().Msg("transfer committed")
			return
		}

		span.SetStatus(codes.Error, err.Error())

		if domain.IsBusinessError(err) {
			logger.Warn().Err(err).Str("outcome", outcome).Msg("transfer aborted")
			return
		}

		span.RecordError(err)
		logger.Error().Err(err).Str("outcome", outcome).Msg("transfer aborted")
	}()

	transfer := &domain.Transfer{
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Amount:        input.Amount,
	}

	if err := transfer.Validate(); err != nil {
		return err
	}

	if err := uc.apply(ctx, transfer); err != nil {
		return err
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, transfer.FromAccountID, transfer.ToAccountID); err != nil {
			logger.Warn().Err(err).Msg("balance cache invalidation failed")
		}
	}

	return nil
}

func (uc *TransferUseCase) apply(ctx context.Context, transfer *domain.Transfer) error {
	if uc.txTimeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, uc.txTimeout)
			defer cancel()
		}
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return asStoreFailure("begin transaction", err)
	}
	// No-op once committed.
	defer tx.Rollback(context.WithoutCancel(ctx))

	for _, leg := range transfer.Legs() {
		if err := uc.accountRepo.AddToBalance(ctx, tx, leg.AccountID, leg.Delta); err != nil {
			return asStoreFailure("update balance", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return asStoreFailure("commit transaction", err)
	}

	return nil
}

// asStoreFailure keeps typed outcomes and wraps anything else as a store failure.
func asStoreFailure(op string, err error) error {
	if domain.IsBusinessError(err) || errors.Is(err, domain.ErrStoreFailure) {
		return err
	}

	return domain.NewStoreError(op, err)
}

func transferOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeCommitted
	case errors.Is(err, domain.ErrInsufficientFunds):
		return OutcomeInsufficientFunds
	case errors.Is(err, domain.ErrAccountNotFound):
		return OutcomeAccountNotFound
	case errors.Is(err, domain.ErrSameAccount), errors.Is(err, domain.ErrInvalidAmount):
		return OutcomeInvalid
	default:
		return OutcomeStoreFailure
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveTransfer(string, decimal.Decimal, time.Duration) {}

func (nopMetrics) ObserveBalanceLookup(string, string) {}
