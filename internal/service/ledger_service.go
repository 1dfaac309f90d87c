package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/robocoin/api/internal/metrics"
	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
	"github.com/robocoin/api/pkg/security"
)

// LedgerService is the single entry point for moving coins. Every balance
// change in the system -- manual awards, attendance bonuses, review awards,
// shop spends -- goes through Apply or Spend, which keeps the append-only
// ledger and the cached balance consistent.
type LedgerService interface {
	// Apply appends one entry and returns it with the resulting balance.
	// Amount may be negative; the balance is allowed to go below zero.
	Apply(ctx context.Context, studentID, actorID string, amount decimal.Decimal, reason string) (*models.CoinTransaction, decimal.Decimal, error)
	// Spend is Apply with the sign flipped and a funds guard: it rejects
	// the entry instead of driving the balance negative.
	Spend(ctx context.Context, studentID string, price decimal.Decimal, reason string) (*models.CoinTransaction, decimal.Decimal, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.TransactionWithTeacher, error)
	// Reconcile rewrites cached balances that drifted from the ledger sum
	// and reports what it corrected.
	Reconcile(ctx context.Context) ([]models.BalanceCorrection, error)
}

type ledgerService struct {
	txRepo    repository.TransactionRepository
	maxAmount decimal.Decimal
	logger    zerolog.Logger
}

func NewLedgerService(txRepo repository.TransactionRepository, maxAmount float64, logger zerolog.Logger) LedgerService {
	return &ledgerService{
		txRepo:    txRepo,
		maxAmount: decimal.NewFromFloat(maxAmount),
		logger:    logger,
	}
}

func (s *ledgerService) Apply(ctx context.Context, studentID, actorID string, amount decimal.Decimal, reason string) (*models.CoinTransaction, decimal.Decimal, error) {
	return s.apply(ctx, studentID, actorID, amount, reason, false)
}

func (s *ledgerService) Spend(ctx context.Context, studentID string, price decimal.Decimal, reason string) (*models.CoinTransaction, decimal.Decimal, error) {
	return s.apply(ctx, studentID, studentID, price.Neg(), reason, true)
}

func (s *ledgerService) apply(ctx context.Context, studentID, actorID string, amount decimal.Decimal, reason string, requireFunds bool) (*models.CoinTransaction, decimal.Decimal, error) {
	amount = amount.Round(2)
	if amount.IsZero() {
		return nil, decimal.Zero, ErrZeroAmount
	}
	if amount.Abs().GreaterThan(s.maxAmount) {
		return nil, decimal.Zero, ErrAmountTooLarge
	}

	reason = security.SanitizeText(reason)
	if len(reason) < 2 || len(reason) > 200 {
		return nil, decimal.Zero, ErrInvalidReason
	}

	entry := &models.CoinTransaction{
		ID:        uuid.NewString(),
		StudentID: studentID,
		TeacherID: actorID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}

	balance, err := s.txRepo.Apply(ctx, entry, requireFunds)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStudentMissing):
			return nil, decimal.Zero, ErrStudentNotFound
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, decimal.Zero, ErrInsufficientBalance
		default:
			return nil, decimal.Zero, fmt.Errorf("failed to apply ledger entry: %w", err)
		}
	}

	kind := "award"
	if amount.IsNegative() {
		kind = "spend"
	}
	metrics.CountCoinTransaction(kind)

	s.logger.Info().
		Str("student_id", studentID).
		Str("actor_id", actorID).
		Str("amount", amount.String()).
		Str("balance", balance.String()).
		Str("reason", reason).
		Msg("Ledger entry applied")

	return entry, balance, nil
}

func (s *ledgerService) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.TransactionWithTeacher, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	transactions, err := s.txRepo.ListByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func (s *ledgerService) Reconcile(ctx context.Context) ([]models.BalanceCorrection, error) {
	drift, err := s.txRepo.FindDrift(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for drift: %w", err)
	}

	var corrected []models.BalanceCorrection
	for _, c := range drift {
		ok, err := s.txRepo.RewriteBalance(ctx, c.StudentID, c.Cached, c.LedgerSum)
		if err != nil {
			return corrected, fmt.Errorf("failed to rewrite balance for %s: %w", c.StudentID, err)
		}
		if !ok {
			// The balance moved between the scan and the rewrite; the
			// next run will pick it up if it is still off.
			s.logger.Warn().Str("student_id", c.StudentID).Msg("Skipped stale balance correction")
			continue
		}

		s.logger.Info().
			Str("student_id", c.StudentID).
			Str("cached", c.Cached.String()).
			Str("ledger_sum", c.LedgerSum.String()).
			Msg("Corrected drifted balance")
		corrected = append(corrected, c)
	}

	return corrected, nil
}
