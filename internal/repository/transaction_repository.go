package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/robocoin/api/internal/models"
)

// Outcomes of Apply that the service layer maps onto its own taxonomy.
var (
	ErrStudentMissing    = errors.New("ledger: student not found")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
)

const foreignKeyViolation = "23503"

type TransactionRepository interface {
	// Apply appends the ledger entry and moves the cached balance in one
	// database transaction, returning the new balance. With requireFunds
	// the whole transaction is rejected when it would drive the balance
	// below zero.
	Apply(ctx context.Context, entry *models.CoinTransaction, requireFunds bool) (decimal.Decimal, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.TransactionWithTeacher, error)
	SumPositiveSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	WeeklyTotals(ctx context.Context, since time.Time) ([]models.WeeklyRankingEntry, error)
	ListForExport(ctx context.Context, groupID string) ([]models.TransactionExportRow, error)
	FindDrift(ctx context.Context) ([]models.BalanceCorrection, error)
	RewriteBalance(ctx context.Context, studentID string, cached, ledgerSum decimal.Decimal) (bool, error)
}

type transactionRepository struct {
	*PostgresRepository
}

func NewTransactionRepository(db *sql.DB, logger zerolog.Logger) TransactionRepository {
	return &transactionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *transactionRepository) Apply(ctx context.Context, entry *models.CoinTransaction, requireFunds bool) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO coin_transactions (id, student_id, teacher_id, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, insert,
		entry.ID,
		entry.StudentID,
		entry.TeacherID,
		entry.Amount,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return decimal.Zero, ErrStudentMissing
		}
		return decimal.Zero, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	// The balance moves by an atomic increment against the stored value;
	// concurrent appends for the same student serialize on this row and
	// neither write can be lost.
	update := `
		UPDATE users
		SET total_coins = ROUND(total_coins + $1, 2)
		WHERE id = $2 AND role = 'student'
	`
	if requireFunds {
		update += ` AND total_coins + $1 >= 0`
	}
	update += ` RETURNING total_coins`

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx, update, entry.Amount, entry.StudentID).Scan(&balance)
	if err == sql.ErrNoRows {
		if !requireFunds {
			return decimal.Zero, ErrStudentMissing
		}
		exists := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND role = 'student')`
		var isStudent bool
		if err := tx.QueryRowContext(ctx, exists, entry.StudentID).Scan(&isStudent); err != nil {
			return decimal.Zero, fmt.Errorf("failed to check student: %w", err)
		}
		if !isStudent {
			return decimal.Zero, ErrStudentMissing
		}
		return decimal.Zero, ErrInsufficientFunds
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	return balance, nil
}

func (r *transactionRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.TransactionWithTeacher, error) {
	query := `
		SELECT t.id, t.student_id, t.teacher_id, t.amount, t.reason, t.created_at,
			COALESCE(u.name, '') AS teacher_name
		FROM coin_transactions t
		LEFT JOIN users u ON u.id = t.teacher_id
		WHERE t.student_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.TransactionWithTeacher
	for rows.Next() {
		var t models.TransactionWithTeacher
		err := rows.Scan(
			&t.ID,
			&t.StudentID,
			&t.TeacherID,
			&t.Amount,
			&t.Reason,
			&t.CreatedAt,
			&t.TeacherName,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

func (r *transactionRepository) SumPositiveSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM coin_transactions
		WHERE amount > 0 AND created_at >= $1
	`

	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, since).Scan(&sum)
	return sum, err
}

func (r *transactionRepository) WeeklyTotals(ctx context.Context, since time.Time) ([]models.WeeklyRankingEntry, error) {
	query := `
		SELECT u.id, u.name, COALESCE(SUM(t.amount), 0) AS weekly_coins
		FROM users u
		LEFT JOIN coin_transactions t
			ON t.student_id = u.id AND t.amount > 0 AND t.created_at >= $1
		WHERE u.role = 'student' AND u.is_active = true
		GROUP BY u.id, u.name, u.created_at
		ORDER BY weekly_coins DESC, u.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.WeeklyRankingEntry
	for rows.Next() {
		var e models.WeeklyRankingEntry
		if err := rows.Scan(&e.StudentID, &e.Name, &e.WeeklyCoins); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *transactionRepository) ListForExport(ctx context.Context, groupID string) ([]models.TransactionExportRow, error) {
	query := `
		SELECT s.name, COALESCE(g.name, ''), t.amount, t.reason, COALESCE(a.name, ''), t.created_at
		FROM coin_transactions t
		JOIN users s ON s.id = t.student_id
		LEFT JOIN groups g ON g.id = s.group_id
		LEFT JOIN users a ON a.id = t.teacher_id
	`
	args := []interface{}{}
	if groupID != "" {
		query += ` WHERE s.group_id = $1`
		args = append(args, groupID)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.TransactionExportRow
	for rows.Next() {
		var row models.TransactionExportRow
		err := rows.Scan(
			&row.StudentName,
			&row.GroupName,
			&row.Amount,
			&row.Reason,
			&row.TeacherName,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// FindDrift lists students whose cached balance no longer equals the ledger
// sum. With Apply as the only writer this stays empty; anything here means
// the data was touched out of band and needs the reconcile pass.
func (r *transactionRepository) FindDrift(ctx context.Context) ([]models.BalanceCorrection, error) {
	query := `
		SELECT u.id, u.total_coins, COALESCE(SUM(t.amount), 0) AS ledger_sum
		FROM users u
		LEFT JOIN coin_transactions t ON t.student_id = u.id
		WHERE u.role = 'student'
		GROUP BY u.id, u.total_coins
		HAVING u.total_coins <> COALESCE(SUM(t.amount), 0)
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drift []models.BalanceCorrection
	for rows.Next() {
		var c models.BalanceCorrection
		if err := rows.Scan(&c.StudentID, &c.Cached, &c.LedgerSum); err != nil {
			return nil, err
		}
		drift = append(drift, c)
	}

	return drift, rows.Err()
}

// RewriteBalance resets the cache to the ledger sum, but only if the cached
// value is still the one the drift scan saw. A false return means a
// concurrent Apply moved the balance first and the correction is stale.
func (r *transactionRepository) RewriteBalance(ctx context.Context, studentID string, cached, ledgerSum decimal.Decimal) (bool, error) {
	query := `UPDATE users SET total_coins = $1 WHERE id = $2 AND total_coins = $3`

	res, err := r.db.ExecContext(ctx, query, ledgerSum, studentID, cached)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
