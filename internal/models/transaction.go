package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinTransaction is one ledger entry. Entries are append-only: once written
// they are never updated, and deleted only by a cascading hard delete of the
// student they belong to.
type CoinTransaction struct {
	ID        string          `json:"id" db:"id"`
	StudentID string          `json:"student_id" db:"student_id"`
	TeacherID string          `json:"teacher_id" db:"teacher_id"` // equals student_id for self-service spends
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Reason    string          `json:"reason" db:"reason"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type TransactionWithTeacher struct {
	CoinTransaction
	TeacherName string `json:"teacher_name" db:"teacher_name"`
}

type TransactionExportRow struct {
	StudentName string          `json:"student_name" db:"student_name"`
	GroupName   string          `json:"group_name" db:"group_name"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Reason      string          `json:"reason" db:"reason"`
	TeacherName string          `json:"teacher_name" db:"teacher_name"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// BalanceCorrection describes one student whose cached balance diverged from
// the ledger sum, found by the reconcile pass.
type BalanceCorrection struct {
	StudentID string          `json:"student_id" db:"student_id"`
	Cached    decimal.Decimal `json:"cached" db:"cached"`
	LedgerSum decimal.Decimal `json:"ledger_sum" db:"ledger_sum"`
}
