package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
)

type transactionRepo struct {
	s *Store
}

func (r *transactionRepo) Apply(ctx context.Context, entry *models.CoinTransaction, requireFunds bool) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	student, ok := r.s.users[entry.StudentID]
	if !ok || student.Role != models.RoleStudent {
		return decimal.Zero, repository.ErrStudentMissing
	}

	balance := student.TotalCoins.Add(entry.Amount).Round(2)
	if requireFunds && balance.IsNegative() {
		return decimal.Zero, repository.ErrInsufficientFunds
	}

	r.s.transactions = append(r.s.transactions, *entry)
	student.TotalCoins = balance
	return balance, nil
}

func (r *transactionRepo) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.TransactionWithTeacher, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []models.TransactionWithTeacher
	for _, t := range r.s.transactions {
		if t.StudentID != studentID {
			continue
		}
		entry := models.TransactionWithTeacher{CoinTransaction: t}
		if teacher, ok := r.s.users[t.TeacherID]; ok {
			entry.TeacherName = teacher.Name
		}
		list = append(list, entry)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *transactionRepo) SumPositiveSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sum := decimal.Zero
	for _, t := range r.s.transactions {
		if t.Amount.IsPositive() && !t.CreatedAt.Before(since) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r *transactionRepo) WeeklyTotals(ctx context.Context, since time.Time) ([]models.WeeklyRankingEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var entries []models.WeeklyRankingEntry
	created := make(map[string]time.Time)
	for _, u := range r.s.users {
		if u.Role != models.RoleStudent || !u.IsActive {
			continue
		}
		total := decimal.Zero
		for _, t := range r.s.transactions {
			if t.StudentID == u.ID && t.Amount.IsPositive() && !t.CreatedAt.Before(since) {
				total = total.Add(t.Amount)
			}
		}
		created[u.ID] = u.CreatedAt
		entries = append(entries, models.WeeklyRankingEntry{
			StudentID:   u.ID,
			Name:        u.Name,
			WeeklyCoins: total,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].WeeklyCoins.Equal(entries[j].WeeklyCoins) {
			return entries[i].WeeklyCoins.GreaterThan(entries[j].WeeklyCoins)
		}
		return created[entries[i].StudentID].Before(created[entries[j].StudentID])
	})
	return entries, nil
}

func (r *transactionRepo) ListForExport(ctx context.Context, groupID string) ([]models.TransactionExportRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []models.TransactionExportRow
	for _, t := range r.s.transactions {
		student, ok := r.s.users[t.StudentID]
		if !ok {
			continue
		}
		if groupID != "" && (student.GroupID == nil || *student.GroupID != groupID) {
			continue
		}
		row := models.TransactionExportRow{
			StudentName: student.Name,
			Amount:      t.Amount,
			Reason:      t.Reason,
			CreatedAt:   t.CreatedAt,
		}
		if student.GroupID != nil {
			if g, ok := r.s.groups[*student.GroupID]; ok {
				row.GroupName = g.Name
			}
		}
		if teacher, ok := r.s.users[t.TeacherID]; ok {
			row.TeacherName = teacher.Name
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

func (r *transactionRepo) FindDrift(ctx context.Context) ([]models.BalanceCorrection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var drift []models.BalanceCorrection
	for _, u := range r.s.users {
		if u.Role != models.RoleStudent {
			continue
		}
		sum := decimal.Zero
		for _, t := range r.s.transactions {
			if t.StudentID == u.ID {
				sum = sum.Add(t.Amount)
			}
		}
		if !u.TotalCoins.Equal(sum) {
			drift = append(drift, models.BalanceCorrection{
				StudentID: u.ID,
				Cached:    u.TotalCoins,
				LedgerSum: sum,
			})
		}
	}
	return drift, nil
}

func (r *transactionRepo) RewriteBalance(ctx context.Context, studentID string, cached, ledgerSum decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[studentID]
	if !ok || !u.TotalCoins.Equal(cached) {
		return false, nil
	}
	u.TotalCoins = ledgerSum
	return true, nil
}
