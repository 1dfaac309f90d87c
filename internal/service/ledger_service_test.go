package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository/memory"
	"github.com/robocoin/api/internal/service"
)

func TestLedgerApply_BalanceFollowsLedger(t *testing.T) {
	store := memory.NewStore()
	teacher := seedTeacher(store, "Ustoz")
	student := seedStudent(store, "Ali", nil, dec("0"))
	ledger := newLedger(store)
	ctx := context.Background()

	_, balance, err := ledger.Apply(ctx, student.ID, teacher.ID, dec("10"), "participation")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("10")), "balance = %s", balance)

	_, balance, err = ledger.Apply(ctx, student.ID, teacher.ID, dec("5.25"), "homework")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("15.25")), "balance = %s", balance)

	_, balance, err = ledger.Apply(ctx, student.ID, teacher.ID, dec("-3"), "late to class")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("12.25")), "balance = %s", balance)

	history, err := ledger.ListByStudent(ctx, student.ID, 50)
	require.NoError(t, err)
	require.Len(t, history, 3)

	sum := dec("0")
	for _, entry := range history {
		sum = sum.Add(entry.Amount)
	}
	assert.True(t, sum.Equal(balance), "ledger sum %s != balance %s", sum, balance)
}

func TestLedgerApply_RejectsZeroAndOutOfRange(t *testing.T) {
	store := memory.NewStore()
	teacher := seedTeacher(store, "Ustoz")
	student := seedStudent(store, "Ali", nil, dec("0"))
	ledger := newLedger(store)
	ctx := context.Background()

	_, _, err := ledger.Apply(ctx, student.ID, teacher.ID, dec("0"), "nothing")
	assert.ErrorIs(t, err, service.ErrZeroAmount)

	// Rounds to zero before the check.
	_, _, err = ledger.Apply(ctx, student.ID, teacher.ID, dec("0.004"), "dust")
	assert.ErrorIs(t, err, service.ErrZeroAmount)

	_, _, err = ledger.Apply(ctx, student.ID, teacher.ID, dec("1000.01"), "too much")
	assert.ErrorIs(t, err, service.ErrAmountTooLarge)

	_, _, err = ledger.Apply(ctx, student.ID, teacher.ID, dec("-1000.01"), "too much")
	assert.ErrorIs(t, err, service.ErrAmountTooLarge)

	_, balance, err := ledger.Apply(ctx, student.ID, teacher.ID, dec("1000"), "grand prize")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("1000")))
}

func TestLedgerApply_RoundsToCents(t *testing.T) {
	store := memory.NewStore()
	teacher := seedTeacher(store, "Ustoz")
	student := seedStudent(store, "Ali", nil, dec("0"))
	ledger := newLedger(store)

	entry, balance, err := ledger.Apply(context.Background(), student.ID, teacher.ID, dec("10.005"), "rounding")
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(dec("10.01")), "amount = %s", entry.Amount)
	assert.True(t, balance.Equal(dec("10.01")), "balance = %s", balance)
}

func TestLedgerApply_ValidatesReason(t *testing.T) {
	store := memory.NewStore()
	teacher := seedTeacher(store, "Ustoz")
	student := seedStudent(store, "Ali", nil, dec("0"))
	ledger := newLedger(store)
	ctx := context.Background()

	_, _, err := ledger.Apply(ctx, student.ID, teacher.ID, dec("1"), "x")
	assert.ErrorIs(t, err, service.ErrInvalidReason)

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	_, _, err = ledger.Apply(ctx, student.ID, teacher.ID, dec("1"), string(long))
	assert.ErrorIs(t, err, service.ErrInvalidReason)
}

func TestLedgerApply_UnknownStudent(t *testing.T) {
	store := memory.NewStore()
	teacher := seedTeacher(store, "Ustoz")
	ledger := newLedger(store)
	ctx := context.Background()

	_, _, err := ledger.Apply(ctx, uuid.NewString(), teacher.ID, dec("5"), "ghost")
	assert.ErrorIs(t, err, service.ErrStudentNotFound)

	// Teachers have no balance; paying one is the same as paying nobody.
	_, _, err = ledger.Apply(ctx, teacher.ID, teacher.ID, dec("5"), "self award")
	assert.ErrorIs(t, err, service.ErrStudentNotFound)
}

func TestLedgerSpend_GuardsBalance(t *testing.T) {
	store := memory.NewStore()
	student := seedStudent(store, "Ali", nil, dec("20"))
	ledger := newLedger(store)
	ctx := context.Background()

	entry, balance, err := ledger.Spend(ctx, student.ID, dec("20"), "redeem:sticker")
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(dec("-20")))
	assert.Equal(t, student.ID, entry.TeacherID, "spends are recorded against the student")
	assert.True(t, balance.IsZero())

	_, _, err = ledger.Spend(ctx, student.ID, dec("0.01"), "redeem:sticker")
	assert.ErrorIs(t, err, service.ErrInsufficientBalance)
}

func TestLedgerApply_NegativeBelowZeroAllowed(t *testing.T) {
	store := memory.NewStore()
	teacher := seedTeacher(store, "Ustoz")
	student := seedStudent(store, "Ali", nil, dec("3"))
	ledger := newLedger(store)

	// Manual deductions have no funds guard; debt is a valid state.
	_, balance, err := ledger.Apply(context.Background(), student.ID, teacher.ID, dec("-10"), "broken window")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("-7")), "balance = %s", balance)
}

func TestLedgerReconcile_FixesDrift(t *testing.T) {
	store := memory.NewStore()
	teacher := seedTeacher(store, "Ustoz")
	student := seedStudent(store, "Ali", nil, dec("0"))
	ledger := newLedger(store)
	ctx := context.Background()

	_, _, err := ledger.Apply(ctx, student.ID, teacher.ID, dec("10"), "participation")
	require.NoError(t, err)

	// An out-of-band insert moves the ledger without the cache.
	store.AddTransaction(models.CoinTransaction{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		TeacherID: teacher.ID,
		Amount:    dec("15"),
		Reason:    "manual import",
		CreatedAt: time.Now().UTC(),
	})

	corrected, err := ledger.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, corrected, 1)
	assert.Equal(t, student.ID, corrected[0].StudentID)
	assert.True(t, corrected[0].Cached.Equal(dec("10")))
	assert.True(t, corrected[0].LedgerSum.Equal(dec("25")))

	fixed, err := store.Users().GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, fixed.TotalCoins.Equal(dec("25")), "balance = %s", fixed.TotalCoins)

	// Nothing left to correct on the second pass.
	corrected, err = ledger.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, corrected)
}
