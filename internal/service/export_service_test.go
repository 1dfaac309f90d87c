package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository/memory"
	"github.com/robocoin/api/internal/service"
)

func newExport(store *memory.Store) service.ExportService {
	return service.NewExportService(store.Attendance(), store.Transactions(), store.Groups(), zerolog.Nop())
}

func markDay(t *testing.T, store *memory.Store, groupID, studentID string, day time.Time, status models.AttendanceStatus) {
	t.Helper()
	_, err := store.Attendance().ReplaceDay(context.Background(), groupID, day, []models.AttendanceRecord{{
		ID:        uuid.NewString(),
		StudentID: studentID,
		GroupID:   groupID,
		Date:      day,
		Status:    status,
		CreatedAt: seedTime(),
	}})
	require.NoError(t, err)
}

func TestAttendanceCSV(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	ali := seedStudent(store, "Ali", &group.ID, dec("0"))
	svc := newExport(store)
	ctx := context.Background()

	markDay(t, store, group.ID, ali.ID, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), models.AttendancePresent)
	markDay(t, store, group.ID, ali.ID, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), models.AttendanceAbsent)
	// Outside the requested window.
	markDay(t, store, group.ID, ali.ID, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), models.AttendanceLate)

	data, err := svc.AttendanceCSV(ctx, group.ID, "2026-03-01", "2026-03-31")
	require.NoError(t, err)

	want := "Sana,O'quvchi,Holat\n" +
		"2026-03-02,Ali,Keldi\n" +
		"2026-03-03,Ali,Kelmadi\n"
	assert.Equal(t, want, string(data))

	_, err = svc.AttendanceCSV(ctx, uuid.NewString(), "", "")
	assert.ErrorIs(t, err, service.ErrGroupNotFound)

	_, err = svc.AttendanceCSV(ctx, group.ID, "march first", "")
	assert.ErrorIs(t, err, service.ErrInvalidDate)

	_, err = svc.AttendanceCSV(ctx, group.ID, "", "31.03.2026")
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}

func TestTransactionsXLSX(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	teacher := seedTeacher(store, "Ustoz")
	ali := seedStudent(store, "Ali", &group.ID, dec("0"))
	outsider := seedStudent(store, "Bobur", nil, dec("0"))
	ledger := newLedger(store)
	svc := newExport(store)
	ctx := context.Background()

	_, _, err := ledger.Apply(ctx, ali.ID, teacher.ID, dec("12.5"), "project work")
	require.NoError(t, err)
	_, _, err = ledger.Apply(ctx, outsider.ID, teacher.ID, dec("3"), "good answer")
	require.NoError(t, err)

	data, err := svc.TransactionsXLSX(ctx, group.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus the one in-group entry")

	assert.Equal(t, []string{"Student", "Group", "Amount", "Reason", "Teacher", "Date"}, rows[0])
	assert.Equal(t, "Ali", rows[1][0])
	assert.Equal(t, "Alpha", rows[1][1])
	assert.Equal(t, "12.50", rows[1][2])
	assert.Equal(t, "project work", rows[1][3])
	assert.Equal(t, "Ustoz", rows[1][4])

	// Without a filter both entries land in the sheet.
	data, err = svc.TransactionsXLSX(ctx, "")
	require.NoError(t, err)
	f2, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f2.Close()
	rows, err = f2.GetRows("Transactions")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = svc.TransactionsXLSX(ctx, uuid.NewString())
	assert.ErrorIs(t, err, service.ErrGroupNotFound)
}
