package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository/memory"
	"github.com/robocoin/api/internal/service"
)

func newAttendance(store *memory.Store, ledger service.LedgerService) service.AttendanceService {
	return service.NewAttendanceService(store.Attendance(), store.Groups(), store.Users(), ledger, 1, zerolog.Nop())
}

func balanceOf(t *testing.T, store *memory.Store, studentID string) string {
	t.Helper()
	user, err := store.Users().GetByID(context.Background(), studentID)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.TotalCoins.String()
}

func TestAttendanceSave_AwardsFirstPresent(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	teacher := seedTeacher(store, "Ustoz")
	ali := seedStudent(store, "Ali", &group.ID, dec("0"))
	bobur := seedStudent(store, "Bobur", &group.ID, dec("0"))
	svc := newAttendance(store, newLedger(store))
	ctx := context.Background()

	resp, err := svc.Save(ctx, teacher.ID, &models.SaveAttendanceRequest{
		GroupID: group.ID,
		Date:    "2026-03-02",
		Records: []models.AttendanceEntry{
			{StudentID: ali.ID, Status: "present"},
			{StudentID: bobur.ID, Status: "absent"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 1, resp.Awarded)
	assert.Equal(t, "1", balanceOf(t, store, ali.ID))
	assert.Equal(t, "0", balanceOf(t, store, bobur.ID))
}

func TestAttendanceSave_ResaveNeverPaysTwice(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	teacher := seedTeacher(store, "Ustoz")
	ali := seedStudent(store, "Ali", &group.ID, dec("0"))
	svc := newAttendance(store, newLedger(store))
	ctx := context.Background()

	mark := func(status string) *models.SaveAttendanceResponse {
		resp, err := svc.Save(ctx, teacher.ID, &models.SaveAttendanceRequest{
			GroupID: group.ID,
			Date:    "2026-03-02",
			Records: []models.AttendanceEntry{{StudentID: ali.ID, Status: status}},
		})
		require.NoError(t, err)
		return resp
	}

	resp := mark("present")
	assert.Equal(t, 1, resp.Awarded)
	assert.Equal(t, "1", balanceOf(t, store, ali.ID))

	// Identical re-save: no second coin.
	resp = mark("present")
	assert.Equal(t, 0, resp.Awarded)
	assert.Equal(t, "1", balanceOf(t, store, ali.ID))

	// Flipping to absent does not claw the coin back.
	resp = mark("absent")
	assert.Equal(t, 0, resp.Awarded)
	assert.Equal(t, "1", balanceOf(t, store, ali.ID))

	// And flipping back to present cannot earn it again.
	resp = mark("present")
	assert.Equal(t, 0, resp.Awarded)
	assert.Equal(t, "1", balanceOf(t, store, ali.ID))
}

func TestAttendanceSave_AbsentFirstBlocksLaterBonus(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	teacher := seedTeacher(store, "Ustoz")
	ali := seedStudent(store, "Ali", &group.ID, dec("0"))
	svc := newAttendance(store, newLedger(store))
	ctx := context.Background()

	_, err := svc.Save(ctx, teacher.ID, &models.SaveAttendanceRequest{
		GroupID: group.ID,
		Date:    "2026-03-02",
		Records: []models.AttendanceEntry{{StudentID: ali.ID, Status: "absent"}},
	})
	require.NoError(t, err)

	// Editing an existing absent mark to present is a correction, not a
	// first appearance, so the bonus stays off.
	resp, err := svc.Save(ctx, teacher.ID, &models.SaveAttendanceRequest{
		GroupID: group.ID,
		Date:    "2026-03-02",
		Records: []models.AttendanceEntry{{StudentID: ali.ID, Status: "present"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Awarded)
	assert.Equal(t, "0", balanceOf(t, store, ali.ID))

	// A fresh day is a fresh appearance.
	resp, err = svc.Save(ctx, teacher.ID, &models.SaveAttendanceRequest{
		GroupID: group.ID,
		Date:    "2026-03-03",
		Records: []models.AttendanceEntry{{StudentID: ali.ID, Status: "present"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Awarded)
	assert.Equal(t, "1", balanceOf(t, store, ali.ID))
}

func TestAttendanceSave_DuplicateEntriesLastWins(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	teacher := seedTeacher(store, "Ustoz")
	ali := seedStudent(store, "Ali", &group.ID, dec("0"))
	svc := newAttendance(store, newLedger(store))
	ctx := context.Background()

	resp, err := svc.Save(ctx, teacher.ID, &models.SaveAttendanceRequest{
		GroupID: group.ID,
		Date:    "2026-03-02",
		Records: []models.AttendanceEntry{
			{StudentID: ali.ID, Status: "present"},
			{StudentID: ali.ID, Status: "absent"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 0, resp.Awarded)
	assert.Equal(t, "0", balanceOf(t, store, ali.ID))

	records, err := svc.ListByGroupDate(ctx, group.ID, "2026-03-02")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendanceAbsent, records[0].Status)
}

func TestAttendanceSave_Validation(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	other := seedGroup(store, "Beta")
	teacher := seedTeacher(store, "Ustoz")
	ali := seedStudent(store, "Ali", &group.ID, dec("0"))
	outsider := seedStudent(store, "Chetdagi", &other.ID, dec("0"))

	gone := seedStudent(store, "Ketgan", &group.ID, dec("0"))
	gone.IsActive = false
	store.AddUser(gone)

	svc := newAttendance(store, newLedger(store))
	ctx := context.Background()

	cases := []struct {
		name string
		req  *models.SaveAttendanceRequest
		want error
	}{
		{
			name: "unknown status",
			req: &models.SaveAttendanceRequest{
				GroupID: group.ID,
				Date:    "2026-03-02",
				Records: []models.AttendanceEntry{{StudentID: ali.ID, Status: "sick"}},
			},
			want: service.ErrInvalidStatus,
		},
		{
			name: "student from another group",
			req: &models.SaveAttendanceRequest{
				GroupID: group.ID,
				Date:    "2026-03-02",
				Records: []models.AttendanceEntry{{StudentID: outsider.ID, Status: "present"}},
			},
			want: service.ErrStudentNotInGroup,
		},
		{
			name: "deactivated student",
			req: &models.SaveAttendanceRequest{
				GroupID: group.ID,
				Date:    "2026-03-02",
				Records: []models.AttendanceEntry{{StudentID: gone.ID, Status: "present"}},
			},
			want: service.ErrStudentNotInGroup,
		},
		{
			name: "garbage date",
			req: &models.SaveAttendanceRequest{
				GroupID: group.ID,
				Date:    "02.03.2026",
				Records: []models.AttendanceEntry{{StudentID: ali.ID, Status: "present"}},
			},
			want: service.ErrInvalidDate,
		},
		{
			name: "unknown group",
			req: &models.SaveAttendanceRequest{
				GroupID: uuid.NewString(),
				Date:    "2026-03-02",
				Records: []models.AttendanceEntry{{StudentID: ali.ID, Status: "present"}},
			},
			want: service.ErrGroupNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(ctx, teacher.ID, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAttendanceStats(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	teacher := seedTeacher(store, "Ustoz")
	bobur := seedStudent(store, "Bobur", &group.ID, dec("0"))
	ali := seedStudent(store, "Ali", &group.ID, dec("0"))
	seedStudent(store, "Davron", &group.ID, dec("0")) // never marked
	svc := newAttendance(store, newLedger(store))
	ctx := context.Background()

	save := func(date string, aliStatus, boburStatus string) {
		_, err := svc.Save(ctx, teacher.ID, &models.SaveAttendanceRequest{
			GroupID: group.ID,
			Date:    date,
			Records: []models.AttendanceEntry{
				{StudentID: ali.ID, Status: aliStatus},
				{StudentID: bobur.ID, Status: boburStatus},
			},
		})
		require.NoError(t, err)
	}
	save("2026-03-02", "present", "absent")
	save("2026-03-03", "late", "present")
	save("2026-03-04", "present", "absent")

	stats, err := svc.Stats(ctx, group.ID, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// Ordered by student name.
	assert.Equal(t, "Ali", stats[0].StudentName)
	assert.Equal(t, 2, stats[0].Present)
	assert.Equal(t, 1, stats[0].Late)
	assert.Equal(t, 0, stats[0].Absent)
	assert.Equal(t, 100, stats[0].Percent)

	assert.Equal(t, "Bobur", stats[1].StudentName)
	assert.Equal(t, 1, stats[1].Present)
	assert.Equal(t, 2, stats[1].Absent)
	assert.Equal(t, 33, stats[1].Percent)

	assert.Equal(t, "Davron", stats[2].StudentName)
	assert.Equal(t, 0, stats[2].Present+stats[2].Absent+stats[2].Late)
	assert.Equal(t, 0, stats[2].Percent)

	// A window that misses every record still lists everyone.
	stats, err = svc.Stats(ctx, group.ID, "2026-04-01", "2026-04-30")
	require.NoError(t, err)
	require.Len(t, stats, 3)
	for _, row := range stats {
		assert.Zero(t, row.Present+row.Absent+row.Late)
	}

	_, err = svc.Stats(ctx, uuid.NewString(), "", "")
	assert.ErrorIs(t, err, service.ErrGroupNotFound)

	_, err = svc.Stats(ctx, group.ID, "first of march", "")
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}
