package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/robocoin/api/internal/models"
)

type AttendanceRepository interface {
	// ReplaceDay swaps the stored records for one group and date with the
	// given set, in a single database transaction. It returns the IDs of
	// students who already had a record for that day before the swap, so
	// the caller can tell first-time marks from edits.
	ReplaceDay(ctx context.Context, groupID string, date time.Time, records []models.AttendanceRecord) (map[string]bool, error)
	ListByGroupDate(ctx context.Context, groupID string, date time.Time) ([]models.AttendanceRecord, error)
	Stats(ctx context.Context, groupID string, from, to time.Time) ([]models.AttendanceStats, error)
	SummaryForStudent(ctx context.Context, studentID string) (models.AttendanceSummary, error)
	// PresenceCounts tallies present-or-late against total per student, for
	// one group or for everyone when groupID is empty.
	PresenceCounts(ctx context.Context, groupID string) (map[string]models.PresenceCount, error)
	ListRange(ctx context.Context, groupID string, from, to time.Time) ([]models.AttendanceRecordWithStudent, error)
}

type attendanceRepository struct {
	*PostgresRepository
}

func NewAttendanceRepository(db *sql.DB, logger zerolog.Logger) AttendanceRepository {
	return &attendanceRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *attendanceRepository) ReplaceDay(ctx context.Context, groupID string, date time.Time, records []models.AttendanceRecord) (map[string]bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin attendance transaction: %w", err)
	}
	defer tx.Rollback()

	// Snapshot before the delete: these students were already marked for
	// this day, whatever their status was.
	snapshot := make(map[string]bool)
	prior := `SELECT student_id FROM attendance_records WHERE group_id = $1 AND date = $2`
	rows, err := tx.QueryContext(ctx, prior, groupID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot attendance: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		snapshot[id] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	del := `DELETE FROM attendance_records WHERE group_id = $1 AND date = $2`
	if _, err := tx.ExecContext(ctx, del, groupID, date); err != nil {
		return nil, fmt.Errorf("failed to clear attendance: %w", err)
	}

	insert := `
		INSERT INTO attendance_records (id, student_id, group_id, date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, rec := range records {
		_, err := tx.ExecContext(ctx, insert,
			rec.ID,
			rec.StudentID,
			rec.GroupID,
			rec.Date,
			rec.Status,
			rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert attendance record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit attendance transaction: %w", err)
	}

	return snapshot, nil
}

func (r *attendanceRepository) ListByGroupDate(ctx context.Context, groupID string, date time.Time) ([]models.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, group_id, date, status, created_at
		FROM attendance_records
		WHERE group_id = $1 AND date = $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		err := rows.Scan(&rec.ID, &rec.StudentID, &rec.GroupID, &rec.Date, &rec.Status, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *attendanceRepository) Stats(ctx context.Context, groupID string, from, to time.Time) ([]models.AttendanceStats, error) {
	query := `
		SELECT u.id, u.name,
			COUNT(a.id) FILTER (WHERE a.status = 'present') AS present,
			COUNT(a.id) FILTER (WHERE a.status = 'absent') AS absent,
			COUNT(a.id) FILTER (WHERE a.status = 'late') AS late
		FROM users u
		LEFT JOIN attendance_records a
			ON a.student_id = u.id AND a.date >= $2 AND a.date <= $3
		WHERE u.group_id = $1 AND u.role = 'student' AND u.is_active = true
		GROUP BY u.id, u.name
		ORDER BY u.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.AttendanceStats
	for rows.Next() {
		var s models.AttendanceStats
		if err := rows.Scan(&s.StudentID, &s.StudentName, &s.Present, &s.Absent, &s.Late); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (r *attendanceRepository) SummaryForStudent(ctx context.Context, studentID string) (models.AttendanceSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'present') AS present,
			COUNT(*) FILTER (WHERE status = 'absent') AS absent,
			COUNT(*) FILTER (WHERE status = 'late') AS late
		FROM attendance_records
		WHERE student_id = $1
	`

	var sum models.AttendanceSummary
	err := r.db.QueryRowContext(ctx, query, studentID).Scan(&sum.Present, &sum.Absent, &sum.Late)
	return sum, err
}

func (r *attendanceRepository) PresenceCounts(ctx context.Context, groupID string) (map[string]models.PresenceCount, error) {
	query := `
		SELECT student_id,
			COUNT(*) FILTER (WHERE status IN ('present', 'late')) AS present,
			COUNT(*) AS total
		FROM attendance_records
	`
	args := []interface{}{}
	if groupID != "" {
		query += ` WHERE group_id = $1`
		args = append(args, groupID)
	}
	query += ` GROUP BY student_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]models.PresenceCount)
	for rows.Next() {
		var id string
		var pc models.PresenceCount
		if err := rows.Scan(&id, &pc.Present, &pc.Total); err != nil {
			return nil, err
		}
		counts[id] = pc
	}

	return counts, rows.Err()
}

func (r *attendanceRepository) ListRange(ctx context.Context, groupID string, from, to time.Time) ([]models.AttendanceRecordWithStudent, error) {
	query := `
		SELECT a.id, a.student_id, a.group_id, a.date, a.status, a.created_at, u.name
		FROM attendance_records a
		JOIN users u ON u.id = a.student_id
		WHERE a.group_id = $1 AND a.date >= $2 AND a.date <= $3
		ORDER BY a.date ASC, u.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AttendanceRecordWithStudent
	for rows.Next() {
		var rec models.AttendanceRecordWithStudent
		err := rows.Scan(&rec.ID, &rec.StudentID, &rec.GroupID, &rec.Date, &rec.Status, &rec.CreatedAt, &rec.StudentName)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
