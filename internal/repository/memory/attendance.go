package memory

import (
	"context"
	"sort"
	"time"

	"github.com/robocoin/api/internal/models"
)

type attendanceRepo struct {
	s *Store
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (r *attendanceRepo) ReplaceDay(ctx context.Context, groupID string, date time.Time, records []models.AttendanceRecord) (map[string]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := make(map[string]bool)
	kept := r.s.attendance[:0]
	for _, rec := range r.s.attendance {
		if rec.GroupID == groupID && sameDay(rec.Date, date) {
			snapshot[rec.StudentID] = true
			continue
		}
		kept = append(kept, rec)
	}
	r.s.attendance = append(kept, records...)
	return snapshot, nil
}

func (r *attendanceRepo) ListByGroupDate(ctx context.Context, groupID string, date time.Time) ([]models.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var records []models.AttendanceRecord
	for _, rec := range r.s.attendance {
		if rec.GroupID == groupID && sameDay(rec.Date, date) {
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (r *attendanceRepo) Stats(ctx context.Context, groupID string, from, to time.Time) ([]models.AttendanceStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats []models.AttendanceStats
	for _, u := range r.s.users {
		if u.Role != models.RoleStudent || !u.IsActive || u.GroupID == nil || *u.GroupID != groupID {
			continue
		}
		entry := models.AttendanceStats{StudentID: u.ID, StudentName: u.Name}
		for _, rec := range r.s.attendance {
			if rec.StudentID != u.ID || rec.Date.Before(from) || rec.Date.After(to) {
				continue
			}
			switch rec.Status {
			case models.AttendancePresent:
				entry.Present++
			case models.AttendanceAbsent:
				entry.Absent++
			case models.AttendanceLate:
				entry.Late++
			}
		}
		stats = append(stats, entry)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].StudentName < stats[j].StudentName
	})
	return stats, nil
}

func (r *attendanceRepo) SummaryForStudent(ctx context.Context, studentID string) (models.AttendanceSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum models.AttendanceSummary
	for _, rec := range r.s.attendance {
		if rec.StudentID != studentID {
			continue
		}
		switch rec.Status {
		case models.AttendancePresent:
			sum.Present++
		case models.AttendanceAbsent:
			sum.Absent++
		case models.AttendanceLate:
			sum.Late++
		}
	}
	return sum, nil
}

func (r *attendanceRepo) PresenceCounts(ctx context.Context, groupID string) (map[string]models.PresenceCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[string]models.PresenceCount)
	for _, rec := range r.s.attendance {
		if groupID != "" && rec.GroupID != groupID {
			continue
		}
		pc := counts[rec.StudentID]
		pc.Total++
		if rec.Status == models.AttendancePresent || rec.Status == models.AttendanceLate {
			pc.Present++
		}
		counts[rec.StudentID] = pc
	}
	return counts, nil
}

func (r *attendanceRepo) ListRange(ctx context.Context, groupID string, from, to time.Time) ([]models.AttendanceRecordWithStudent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var records []models.AttendanceRecordWithStudent
	for _, rec := range r.s.attendance {
		if rec.GroupID != groupID || rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		entry := models.AttendanceRecordWithStudent{AttendanceRecord: rec}
		if u, ok := r.s.users[rec.StudentID]; ok {
			entry.StudentName = u.Name
		} else {
			continue
		}
		records = append(records, entry)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].StudentName < records[j].StudentName
	})
	return records, nil
}
