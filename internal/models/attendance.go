package models

import (
	"math"
	"time"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

func (s AttendanceStatus) String() string {
	return string(s)
}

func IsValidAttendanceStatus(status string) bool {
	switch status {
	case "present", "absent", "late":
		return true
	default:
		return false
	}
}

type AttendanceRecord struct {
	ID        string           `json:"id" db:"id"`
	StudentID string           `json:"student_id" db:"student_id"`
	GroupID   string           `json:"group_id" db:"group_id"`
	Date      time.Time        `json:"date" db:"date"`
	Status    AttendanceStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type AttendanceRecordWithStudent struct {
	AttendanceRecord
	StudentName string `json:"student_name" db:"student_name"`
}

// PresenceCount is the per-student tally used to derive attendance percent.
type PresenceCount struct {
	Present int
	Total   int
}

type AttendanceStats struct {
	StudentID   string `json:"student_id" db:"student_id"`
	StudentName string `json:"student_name" db:"student_name"`
	Present     int    `json:"present" db:"present"`
	Absent      int    `json:"absent" db:"absent"`
	Late        int    `json:"late" db:"late"`
	Percent     int    `json:"percent"`
}

// AttendancePercent is round(present/total*100), zero when nothing is recorded.
func AttendancePercent(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}
