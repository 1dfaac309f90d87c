package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository"
)

// Attendance statuses localized the way the frontend displays them.
var statusLabels = map[models.AttendanceStatus]string{
	models.AttendancePresent: "Keldi",
	models.AttendanceAbsent:  "Kelmadi",
	models.AttendanceLate:    "Kechikdi",
}

type ExportService interface {
	AttendanceCSV(ctx context.Context, groupID, from, to string) ([]byte, error)
	TransactionsXLSX(ctx context.Context, groupID string) ([]byte, error)
}

type exportService struct {
	attendanceRepo repository.AttendanceRepository
	txRepo         repository.TransactionRepository
	groupRepo      repository.GroupRepository
	logger         zerolog.Logger
}

func NewExportService(
	attendanceRepo repository.AttendanceRepository,
	txRepo repository.TransactionRepository,
	groupRepo repository.GroupRepository,
	logger zerolog.Logger,
) ExportService {
	return &exportService{
		attendanceRepo: attendanceRepo,
		txRepo:         txRepo,
		groupRepo:      groupRepo,
		logger:         logger,
	}
}

func (s *exportService) AttendanceCSV(ctx context.Context, groupID, fromStr, toStr string) ([]byte, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	if toStr != "" {
		if to, err = time.Parse(dateLayout, toStr); err != nil {
			return nil, ErrInvalidDate
		}
	}
	from := to.AddDate(0, 0, -30)
	if fromStr != "" {
		if from, err = time.Parse(dateLayout, fromStr); err != nil {
			return nil, ErrInvalidDate
		}
	}

	records, err := s.attendanceRepo.ListRange(ctx, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Sana", "O'quvchi", "Holat"}); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	for _, rec := range records {
		status := statusLabels[rec.Status]
		if status == "" {
			status = rec.Status.String()
		}
		row := []string{rec.Date.Format(dateLayout), rec.StudentName, status}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *exportService) TransactionsXLSX(ctx context.Context, groupID string) ([]byte, error) {
	if groupID != "" {
		group, err := s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch group: %w", err)
		}
		if group == nil {
			return nil, ErrGroupNotFound
		}
	}

	rows, err := s.txRepo.ListForExport(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	header := []string{"Student", "Group", "Amount", "Reason", "Teacher", "Date"}
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.StudentName,
			r.GroupName,
			r.Amount.StringFixed(2),
			r.Reason,
			r.TeacherName,
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, h := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	for rowIdx, row := range data {
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		end, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(sheet, "A1", end, bold)
		_ = f.AutoFilter(sheet, "A1:"+end, nil)
	}

	// Width heuristic: header length and the first 50 rows, clamped.
	for col := range header {
		max := len(header[col])
		for r := 0; r < len(data) && r < 50; r++ {
			if l := len(data[r][col]); l > max {
				max = l
			}
		}
		width := float64(max) * 1.1
		if width < 12 {
			width = 12
		}
		if width > 40 {
			width = 40
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		_ = f.SetColWidth(sheet, name, name, width)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}

	s.logger.Info().Int("rows", len(data)).Str("group_id", groupID).Msg("Transactions exported")
	return buf.Bytes(), nil
}
