package service

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/xuri/excelize/v2"
)

// ExportService renders record lists as spreadsheets.
type ExportService struct{}

// NewExportService creates a new ExportService.
func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportColumns returns the header row for records: id, status, dateCreated,
// then every payload key in sorted order.
func ExportColumns(records []model.Record) []string {
	seen := make(map[string]struct{})
	var extra []string
	for _, r := range records {
		for k := range r.Fields {
			if _, ok := seen[k]; ok || model.IsReservedField(k) {
				continue
			}
			seen[k] = struct{}{}
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append([]string{model.FieldID, model.FieldStatus, model.FieldDateCreated}, extra...)
}

// WriteRecords writes records as a single-sheet xlsx workbook to w.
func (s *ExportService) WriteRecords(w io.Writer, sheet string, records []model.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := ExportColumns(records)
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set header %s: %w", header, err)
		}
	}

	for row, r := range records {
		for col, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, cellValue(r, header)); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellValue(r model.Record, header string) interface{} {
	switch header {
	case model.FieldID:
		return r.ID
	case model.FieldStatus:
		return string(r.Status)
	case model.FieldDateCreated:
		return r.DateCreated.UTC().Format(time.RFC3339)
	}

	v, ok := r.Fields[header]
	if !ok || v == nil {
		return ""
	}
	switch v.(type) {
	case string, float64, bool, int, int64:
		return v
	default:
		return fmt.Sprint(v)
	}
}
