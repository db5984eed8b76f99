// Package importer parses student rosters from CSV or XLSX files.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported roster format, expected .csv or .xlsx")

var requiredColumns = []string{"email", "full_name"}

var dobLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02", "01-02-06"}

// Parse picks the parser by file extension.
func Parse(filename string, r io.Reader) ([]model.StudentImportRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseCSV reads a roster with a header row.
func ParseCSV(r io.Reader) ([]model.StudentImportRow, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return parseRecords(records)
}

// ParseXLSX reads the first sheet of a workbook with a header row.
func ParseXLSX(r io.Reader) ([]model.StudentImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return parseRecords(records)
}

func parseRecords(records [][]string) ([]model.StudentImportRow, error) {
	if len(records) < 2 {
		return nil, errors.New("roster has no data rows")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := map[string]int{}
	for i, h := range header {
		col[normalizeHeader(h)] = i
	}
	for _, k := range requiredColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	var out []model.StudentImportRow
	for idx := 1; idx < len(records); idx++ {
		rec := records[idx]
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		line := idx + 1
		email := get("email")
		if email == "" && get("full_name") == "" {
			continue
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("row %d: invalid email %q", line, email)
		}
		if get("full_name") == "" {
			return nil, fmt.Errorf("row %d: full_name is required", line)
		}

		row := model.StudentImportRow{
			Line:        line,
			Email:       model.NormalizeEmail(email),
			FullName:    get("full_name"),
			IDNumber:    get("id_number"),
			Phone:       get("phone"),
			Nationality: get("nationality"),
			City:        get("city"),
		}
		if raw := get("dob"); raw != "" {
			dob, err := parseDOB(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			row.DOB = &dob
		}
		out = append(out, row)
	}
	return out, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	switch h {
	case "name", "fullname":
		return "full_name"
	case "date_of_birth", "birth_date":
		return "dob"
	case "id", "id_no", "student_id":
		return "id_number"
	}
	return h
}

func parseDOB(raw string) (time.Time, error) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid dob %q, expected YYYY-MM-DD", raw)
}
