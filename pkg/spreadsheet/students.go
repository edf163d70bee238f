package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxRows caps the number of data rows accepted in one workbook.
const MaxRows = 2000

var (
	ErrNoData      = errors.New("workbook has no data rows (first row is the header)")
	ErrTooManyRows = fmt.Errorf("workbook exceeds %d data rows", MaxRows)
	ErrBadHeader   = errors.New("header must contain first name, email and registration number columns")
)

// StudentRow is one parsed student line. Row is the 1-based sheet row.
type StudentRow struct {
	Row                int
	FirstName          string
	LastName           string
	Email              string
	RegistrationNumber string
	Phone              string
	Batch              string
	Section            string
	GPA                *float64
}

const (
	colFirstName = "first_name"
	colLastName  = "last_name"
	colEmail     = "email"
	colRegNo     = "registration_number"
	colPhone     = "phone"
	colBatch     = "batch"
	colSection   = "section"
	colGPA       = "gpa"
)

var headerAliases = map[string]string{
	"first name":          colFirstName,
	"firstname":           colFirstName,
	"first_name":          colFirstName,
	"name":                colFirstName,
	"last name":           colLastName,
	"lastname":            colLastName,
	"last_name":           colLastName,
	"email":               colEmail,
	"email address":       colEmail,
	"registration number": colRegNo,
	"registration_number": colRegNo,
	"registrationnumber":  colRegNo,
	"reg no":              colRegNo,
	"roll number":         colRegNo,
	"phone":               colPhone,
	"phone number":        colPhone,
	"contact":             colPhone,
	"batch":               colBatch,
	"section":             colSection,
	"gpa":                 colGPA,
	"cgpa":                colGPA,
}

// ParseStudents reads the first sheet of an xlsx workbook.
func ParseStudents(r io.Reader) ([]StudentRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	index := headerIndex(rows[0])
	for _, required := range []string{colFirstName, colEmail, colRegNo} {
		if _, ok := index[required]; !ok {
			return nil, ErrBadHeader
		}
	}

	var out []StudentRow
	for i := 1; i < len(rows); i++ {
		raw := rows[i]
		get := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[idx])
		}

		item := StudentRow{
			Row:                i + 1,
			FirstName:          get(colFirstName),
			LastName:           get(colLastName),
			Email:              strings.ToLower(get(colEmail)),
			RegistrationNumber: get(colRegNo),
			Phone:              get(colPhone),
			Batch:              get(colBatch),
			Section:            get(colSection),
		}
		if item.FirstName == "" && item.Email == "" && item.RegistrationNumber == "" {
			continue
		}
		if v := get(colGPA); v != "" {
			gpa, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid gpa %q", item.Row, v)
			}
			item.GPA = &gpa
		}
		out = append(out, item)
	}

	if len(out) == 0 {
		return nil, ErrNoData
	}
	if len(out) > MaxRows {
		return nil, ErrTooManyRows
	}
	return out, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if col, ok := headerAliases[key]; ok {
			if _, seen := idx[col]; !seen {
				idx[col] = i
			}
		}
	}
	return idx
}
