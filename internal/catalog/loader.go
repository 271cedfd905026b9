package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/garyellow/prep-library-bot/internal/errors"
	"github.com/garyellow/prep-library-bot/internal/logger"
)

// Spreadsheet header names. AUTHER is spelled the way existing sheets spell it.
const (
	ColumnName        = "BOOK_NAME"
	ColumnAuthor      = "AUTHER"
	ColumnEdition     = "EDITION"
	ColumnDownloadURL = "DOWNLOAD_URL"
	ColumnCoverURL    = "COVER_IMAGE_FROM_URL"
)

var optionalColumns = []string{ColumnAuthor, ColumnEdition, ColumnDownloadURL, ColumnCoverURL}

// Load reads the catalog at path. Supported formats are .xlsx (first sheet) and .csv.
// The first row must be a header naming at least BOOK_NAME; other known columns
// default to empty when absent. Any failure is returned as a *errors.CatalogError.
func Load(path string) (*Catalog, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		err = fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, apperrors.NewCatalogError(path, err)
	}

	books, issues, err := parseRows(rows)
	if err != nil {
		return nil, apperrors.NewCatalogError(path, err)
	}

	c := New(path, books)
	c.issues = issues
	return c, nil
}

// LoadOrUnavailable loads path and downgrades any failure to an unavailable catalog.
// The process keeps serving; every query against the result finds nothing.
func LoadOrUnavailable(path string, log *logger.Logger) *Catalog {
	c, err := Load(path)
	if err != nil {
		log.WithError(err).Error("Catalog load failed, serving without books")
		return Unavailable(path, err)
	}

	for _, issue := range c.Issues() {
		log.WithFields(map[string]any{
			"row":    issue.Row,
			"reason": issue.Reason,
		}).Warn("Catalog row adjusted")
	}

	log.WithFields(map[string]any{
		"path":    path,
		"books":   c.Len(),
		"skipped": len(c.Issues()),
		"state":   c.State().String(),
	}).Info("Catalog loaded")
	return c
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// record is a raw row before validation.
type record struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

func (r record) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.DownloadURL, validation.Required, is.RequestURL),
	)
}

func coverURLValid(raw string) bool {
	return validation.Validate(raw, is.RequestURL) == nil
}

// parseRows maps header names to positions and converts every data row.
func parseRows(rows [][]string) ([]Book, []RowIssue, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: %s (no header row)", apperrors.ErrMissingColumn, ColumnName)
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	if _, ok := index[ColumnName]; !ok {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrMissingColumn, ColumnName)
	}

	var issues []RowIssue
	for _, col := range optionalColumns {
		if _, ok := index[col]; !ok {
			issues = append(issues, RowIssue{Row: 1, Reason: "column " + col + " missing, defaulting to empty"})
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	books := make([]Book, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rowNum := n + 2
		if isBlank(row) {
			continue
		}

		book := Book{
			Name:        cell(row, ColumnName),
			Author:      cell(row, ColumnAuthor),
			Edition:     cell(row, ColumnEdition),
			DownloadURL: cell(row, ColumnDownloadURL),
			CoverURL:    cell(row, ColumnCoverURL),
		}

		rec := record{Name: book.Name, DownloadURL: book.DownloadURL}
		if err := rec.Validate(); err != nil {
			issues = append(issues, RowIssue{Row: rowNum, Reason: "skipped: " + err.Error()})
			continue
		}

		if book.CoverURL != "" && !coverURLValid(book.CoverURL) {
			issues = append(issues, RowIssue{Row: rowNum, Reason: "cover URL invalid, sending as text"})
			book.CoverURL = ""
		}

		books = append(books, book)
	}

	return books, issues, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
