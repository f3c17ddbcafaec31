// Package extract converts FAQ spreadsheets into the grouped FAQ document
// consumed by the indexer.
package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bull/faq-semantic-index/internal/faq"
)

var (
	ErrHeaderNotFound    = errors.New("header row not found")
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// Header names accepted for each column, compared case-insensitively.
var (
	categoryHeaders = []string{"kategori", "category"}
	questionHeaders = []string{"question", "pertanyaan"}
	answerHeaders   = []string{"answer", "jawaban"}
)

// headerSearchRows bounds how far down the sheet the header row may be.
const headerSearchRows = 20

// Stats describes a conversion.
type Stats struct {
	Rows       int // data rows after the header
	Entries    int // rows kept
	Skipped    int // rows with an empty cell
	Categories int
}

// File reads an .xlsx or .csv file. Xlsx input uses the first sheet.
func File(path string) ([]faq.Group, Stats, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err := readXLSX(path)
		if err != nil {
			return nil, Stats{}, err
		}
		return Rows(rows)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return CSV(f)
	default:
		return nil, Stats{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// CSV reads comma-separated rows from r.
func CSV(r io.Reader) ([]faq.Group, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return Rows(rows)
}

// Rows locates the header row, then groups the rows below it by category in
// first-seen order. Cells are trimmed and rows with any empty cell are skipped.
func Rows(rows [][]string) ([]faq.Group, Stats, error) {
	headerIdx, cols, err := findHeader(rows)
	if err != nil {
		return nil, Stats{}, err
	}

	var stats Stats
	var groups []faq.Group
	index := make(map[string]int)

	for _, row := range rows[headerIdx+1:] {
		category := cell(row, cols[0])
		question := cell(row, cols[1])
		answer := cell(row, cols[2])
		if category == "" && question == "" && answer == "" {
			continue
		}
		stats.Rows++
		if category == "" || question == "" || answer == "" {
			stats.Skipped++
			continue
		}

		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, faq.Group{Category: category})
		}
		groups[i].FAQ = append(groups[i].FAQ, faq.Item{Question: question, Answer: answer})
		stats.Entries++
	}

	stats.Categories = len(groups)
	return groups, stats, nil
}

// findHeader returns the header row index and the category, question and
// answer column indexes.
func findHeader(rows [][]string) (int, [3]int, error) {
	for r := 0; r < len(rows) && r < headerSearchRows; r++ {
		cols := [3]int{-1, -1, -1}
		for c, value := range rows[r] {
			name := strings.ToLower(strings.TrimSpace(value))
			switch {
			case cols[0] < 0 && matches(name, categoryHeaders):
				cols[0] = c
			case cols[1] < 0 && matches(name, questionHeaders):
				cols[1] = c
			case cols[2] < 0 && matches(name, answerHeaders):
				cols[2] = c
			}
		}
		if cols[0] >= 0 && cols[1] >= 0 && cols[2] >= 0 {
			return r, cols, nil
		}
	}
	return 0, [3]int{}, fmt.Errorf("%w: expected columns Kategori, Question and Answer in the first %d rows",
		ErrHeaderNotFound, headerSearchRows)
}

func matches(name string, candidates []string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
