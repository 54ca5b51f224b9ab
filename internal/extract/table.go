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
)

// Table is a tabular source. A nil cell is null.
type Table struct {
	Header []string
	Rows   [][]*string
}

// Column returns the index of name in the header, matched after trimming.
func (t *Table) Column(name string) (int, error) {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in header %v", name, t.Header)
}

// Cell returns row[col], or nil when the row is too short.
func (t *Table) Cell(row, col int) *string {
	r := t.Rows[row]
	if col >= len(r) {
		return nil
	}
	return r[col]
}

// Dedupe drops rows equal, cell for cell, to an earlier row and returns how
// many were dropped.
func (t *Table) Dedupe() int {
	seen := make(map[string]struct{}, len(t.Rows))
	kept := t.Rows[:0]
	dropped := 0
	for _, row := range t.Rows {
		key := rowKey(row, len(t.Header))
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	t.Rows = kept
	return dropped
}

func rowKey(row []*string, width int) string {
	var b strings.Builder
	for i := 0; i < max(width, len(row)); i++ {
		if i < len(row) && row[i] != nil {
			b.WriteByte('v')
			b.WriteString(fmt.Sprintf("%d:", len(*row[i])))
			b.WriteString(*row[i])
		} else {
			b.WriteByte('n')
		}
	}
	return b.String()
}

// naValues are the cell texts read as null, matching what spreadsheet and
// dataframe tooling treats as missing by default.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

func cell(s string) *string {
	if _, na := naValues[s]; na {
		return nil
	}
	return &s
}

// ReadSource reads a .csv or .xlsx file. sheet only applies to .xlsx; empty
// means the first sheet.
func ReadSource(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, sheet)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: empty source, no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", len(t.Rows)+1, err)
		}
		row := make([]*string, len(rec))
		for i, v := range rec {
			row[i] = cell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func ReadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx sheet %q: no header row", sheet)
	}

	t := &Table{Header: rows[0]}
	for _, rec := range rows[1:] {
		row := make([]*string, len(rec))
		for i, v := range rec {
			row[i] = cell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
