package corpus

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Table is a header-driven view of one corpus CSV. Cells are plain strings
// so analysis-stage columns pass through the mergers uninterpreted.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// ReadTable loads a corpus file tolerantly: UTF-8 first (BOM stripped),
// Latin-1 as fallback for historical files, ragged rows padded or truncated
// to the header width.
func ReadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(b) {
		decoded, derr := charmap.ISO8859_1.NewDecoder().Bytes(b)
		if derr != nil {
			return nil, fmt.Errorf("decode %s: %w", path, derr)
		}
		b = decoded
	}

	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse %s: no header row", path)
	}

	t := &Table{Columns: records[0]}
	for _, rec := range records[1:] {
		row := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Write rewrites the file wholesale via tmp+rename, so an interrupted run
// leaves the prior file untouched.
func (t *Table) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// EnsureColumn adds a column (empty cells) when absent.
func (t *Table) EnsureColumn(name string) {
	if slices.Contains(t.Columns, name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for _, row := range t.Rows {
		row[name] = ""
	}
}

// InsertColumnAfter places name immediately after the given column, or at
// the end when the anchor is missing. Existing positions are preserved.
func (t *Table) InsertColumnAfter(name, after string) {
	if slices.Contains(t.Columns, name) {
		return
	}
	idx := slices.Index(t.Columns, after)
	if idx < 0 {
		t.Columns = append(t.Columns, name)
	} else {
		t.Columns = slices.Insert(t.Columns, idx+1, name)
	}
	for _, row := range t.Rows {
		if _, ok := row[name]; !ok {
			row[name] = ""
		}
	}
}
