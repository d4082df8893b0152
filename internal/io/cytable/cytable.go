// Package cytable reads and writes attribute tables and the table index of a
// session archive.
//
// A table is CSV: a header row of column names, a row of column types, then
// one row per table row. Missing cells are written empty. Table identity
// (title, primary key, owner) lives in the index document, not the CSV.
package cytable

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// TableWriter writes one table as CSV
type TableWriter struct {
	w     io.Writer
	table *types.Table
}

// NewTableWriter creates a table writer
func NewTableWriter(w io.Writer, table *types.Table) *TableWriter {
	return &TableWriter{w: w, table: table}
}

// Write encodes the table
func (tw *TableWriter) Write() error {
	cw := csv.NewWriter(tw.w)

	names := make([]string, len(tw.table.Columns))
	kinds := make([]string, len(tw.table.Columns))
	for i, c := range tw.table.Columns {
		names[i] = c.Name
		kinds[i] = string(c.Type)
	}
	if err := cw.Write(names); err != nil {
		return err
	}
	if err := cw.Write(kinds); err != nil {
		return err
	}

	record := make([]string, len(names))
	for _, row := range tw.table.Rows {
		for i, name := range names {
			record[i] = row[name]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write table %q: %w", tw.table.Title, err)
	}
	return nil
}

// ReadTable parses a CSV table body into t's columns and rows. The caller
// supplies identity from the index entry.
func ReadTable(r io.Reader, t *types.Table) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	names, err := cr.Read()
	if err != nil {
		return fmt.Errorf("table %q: missing header: %w", t.Title, err)
	}
	kinds, err := cr.Read()
	if err != nil {
		return fmt.Errorf("table %q: missing column types: %w", t.Title, err)
	}
	if len(kinds) != len(names) {
		return fmt.Errorf("table %q: %d column names but %d types", t.Title, len(names), len(kinds))
	}

	t.Columns = t.Columns[:0]
	for i, name := range names {
		if err := t.AddColumn(name, types.ColumnType(kinds[i])); err != nil {
			return fmt.Errorf("table %q: %w", t.Title, err)
		}
	}
	if _, ok := t.Column(t.PrimaryKey); !ok {
		return fmt.Errorf("table %q: primary key column %q not found", t.Title, t.PrimaryKey)
	}

	t.Rows = nil
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("table %q: %w", t.Title, err)
		}
		row := make(types.Row, len(names))
		for i, v := range record {
			if i >= len(names) {
				break
			}
			if v != "" {
				row[names[i]] = v
			}
		}
		if err := t.AddRow(row); err != nil {
			return fmt.Errorf("table %q: %w", t.Title, err)
		}
	}
	return nil
}

// Manager hands out table writers to the archive writer
type Manager struct{}

// NewManager creates a table writer manager
func NewManager() *Manager {
	return &Manager{}
}

// TableWriter returns a CSV writer for a table
func (Manager) TableWriter(w io.Writer, table *types.Table) codec.Writer {
	return NewTableWriter(w, table)
}
