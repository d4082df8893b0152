package types

import (
	"fmt"

	"github.com/GriffinCanCode/netsession/internal/shared/id"
)

// ColumnType is the declared type of a table column
type ColumnType string

const (
	ColumnString  ColumnType = "String"
	ColumnInteger ColumnType = "Integer"
	ColumnLong    ColumnType = "Long"
	ColumnDouble  ColumnType = "Double"
	ColumnBoolean ColumnType = "Boolean"
)

// Valid reports whether t is a known column type
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnString, ColumnInteger, ColumnLong, ColumnDouble, ColumnBoolean:
		return true
	}
	return false
}

// IdentifiableType tags which kind of object a network table describes
type IdentifiableType string

const (
	IdentifiableNone    IdentifiableType = ""
	IdentifiableNetwork IdentifiableType = "network"
	IdentifiableNode    IdentifiableType = "node"
	IdentifiableEdge    IdentifiableType = "edge"
)

// IdentifiableTypes lists the types that own network tables, in capture order
var IdentifiableTypes = []IdentifiableType{IdentifiableNetwork, IdentifiableNode, IdentifiableEdge}

// DefaultPrimaryKey is the primary key column of every network table
const DefaultPrimaryKey = "SUID"

// Column is a typed table column
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Row maps column name to its serialized value
type Row map[string]string

// Table is an attribute table
type Table struct {
	SUID       SUID       `json:"suid"`
	Title      string     `json:"title"`
	SavePolicy SavePolicy `json:"save_policy"`
	Public     bool       `json:"public"`
	PrimaryKey string     `json:"primary_key"`
	Columns    []Column   `json:"columns"`
	Rows       []Row      `json:"rows"`
}

// NewTable creates a table with a Long primary key column
func NewTable(title, primaryKey string) *Table {
	if primaryKey == "" {
		primaryKey = DefaultPrimaryKey
	}
	return &Table{
		SUID:       id.NextSUID(),
		Title:      title,
		SavePolicy: SavePolicySessionFile,
		Public:     true,
		PrimaryKey: primaryKey,
		Columns:    []Column{{Name: primaryKey, Type: ColumnLong}},
	}
}

// AddColumn declares a new column
func (t *Table) AddColumn(name string, colType ColumnType) error {
	if !colType.Valid() {
		return fmt.Errorf("unknown column type %q", colType)
	}
	if _, ok := t.Column(name); ok {
		return fmt.Errorf("column %q already exists in table %q", name, t.Title)
	}
	t.Columns = append(t.Columns, Column{Name: name, Type: colType})
	return nil
}

// Column finds a column by name
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// AddRow appends a row; the primary key value is required
func (t *Table) AddRow(row Row) error {
	if _, ok := row[t.PrimaryKey]; !ok {
		return fmt.Errorf("row is missing primary key %q", t.PrimaryKey)
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// TableMetadata describes one table persisted with a session.
// A nil Network marks a global table.
type TableMetadata struct {
	Table     *Table           `json:"table"`
	Network   *Network         `json:"-"`
	Namespace string           `json:"namespace,omitempty"`
	Type      IdentifiableType `json:"type,omitempty"`
}

// IsGlobal reports whether the table is not bound to a network
func (m TableMetadata) IsGlobal() bool {
	return m.Network == nil
}
