package models

import (
	"fmt"
	"strconv"
	"time"
)

// ValueKind represents the state of a single cell
type ValueKind int

const (
	Missing ValueKind = iota
	String
	Number
	Time
)

// Value is a single cell. The zero value is Missing.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Time time.Time
}

// MissingValue returns an explicit missing marker
func MissingValue() Value {
	return Value{Kind: Missing}
}

// StringValue wraps raw text
func StringValue(s string) Value {
	return Value{Kind: String, Str: s}
}

// NumberValue wraps a parsed number
func NumberValue(f float64) Value {
	return Value{Kind: Number, Num: f}
}

// TimeValue wraps a parsed date or timestamp
func TimeValue(t time.Time) Value {
	return Value{Kind: Time, Time: t}
}

// IsMissing reports whether the cell holds the missing marker
func (v Value) IsMissing() bool {
	return v.Kind == Missing
}

// Equal compares kind and payload. Missing equals Missing.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Missing:
		return true
	case String:
		return v.Str == o.Str
	case Number:
		return v.Num == o.Num
	case Time:
		return v.Time.Equal(o.Time)
	}
	return false
}

// String renders the cell as text. Missing renders as the empty string and
// dates without a clock component render as YYYY-MM-DD.
func (v Value) String() string {
	switch v.Kind {
	case String:
		return v.Str
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Time:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 && v.Time.Nanosecond() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Key returns a representation that is identical for Equal values and is
// used to build dedup keys
func (v Value) Key() string {
	switch v.Kind {
	case Missing:
		return "\x00"
	case String:
		return "s" + v.Str
	case Number:
		if v.Num == 0 {
			return "n0"
		}
		return "n" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	case Time:
		return fmt.Sprintf("t%d.%09d", v.Time.Unix(), v.Time.Nanosecond())
	}
	return ""
}

// Native returns the cell as a value suitable for database/sql or a sheet
// writer: nil, string, float64 or time.Time
func (v Value) Native() interface{} {
	switch v.Kind {
	case String:
		return v.Str
	case Number:
		return v.Num
	case Time:
		return v.Time
	}
	return nil
}

// Frame is a loaded wide table. Rows are aligned to Headers by position.
type Frame struct {
	Headers []string
	Rows    [][]Value
}

// Index returns the position of the header that equals name exactly
func (f *Frame) Index(name string) int {
	for i, h := range f.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// ForeignKey represents a documented reference from one output table to another
type ForeignKey struct {
	Table            string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Table represents one normalized output table
type Table struct {
	Name        string
	Columns     []string
	PrimaryKey  string
	ForeignKeys []ForeignKey
	Rows        [][]Value
}

// ColumnIndex returns the position of column name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DictionaryEntry represents one row of the data dictionary
type DictionaryEntry struct {
	Table       string
	PrimaryKey  string
	ForeignKeys string
	Notes       string
}

// Result holds the output tables in their fixed write order
type Result struct {
	Tables []*Table
}

// Table returns the output table called name, or nil
func (r *Result) Table(name string) *Table {
	for _, t := range r.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// RowCounts returns the number of rows per table in write order
func (r *Result) RowCounts() []TableCount {
	counts := make([]TableCount, 0, len(r.Tables))
	for _, t := range r.Tables {
		counts = append(counts, TableCount{Table: t.Name, Rows: len(t.Rows)})
	}
	return counts
}

// TableCount represents the row count of one output table
type TableCount struct {
	Table string
	Rows  int
}
