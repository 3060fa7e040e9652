package sink

import (
	"fmt"
	"unicode/utf8"

	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

// MaxSheetNameLength is the longest sheet name a workbook accepts
const MaxSheetNameLength = 31

// Sink receives the normalized tables
type Sink interface {
	// Kind names the output for the summary line, e.g. "Excel file"
	Kind() string
	// Target is the file or database written to
	Target() string
	Write(result *models.Result) error
}

// SheetNames truncates table names to MaxSheetNameLength characters and
// fails when two names collide afterwards
func SheetNames(tables []*models.Table) ([]string, error) {
	names := make([]string, len(tables))
	seen := make(map[string]string, len(tables))
	for i, t := range tables {
		name := t.Name
		if utf8.RuneCountInString(name) > MaxSheetNameLength {
			name = string([]rune(name)[:MaxSheetNameLength])
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("tables %q and %q share sheet name %q", prev, t.Name, name)
		}
		seen[name] = t.Name
		names[i] = name
	}
	return names, nil
}
