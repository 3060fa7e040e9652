package normalizer

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/internal/coercer"
	"github.com/vitebski/csv-relational-normalizer/internal/dictionary"
	"github.com/vitebski/csv-relational-normalizer/internal/resolver"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

// MissingColumnError is returned when a mandatory logical column cannot be
// found in the input
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("input does not contain a '%s' column (case-insensitive match)", e.Column)
}

// Normalizer splits a wide frame into relational tables
type Normalizer struct {
	Logger *logrus.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	return &Normalizer{Logger: logger}
}

// Normalize resolves, coerces and splits frame. The frame is modified in
// place. On error no tables are returned.
func (n *Normalizer) Normalize(frame *models.Frame) (*models.Result, error) {
	binding := resolver.Resolve(frame.Headers)
	if !binding.Has(resolver.CustomerID) {
		return nil, &MissingColumnError{Column: resolver.CustomerID}
	}
	if missing := binding.Missing(); len(missing) > 0 {
		n.Logger.Debugf("Logical columns not found in input: %s", strings.Join(missing, ", "))
	}

	coercer.Coerce(frame, binding)

	if err := DeriveAccountIDs(frame, binding); err != nil {
		return nil, err
	}

	result := &models.Result{Tables: split(frame, binding)}
	result.Tables = append(result.Tables, dictionary.Table())

	for _, t := range result.Tables {
		n.Logger.Debugf("Built table %s: %d columns, %d rows", t.Name, len(t.Columns), len(t.Rows))
	}
	return result, nil
}
