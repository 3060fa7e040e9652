package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vitebski/csv-relational-normalizer/pkg/models"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MissingTokens are cell texts read as missing
var MissingTokens = []string{"", "NA", "N/A"}

// ErrEmptyInput is returned when the input has no header row
var ErrEmptyInput = errors.New("input has no header row")

// ReadCSV loads the file at path into a frame
func ReadCSV(path string) (*models.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Read loads a comma-separated table. Every cell is kept as raw text except
// the missing tokens. A UTF-8 or UTF-16 byte order mark is honoured and
// headers are trimmed. Short rows are padded with missing cells and long
// rows are cut to the header width.
func Read(r io.Reader) (*models.Frame, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	frame := &models.Frame{Headers: make([]string, len(header))}
	for i, h := range header {
		frame.Headers[i] = strings.TrimSpace(h)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(frame.Rows)+2, err)
		}

		row := make([]models.Value, len(frame.Headers))
		for i := range row {
			if i < len(record) {
				row[i] = cell(record[i])
			}
		}
		frame.Rows = append(frame.Rows, row)
	}

	return frame, nil
}

func cell(s string) models.Value {
	for _, tok := range MissingTokens {
		if s == tok {
			return models.MissingValue()
		}
	}
	return models.StringValue(s)
}
