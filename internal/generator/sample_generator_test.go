package generator

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/internal/normalizer"
	"github.com/vitebski/csv-relational-normalizer/internal/reader"
	"github.com/vitebski/csv-relational-normalizer/internal/resolver"
)

func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func TestRows(t *testing.T) {
	sg := NewSampleGenerator(7, createTestLogger())

	if len(sg.Headers()) != len(resolver.Catalog) {
		t.Errorf("Expected %d headers, got %d", len(resolver.Catalog), len(sg.Headers()))
	}

	rows := sg.Rows(30)
	if len(rows) != 30 {
		t.Fatalf("Expected 30 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(resolver.Catalog) {
			t.Fatalf("Row %d: expected %d cells, got %d", i, len(resolver.Catalog), len(row))
		}
		if row[0] == "" {
			t.Errorf("Row %d: expected a customer id", i)
		}
	}

	if sg.Rows(0) != nil {
		t.Error("Expected no rows for a zero count")
	}
}

func TestRowsDeterministic(t *testing.T) {
	a := NewSampleGenerator(42, createTestLogger()).Rows(10)
	b := NewSampleGenerator(42, createTestLogger()).Rows(10)

	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("Row %d col %d differs: %q vs %q", i, j, a[i][j], b[i][j])
			}
		}
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for in, want := range tests {
		if got := groupThousands(in); got != want {
			t.Errorf("groupThousands(%d) = %s; expected %s", in, got, want)
		}
	}
}

func TestWriteCSVNormalizes(t *testing.T) {
	logger := createTestLogger()
	sg := NewSampleGenerator(1, logger)

	var buf bytes.Buffer
	if err := sg.WriteCSV(&buf, 60); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	frame, err := reader.Read(&buf)
	if err != nil {
		t.Fatalf("Failed to read generated csv: %v", err)
	}
	if len(frame.Rows) != 60 {
		t.Fatalf("Expected 60 rows, got %d", len(frame.Rows))
	}

	result, err := normalizer.NewNormalizer(logger).Normalize(frame)
	if err != nil {
		t.Fatalf("Failed to normalize generated csv: %v", err)
	}

	customers := len(result.Table(normalizer.Customers).Rows)
	if customers == 0 || customers > 60/rowsPerCustomer+1 {
		t.Errorf("Expected repeated customers, got %d distinct", customers)
	}
	if got := len(result.Table(normalizer.Transactions).Rows); got != 60 {
		t.Errorf("Expected one transaction per row, got %d", got)
	}
	if got := len(result.Table(normalizer.Accounts).Rows); got > customers*maxAccountsPerCustomer {
		t.Errorf("Expected at most %d accounts, got %d", customers*maxAccountsPerCustomer, got)
	}
}
