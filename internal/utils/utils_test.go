package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/internal/analyzer"
	"github.com/vitebski/csv-relational-normalizer/internal/connector"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func TestSetupLogging(t *testing.T) {
	t.Setenv(LogLevelEnv, "")

	logger := SetupLogging("")
	if logger.Level != logrus.InfoLevel {
		t.Errorf("Expected default log level to be info, got %s", logger.Level)
	}
	if logger.Out != os.Stderr {
		t.Error("Expected logs to go to stderr")
	}

	for _, tt := range []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"invalid", logrus.InfoLevel},
	} {
		if got := SetupLogging(tt.in).Level; got != tt.want {
			t.Errorf("SetupLogging(%q) level = %s; expected %s", tt.in, got, tt.want)
		}
	}

	t.Setenv(LogLevelEnv, "warn")
	if got := SetupLogging("").Level; got != logrus.WarnLevel {
		t.Errorf("Expected level from environment, got %s", got)
	}
	if got := SetupLogging("error").Level; got != logrus.ErrorLevel {
		t.Errorf("Expected flag to override environment, got %s", got)
	}
}

func TestLoadEnvironmentVariables(t *testing.T) {
	logger := createTestLogger()
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("NORMALIZER_TEST_VALUE=from-file\n"), 0o644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	defer os.Unsetenv("NORMALIZER_TEST_VALUE")

	if !LoadEnvironmentVariables(envFile, logger, "NORMALIZER_TEST_VALUE") {
		t.Error("Expected required variable to be loaded from file")
	}
	if os.Getenv("NORMALIZER_TEST_VALUE") != "from-file" {
		t.Errorf("Expected value from file, got %q", os.Getenv("NORMALIZER_TEST_VALUE"))
	}

	if LoadEnvironmentVariables(filepath.Join(t.TempDir(), "absent.env"), logger, "NORMALIZER_TEST_ABSENT") {
		t.Error("Expected missing required variable to be reported")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "42")
	if value := GetEnvInt("TEST_ENV_INT", 10); value != 42 {
		t.Errorf("Expected value to be 42, got %d", value)
	}

	t.Setenv("TEST_ENV_INT", "")
	if value := GetEnvInt("TEST_ENV_INT", 10); value != 10 {
		t.Errorf("Expected value to be 10 (default), got %d", value)
	}

	t.Setenv("TEST_ENV_INT", "not-an-int")
	if value := GetEnvInt("TEST_ENV_INT", 10); value != 10 {
		t.Errorf("Expected value to be 10 (default) for invalid input, got %d", value)
	}
}

func TestValidateConnectionParams(t *testing.T) {
	logger := createTestLogger()

	if !ValidateConnectionParams("localhost", "user", "password", "database", "3306", logger) {
		t.Error("Expected validation to pass with valid parameters")
	}
	if ValidateConnectionParams("", "user", "password", "database", "3306", logger) {
		t.Error("Expected validation to fail with missing host")
	}
	if ValidateConnectionParams("localhost", "", "password", "database", "3306", logger) {
		t.Error("Expected validation to fail with missing user")
	}
	if ValidateConnectionParams("localhost", "user", "password", "", "3306", logger) {
		t.Error("Expected validation to fail with missing database")
	}
	if ValidateConnectionParams("localhost", "user", "password", "database", "not-a-port", logger) {
		t.Error("Expected validation to fail with invalid port")
	}
	if !ValidateConnectionParams("localhost", "user", "", "database", "3306", logger) {
		t.Error("Expected validation to pass with empty password")
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, "Excel file", "out.xlsx", []models.TableCount{
		{Table: "Customers", Rows: 2},
		{Table: "DataDictionary", Rows: 8},
	})

	want := "Wrote Excel file: out.xlsx\n - Customers: 2 rows\n - DataDictionary: 8 rows\nDone.\n"
	if buf.String() != want {
		t.Errorf("Unexpected summary:\n%s", buf.String())
	}
}

func TestPrintRelationshipAnalysis(t *testing.T) {
	ra := analyzer.NewRelationshipAnalyzer(createTestLogger())
	ra.Analyze(&models.Result{Tables: []*models.Table{
		{Name: "Customers", PrimaryKey: "CustomerID", Rows: make([][]models.Value, 3)},
		{Name: "Cards", PrimaryKey: "CardID", ForeignKeys: []models.ForeignKey{
			{Table: "Cards", Column: "CustomerID", ReferencedTable: "Customers", ReferencedColumn: "CustomerID"},
		}},
	}})

	var buf bytes.Buffer
	PrintRelationshipAnalysis(&buf, ra)
	out := buf.String()

	for _, want := range []string{
		"Total tables: 2",
		"Total rows: 3",
		"CustomerID -> Customers.CustomerID",
		"1. Customers (Standalone)",
		"2. Cards (Dependent)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q:\n%s", want, out)
		}
	}
}

func TestVerifyTablePopulation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	logger := createTestLogger()
	dc := connector.NewWithDB(db, connector.DriverMySQL, "bank", logger)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS count FROM `Customers`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS count FROM `Accounts`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	expected := []models.TableCount{{Table: "Customers", Rows: 2}, {Table: "Accounts", Rows: 3}}
	ok, unreadable, mismatched := VerifyTablePopulation(dc, expected, logger)
	if ok {
		t.Error("Expected verification to fail")
	}
	if len(unreadable) != 0 {
		t.Errorf("Expected no unreadable tables, got %v", unreadable)
	}
	if mismatched["Accounts"] != 1 || len(mismatched) != 1 {
		t.Errorf("Expected Accounts mismatch, got %v", mismatched)
	}

	var buf bytes.Buffer
	PrintVerificationResults(&buf, unreadable, mismatched, expected)
	if !strings.Contains(buf.String(), "Accounts: 1/3 records") {
		t.Errorf("Unexpected verification output:\n%s", buf.String())
	}
}
