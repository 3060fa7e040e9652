package connector

import (
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
)

func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func TestNewDatabaseConnector(t *testing.T) {
	t.Setenv("MYSQL_HOST", "test-host")
	t.Setenv("MYSQL_USER", "test-user")
	t.Setenv("MYSQL_PASSWORD", "test-password")
	t.Setenv("MYSQL_DATABASE", "test-database")
	t.Setenv("MYSQL_PORT", "3307")

	logger := createTestLogger()

	db := NewDatabaseConnector("", "", "", "", "", logger)
	if db.Driver != DriverMySQL {
		t.Errorf("Expected driver to be '%s', got '%s'", DriverMySQL, db.Driver)
	}
	if db.Host != "test-host" {
		t.Errorf("Expected host to be 'test-host', got '%s'", db.Host)
	}
	if db.User != "test-user" {
		t.Errorf("Expected user to be 'test-user', got '%s'", db.User)
	}
	if db.Password != "test-password" {
		t.Errorf("Expected password to be 'test-password', got '%s'", db.Password)
	}
	if db.Database != "test-database" {
		t.Errorf("Expected database to be 'test-database', got '%s'", db.Database)
	}
	if db.Port != "3307" {
		t.Errorf("Expected port to be '3307', got '%s'", db.Port)
	}

	db = NewDatabaseConnector("explicit-host", "explicit-user", "explicit-password", "explicit-database", "3308", logger)
	if db.Host != "explicit-host" || db.Port != "3308" || db.Database != "explicit-database" {
		t.Errorf("Expected explicit parameters to be used, got %+v", db)
	}

	want := "explicit-user:explicit-password@tcp(explicit-host:3308)/explicit-database?parseTime=true"
	if got := db.DSN(); got != want {
		t.Errorf("Expected DSN %q, got %q", want, got)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	logger := createTestLogger()

	mysql := NewDatabaseConnector("h", "u", "p", "d", "3306", logger)
	if got := mysql.QuoteIdentifier("First Name"); got != "`First Name`" {
		t.Errorf("Unexpected MySQL quoting: %s", got)
	}
	if got := mysql.QuoteIdentifier("a`b"); got != "`a``b`" {
		t.Errorf("Unexpected MySQL escaping: %s", got)
	}

	sqlite := NewSQLiteConnector("out.db", logger)
	if got := sqlite.QuoteIdentifier(`Approval/Rejection "Date"`); got != `"Approval/Rejection ""Date"""` {
		t.Errorf("Unexpected SQLite quoting: %s", got)
	}
	if sqlite.DSN() != "out.db" {
		t.Errorf("Expected SQLite DSN to be the path, got %s", sqlite.DSN())
	}
}

func TestConnectRequiresDatabase(t *testing.T) {
	dc := &DatabaseConnector{Driver: DriverMySQL, Logger: createTestLogger()}
	if err := dc.Connect(); err == nil {
		t.Error("Expected error when database name is empty")
	}
}

func TestExecuteMany(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	dc := NewWithDB(db, DriverMySQL, "bank", createTestLogger())

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO `Branches`")
	prep.ExpectExec().WithArgs("B1").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("B2").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	affected, err := dc.ExecuteMany("INSERT INTO `Branches` (`BranchID`) VALUES (?)", [][]interface{}{{"B1"}, {"B2"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if affected != 2 {
		t.Errorf("Expected 2 affected rows, got %d", affected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestExecuteQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer db.Close()

	dc := NewWithDB(db, DriverMySQL, "bank", createTestLogger())

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow([]byte("3")))

	rows, err := dc.ExecuteQuery("SELECT COUNT(*) AS count FROM `Customers`")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0]["count"] != "3" {
		t.Errorf("Expected byte values converted to string, got %v", rows)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	dc := NewSQLiteConnector(filepath.Join(t.TempDir(), "bank.db"), createTestLogger())
	if err := dc.Connect(); err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	defer dc.Disconnect()

	if _, err := dc.ExecuteStatement(`CREATE TABLE "Branches" ("BranchID" TEXT)`); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if _, err := dc.ExecuteMany(`INSERT INTO "Branches" ("BranchID") VALUES (?)`, [][]interface{}{{"B1"}, {nil}}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	rows, err := dc.ExecuteQuery(`SELECT COUNT(*) AS count FROM "Branches"`)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if rows[0]["count"] != int64(2) {
		t.Errorf("Expected 2 rows, got %v (%T)", rows[0]["count"], rows[0]["count"])
	}
}
