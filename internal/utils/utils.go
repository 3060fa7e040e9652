package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/internal/analyzer"
	"github.com/vitebski/csv-relational-normalizer/internal/connector"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

// LogLevelEnv is consulted when no log level is given on the command line
const LogLevelEnv = "NORMALIZER_LOG_LEVEL"

// SetupLogging configures the logging system. Logs go to stderr so that
// stdout only carries the run summary.
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	levelStr := logLevel
	if levelStr == "" {
		levelStr = GetEnvOrDefault(LogLevelEnv, "info")
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads variables from envFile when it exists and
// reports whether every required variable is set afterwards
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger, requiredVars ...string) bool {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		}
	}

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warningf("Error loading %s file: %v", envFile, err)
		} else {
			logger.Debugf("Loaded environment variables from %s", envFile)
		}
	} else {
		logger.Debugf("No %s file found, using existing environment variables", envFile)
	}

	var missingVars []string
	for _, v := range requiredVars {
		if os.Getenv(v) == "" {
			missingVars = append(missingVars, v)
		}
	}

	if len(missingVars) > 0 {
		logger.Warningf("Missing required environment variables: %s", strings.Join(missingVars, ", "))
		logger.Info("These can be provided via command line arguments, environment variables, or a .env file")
		return false
	}

	if logger.Level == logrus.DebugLevel {
		for _, env := range os.Environ() {
			if !strings.HasPrefix(env, "MYSQL_") && !strings.HasPrefix(env, "NORMALIZER_") {
				continue
			}
			parts := strings.SplitN(env, "=", 2)
			if len(parts) != 2 {
				continue
			}
			if parts[0] == "MYSQL_PASSWORD" {
				logger.Debugf("%s=********", parts[0])
			} else {
				logger.Debugf("%s=%s", parts[0], parts[1])
			}
		}
	}

	return true
}

// GetEnvOrDefault gets an environment variable or returns a default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// ValidateConnectionParams validates database connection parameters
func ValidateConnectionParams(host, user, password, database, port string, logger *logrus.Logger) bool {
	if host == "" {
		logger.Error("Database host is required")
		return false
	}

	if user == "" {
		logger.Error("Database user is required")
		return false
	}

	if password == "" { // Empty password is allowed
		logger.Warning("Database password is empty")
	}

	if database == "" {
		logger.Error("Database name is required")
		return false
	}

	if _, err := strconv.Atoi(port); err != nil {
		logger.Errorf("Invalid port number: %s", port)
		return false
	}

	return true
}

// PrintSummary prints what was written and the row count of every table
func PrintSummary(w io.Writer, kind, target string, counts []models.TableCount) {
	fmt.Fprintf(w, "Wrote %s: %s\n", kind, target)
	for _, c := range counts {
		fmt.Fprintf(w, " - %s: %d rows\n", c.Table, c.Rows)
	}
	fmt.Fprintln(w, "Done.")
}

// PrintRelationshipAnalysis prints the table relationships found by ra
func PrintRelationshipAnalysis(w io.Writer, ra *analyzer.RelationshipAnalyzer) {
	orderedTables, circularTables := ra.GetTableInsertionOrder()

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "TABLE RELATIONSHIP REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	totalRows := 0
	for _, n := range ra.RowCounts {
		totalRows += n
	}

	fmt.Fprintln(w, "\n1. BASIC STATISTICS")
	fmt.Fprintf(w, "   Total tables: %d\n", len(ra.Tables))
	fmt.Fprintf(w, "   Total rows: %d\n", totalRows)
	fmt.Fprintf(w, "   Tables with foreign keys: %d\n", len(ra.ForeignKeys))
	fmt.Fprintf(w, "   Link tables: %d\n", len(ra.LinkTables))
	fmt.Fprintf(w, "   Tables in circular dependencies: %d\n", len(circularTables))

	fmt.Fprintln(w, "\n2. TABLES")
	for _, table := range ra.Tables {
		pk := ra.PrimaryKeys[table]
		if pk == "" {
			pk = "-"
		}
		fmt.Fprintf(w, "   %-15s rows=%-8d key=%s\n", table, ra.RowCounts[table], pk)
		for _, fk := range ra.ForeignKeys[table] {
			fmt.Fprintf(w, "     %s -> %s.%s\n", fk.Column, fk.ReferencedTable, fk.ReferencedColumn)
		}
	}

	if len(ra.DirectCircularDeps) > 0 {
		fmt.Fprintln(w, "\n3. CIRCULAR DEPENDENCIES")
		for _, dep := range ra.DirectCircularDeps {
			if len(dep) >= 2 {
				fmt.Fprintf(w, "     %s <-> %s\n", dep[0], dep[1])
			}
		}
	}

	fmt.Fprintln(w, "\n4. LOAD ORDER")
	for i, table := range orderedTables {
		fmt.Fprintf(w, "   %3d. %s (%s)\n", i+1, table, ra.Category(table, circularTables))
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
}

// VerifyTablePopulation compares the row count of each table in the
// database with the expected count. It returns the tables that could not be
// counted and the tables whose counts differ, mapped to the count found.
func VerifyTablePopulation(db *connector.DatabaseConnector, expected []models.TableCount, logger *logrus.Logger) (bool, []string, map[string]int) {
	logger.Infof("Verifying row counts of %d tables...", len(expected))

	unreadable := []string{}
	mismatched := make(map[string]int)

	for _, e := range expected {
		query := fmt.Sprintf("SELECT COUNT(*) AS count FROM %s", db.QuoteIdentifier(e.Table))
		result, err := db.ExecuteQuery(query)
		if err != nil || len(result) == 0 {
			logger.Warningf("Could not verify record count for table: %s", e.Table)
			unreadable = append(unreadable, e.Table)
			continue
		}

		count, err := strconv.ParseInt(fmt.Sprintf("%v", result[0]["count"]), 10, 64)
		if err != nil {
			logger.Warningf("Could not parse count for table %s: %v", e.Table, err)
			unreadable = append(unreadable, e.Table)
			continue
		}

		if count != int64(e.Rows) {
			logger.Warningf("Table %s has %d/%d expected records", e.Table, count, e.Rows)
			mismatched[e.Table] = int(count)
		}
	}

	success := len(unreadable) == 0 && len(mismatched) == 0
	if success {
		logger.Info("Verification successful: all tables hold the expected number of records")
	}
	return success, unreadable, mismatched
}

// PrintVerificationResults prints the outcome of VerifyTablePopulation
func PrintVerificationResults(w io.Writer, unreadable []string, mismatched map[string]int, expected []models.TableCount) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "TABLE POPULATION VERIFICATION RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if len(unreadable) == 0 && len(mismatched) == 0 {
		fmt.Fprintf(w, "All %d tables hold the expected number of records\n", len(expected))
		fmt.Fprintln(w, strings.Repeat("=", 50))
		return
	}

	if len(unreadable) > 0 {
		fmt.Fprintf(w, "%d tables could not be counted:\n", len(unreadable))
		for _, table := range unreadable {
			fmt.Fprintf(w, "  - %s\n", table)
		}
		fmt.Fprintln(w)
	}

	if len(mismatched) > 0 {
		fmt.Fprintf(w, "%d tables have unexpected row counts:\n", len(mismatched))
		for _, e := range expected {
			if count, ok := mismatched[e.Table]; ok {
				fmt.Fprintf(w, "  - %s: %d/%d records\n", e.Table, count, e.Rows)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("=", 50))
}
