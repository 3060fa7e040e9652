package sink

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/internal/analyzer"
	"github.com/vitebski/csv-relational-normalizer/internal/connector"
	"github.com/vitebski/csv-relational-normalizer/internal/populator"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

// DatabaseSink loads the tables into a SQL database, one SQL table each
type DatabaseSink struct {
	DB        *connector.DatabaseConnector
	BatchSize int
	Logger    *logrus.Logger

	// InsertedRows is filled by Write
	InsertedRows map[string]int
}

// NewDatabaseSink creates a sink over an unopened or opened connector
func NewDatabaseSink(db *connector.DatabaseConnector, batchSize int, logger *logrus.Logger) *DatabaseSink {
	return &DatabaseSink{DB: db, BatchSize: batchSize, Logger: logger}
}

// Kind implements Sink
func (s *DatabaseSink) Kind() string {
	if s.DB.Driver == connector.DriverSQLite {
		return "SQLite database"
	}
	return "MySQL database"
}

// Target implements Sink
func (s *DatabaseSink) Target() string { return s.DB.Database }

// Write implements Sink. Referenced tables are loaded before the tables
// that point at them.
func (s *DatabaseSink) Write(result *models.Result) error {
	if s.DB.DB == nil {
		if err := s.DB.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer s.DB.Disconnect()
	}

	ra := analyzer.NewRelationshipAnalyzer(s.Logger)
	ra.Analyze(result)

	dp := populator.NewDatabasePopulator(s.DB, ra, s.BatchSize, s.Logger)
	err := dp.PopulateDatabase(result)
	s.InsertedRows = dp.InsertedRows
	return err
}
