package populator

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/internal/analyzer"
	"github.com/vitebski/csv-relational-normalizer/internal/connector"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

// DefaultBatchSize is the number of rows inserted per transaction
const DefaultBatchSize = 100

// SQL column types chosen from the cells of a column
const (
	TypeText     = "TEXT"
	TypeDouble   = "DOUBLE"
	TypeDatetime = "DATETIME"
)

// DatabasePopulator creates one SQL table per output table and loads its rows
type DatabasePopulator struct {
	DB           *connector.DatabaseConnector
	Analyzer     *analyzer.RelationshipAnalyzer
	BatchSize    int
	InsertedRows map[string]int
	FailedTables map[string]bool
	Logger       *logrus.Logger
}

// NewDatabasePopulator creates a new database populator
func NewDatabasePopulator(
	db *connector.DatabaseConnector,
	relationshipAnalyzer *analyzer.RelationshipAnalyzer,
	batchSize int,
	logger *logrus.Logger,
) *DatabasePopulator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DatabasePopulator{
		DB:           db,
		Analyzer:     relationshipAnalyzer,
		BatchSize:    batchSize,
		InsertedRows: make(map[string]int),
		FailedTables: make(map[string]bool),
		Logger:       logger,
	}
}

// PopulateDatabase writes every table of result, referenced tables first.
// It stops at the first failing table.
func (dp *DatabasePopulator) PopulateDatabase(result *models.Result) error {
	orderedTables, _ := dp.Analyzer.GetTableInsertionOrder()

	for _, name := range orderedTables {
		table := result.Table(name)
		if table == nil {
			continue
		}
		if err := dp.populateTable(table); err != nil {
			dp.FailedTables[name] = true
			return fmt.Errorf("table %s: %w", name, err)
		}
	}
	return nil
}

// populateTable recreates table and inserts its rows in batches
func (dp *DatabasePopulator) populateTable(table *models.Table) error {
	dp.Logger.Infof("Populating table: %s", table.Name)

	types := ColumnTypes(table)
	if err := dp.createTable(table, types); err != nil {
		return err
	}

	if len(table.Rows) == 0 {
		dp.Logger.Infof("Table %s has no rows", table.Name)
		return nil
	}

	var columnNames, placeholders []string
	for _, c := range table.Columns {
		columnNames = append(columnNames, dp.DB.QuoteIdentifier(c))
		placeholders = append(placeholders, "?")
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		dp.DB.QuoteIdentifier(table.Name),
		strings.Join(columnNames, ", "),
		strings.Join(placeholders, ", "),
	)

	var paramsList [][]interface{}
	for i, row := range table.Rows {
		paramsList = append(paramsList, rowParams(row, types))

		if len(paramsList) >= dp.BatchSize || i == len(table.Rows)-1 {
			if _, err := dp.DB.ExecuteMany(insertSQL, paramsList); err != nil {
				dp.Logger.Errorf("Error inserting data into table %s: %v", table.Name, err)
				return err
			}
			dp.InsertedRows[table.Name] += len(paramsList)
			paramsList = nil
		}
	}

	dp.Logger.Infof("Successfully populated table %s with %d records", table.Name, dp.InsertedRows[table.Name])
	return nil
}

func (dp *DatabasePopulator) createTable(table *models.Table, types []string) error {
	name := dp.DB.QuoteIdentifier(table.Name)
	if _, err := dp.DB.ExecuteStatement("DROP TABLE IF EXISTS " + name); err != nil {
		return err
	}

	defs := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		defs[i] = dp.DB.QuoteIdentifier(c) + " " + types[i]
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
	dp.Logger.Debugf("Creating table: %s", createSQL)
	_, err := dp.DB.ExecuteStatement(createSQL)
	return err
}

// ColumnTypes picks a SQL type per column. A column is DOUBLE or DATETIME
// only when every present cell has that kind.
func ColumnTypes(table *models.Table) []string {
	types := make([]string, len(table.Columns))
	for i := range table.Columns {
		kind := models.Missing
		mixed := false
		for _, row := range table.Rows {
			v := row[i]
			if v.IsMissing() {
				continue
			}
			if kind == models.Missing {
				kind = v.Kind
			} else if kind != v.Kind {
				mixed = true
				break
			}
		}

		switch {
		case mixed:
			types[i] = TypeText
		case kind == models.Number:
			types[i] = TypeDouble
		case kind == models.Time:
			types[i] = TypeDatetime
		default:
			types[i] = TypeText
		}
	}
	return types
}

func rowParams(row []models.Value, types []string) []interface{} {
	params := make([]interface{}, len(row))
	for i, v := range row {
		if v.IsMissing() {
			continue
		}
		if types[i] == TypeText {
			params[i] = v.String()
		} else {
			params[i] = v.Native()
		}
	}
	return params
}
