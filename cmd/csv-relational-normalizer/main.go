package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/csv-relational-normalizer/internal/analyzer"
	"github.com/vitebski/csv-relational-normalizer/internal/connector"
	"github.com/vitebski/csv-relational-normalizer/internal/generator"
	"github.com/vitebski/csv-relational-normalizer/internal/normalizer"
	"github.com/vitebski/csv-relational-normalizer/internal/reader"
	"github.com/vitebski/csv-relational-normalizer/internal/sink"
	"github.com/vitebski/csv-relational-normalizer/internal/utils"
)

const (
	defaultInput  = "Comprehensive_Banking_Database.csv"
	defaultOutput = "Comprehensive_Banking_Database"
)

// Process exit codes
const (
	exitOK = iota
	exitInputMissing
	exitReadFailure
	exitTransformFailure
	exitWriteFailure
)

// Sink kinds accepted by --sink
const (
	sinkXLSX   = "xlsx"
	sinkMySQL  = "mysql"
	sinkSQLite = "sqlite"
)

type options struct {
	sink        string
	envFile     string
	logLevel    string
	analyzeOnly bool
	verify      bool
	batchSize   int
	host        string
	user        string
	password    string
	database    string
	port        string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	var opts options
	code := exitOK

	rootCmd := &cobra.Command{
		Use:   "csv-relational-normalizer [input.csv] [output]",
		Short: "Normalize a wide banking CSV into relational tables",
		Long: `CSV Relational Normalizer

Reads one denormalized CSV mixing customer, account, transaction, loan,
card, feedback, branch and anomaly columns and writes normalized tables
(Customers, Accounts, Transactions, Loans, Cards, Feedback, Branches,
Anomalies and a DataDictionary) to an Excel workbook or a SQL database.`,
		Args: cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			code = runNormalize(opts, args, stdout, stderr)
		},
	}

	rootCmd.Flags().StringVarP(&opts.sink, "sink", "s", "", "Output kind: xlsx, mysql or sqlite (default: xlsx)")
	rootCmd.PersistentFlags().StringVarP(&opts.envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&opts.analyzeOnly, "analyze-only", "a", false, "Only print the table relationship report without writing output")
	rootCmd.Flags().BoolVarP(&opts.verify, "verify", "v", false, "Verify database row counts after writing")
	rootCmd.Flags().IntVarP(&opts.batchSize, "batch-size", "b", 0, "Rows per insert transaction for database sinks (default: 100)")
	rootCmd.Flags().StringVarP(&opts.host, "host", "H", "", "MySQL host (default: localhost)")
	rootCmd.Flags().StringVarP(&opts.user, "user", "u", "", "MySQL user (default: root)")
	rootCmd.Flags().StringVarP(&opts.password, "password", "p", "", "MySQL password")
	rootCmd.Flags().StringVarP(&opts.database, "database", "d", "", "MySQL database name")
	rootCmd.Flags().StringVarP(&opts.port, "port", "P", "", "MySQL port (default: 3306)")

	rootCmd.AddCommand(newSampleCommand(&opts, stdout, stderr, &code))

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		return exitInputMissing
	}
	return code
}

func runNormalize(opts options, args []string, stdout, stderr io.Writer) int {
	logger := utils.SetupLogging(opts.logLevel)
	utils.LoadEnvironmentVariables(opts.envFile, logger)

	if opts.sink == "" {
		opts.sink = utils.GetEnvOrDefault("NORMALIZER_SINK", sinkXLSX)
	}
	if opts.batchSize == 0 {
		opts.batchSize = utils.GetEnvInt("NORMALIZER_BATCH_SIZE", 0)
	}

	input := defaultInput
	if len(args) > 0 {
		input = args[0]
	}
	output := ""
	if len(args) > 1 {
		output = args[1]
	}

	if _, err := os.Stat(input); err != nil {
		fmt.Fprintf(stderr, "Input file '%s' not found. Please place '%s' in the current directory or provide a path.\n", input, defaultInput)
		return exitInputMissing
	}

	out, err := newSink(opts, output, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid output configuration: %v\n", err)
		return exitWriteFailure
	}

	logger.Infof("Reading %s", input)
	frame, err := reader.ReadCSV(input)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read CSV '%s': %v\n", input, err)
		return exitReadFailure
	}

	result, err := normalizer.NewNormalizer(logger).Normalize(frame)
	if err != nil {
		var mce *normalizer.MissingColumnError
		if errors.As(err, &mce) {
			logger.Debugf("Input headers: %v", frame.Headers)
		}
		fmt.Fprintf(stderr, "Failed while building relational tables: %v\n", err)
		return exitTransformFailure
	}

	if opts.analyzeOnly {
		ra := analyzer.NewRelationshipAnalyzer(logger)
		ra.Analyze(result)
		utils.PrintRelationshipAnalysis(stdout, ra)
		logger.Info("Analyze-only mode, exiting without writing output")
		return exitOK
	}

	if _, ok := out.(*sink.DatabaseSink); opts.verify && !ok {
		logger.Warnf("--verify has no effect on the %s sink", opts.sink)
		fmt.Fprintf(stderr, "Ignoring --verify: row counts can only be verified for database sinks, not %s output\n", out.Kind())
	}

	logger.Infof("Writing %d tables to %s", len(result.Tables), out.Target())
	if err := out.Write(result); err != nil {
		fmt.Fprintf(stderr, "Failed while writing %s '%s': %v\n", out.Kind(), out.Target(), err)
		return exitWriteFailure
	}

	if dbSink, ok := out.(*sink.DatabaseSink); ok && opts.verify {
		if err := dbSink.DB.Connect(); err != nil {
			fmt.Fprintf(stderr, "Failed to reconnect for verification: %v\n", err)
			return exitWriteFailure
		}
		defer dbSink.DB.Disconnect()

		counts := result.RowCounts()
		verified, unreadable, mismatched := utils.VerifyTablePopulation(dbSink.DB, counts, logger)
		utils.PrintVerificationResults(stdout, unreadable, mismatched, counts)
		if !verified {
			return exitWriteFailure
		}
	}

	utils.PrintSummary(stdout, out.Kind(), out.Target(), result.RowCounts())
	return exitOK
}

func newSink(opts options, output string, logger *logrus.Logger) (sink.Sink, error) {
	switch opts.sink {
	case sinkXLSX:
		if output == "" {
			output = defaultOutput + ".xlsx"
		}
		return sink.NewXLSXSink(output, logger), nil
	case sinkSQLite:
		if output == "" {
			output = defaultOutput + ".db"
		}
		return sink.NewDatabaseSink(connector.NewSQLiteConnector(output, logger), opts.batchSize, logger), nil
	case sinkMySQL:
		database := opts.database
		if database == "" {
			database = output
		}
		db := connector.NewDatabaseConnector(opts.host, opts.user, opts.password, database, opts.port, logger)
		if !utils.ValidateConnectionParams(db.Host, db.User, db.Password, db.Database, db.Port, logger) {
			return nil, fmt.Errorf("incomplete MySQL connection parameters")
		}
		return sink.NewDatabaseSink(db, opts.batchSize, logger), nil
	}
	return nil, fmt.Errorf("unknown sink %q (expected %s, %s or %s)", opts.sink, sinkXLSX, sinkMySQL, sinkSQLite)
}

func newSampleCommand(opts *options, stdout, stderr io.Writer, code *int) *cobra.Command {
	var (
		output  string
		records int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic wide banking CSV",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(opts.logLevel)

			f, err := os.Create(output)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to create '%s': %v\n", output, err)
				*code = exitWriteFailure
				return
			}
			defer f.Close()

			sg := generator.NewSampleGenerator(seed, logger)
			if err := sg.WriteCSV(f, records); err != nil {
				fmt.Fprintf(stderr, "Failed to write '%s': %v\n", output, err)
				*code = exitWriteFailure
				return
			}
			fmt.Fprintf(stdout, "Wrote %d sample rows to %s\n", records, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultInput, "Path of the CSV to write")
	cmd.Flags().IntVarP(&records, "records", "r", 100, "Number of rows to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	return cmd
}
