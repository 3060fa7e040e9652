package normalizer

import (
	"strconv"
	"strings"

	"github.com/vitebski/csv-relational-normalizer/internal/resolver"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

// Output table names in write order
const (
	Customers      = "Customers"
	Accounts       = "Accounts"
	Transactions   = "Transactions"
	Loans          = "Loans"
	Cards          = "Cards"
	Feedback       = "Feedback"
	Branches       = "Branches"
	Anomalies      = "Anomalies"
	DataDictionary = "DataDictionary"
)

// TableOrder is the fixed order in which tables are handed to a sink
var TableOrder = []string{
	Customers, Accounts, Transactions, Loans, Cards, Feedback, Branches, Anomalies, DataDictionary,
}

type dedupMode int

const (
	// dedupByKey drops later rows sharing the primary key, when the key
	// column made it into the projection
	dedupByKey dedupMode = iota
	// dedupRows drops later rows equal on every projected column
	dedupRows
)

// field is one projected column. Exactly one of logical and derived is set.
// An empty out keeps the header found in the input.
type field struct {
	logical string
	derived string
	out     string
}

type tableDef struct {
	name        string
	fields      []field
	primaryKey  string
	dedup       dedupMode
	foreignKeys []models.ForeignKey

	// requires names a logical column without which the table is emitted
	// empty with emptyColumns as its schema
	requires     string
	emptyColumns []string

	// dropMissing names an output column whose missing cells drop the row
	dropMissing string
}

func fk(table, column, refTable string) models.ForeignKey {
	return models.ForeignKey{Table: table, Column: column, ReferencedTable: refTable, ReferencedColumn: column}
}

var tableDefs = []tableDef{
	{
		name: Customers,
		fields: []field{
			{logical: resolver.CustomerID, out: "CustomerID"},
			{logical: resolver.FirstName},
			{logical: resolver.LastName},
			{logical: resolver.Age},
			{logical: resolver.Gender},
			{logical: resolver.Address},
			{logical: resolver.City},
			{logical: resolver.ContactNumber},
			{logical: resolver.Email},
		},
		primaryKey: "CustomerID",
	},
	{
		name: Accounts,
		fields: []field{
			{derived: AccountIDColumn, out: "AccountID"},
			{logical: resolver.CustomerID, out: "CustomerID"},
			{logical: resolver.AccountType, out: "AccountType"},
			{logical: resolver.AccountBalance, out: "AccountBalance"},
			{logical: resolver.DateOfAccountOpening, out: "DateOfAccountOpening"},
			{logical: resolver.LastTransactionDate, out: "LastTransactionDate"},
			{logical: resolver.BranchID, out: "BranchID"},
		},
		primaryKey:  "AccountID",
		foreignKeys: []models.ForeignKey{fk(Accounts, "CustomerID", Customers)},
	},
	{
		name: Transactions,
		fields: []field{
			{logical: resolver.TransactionID, out: "TransactionID"},
			{derived: AccountIDColumn, out: "AccountID"},
			{logical: resolver.TransactionDate, out: "TransactionDate"},
			{logical: resolver.TransactionType, out: "TransactionType"},
			{logical: resolver.TransactionAmount, out: "TransactionAmount"},
			{logical: resolver.AccountBalanceAfterTransaction, out: "AccountBalanceAfterTransaction"},
			{logical: resolver.BranchID, out: "BranchID"},
		},
		primaryKey: "TransactionID",
		foreignKeys: []models.ForeignKey{
			fk(Transactions, "AccountID", Accounts),
			fk(Transactions, "BranchID", Branches),
		},
	},
	{
		name: Loans,
		fields: []field{
			{logical: resolver.LoanID, out: "LoanID"},
			{logical: resolver.CustomerID, out: "CustomerID"},
			{logical: resolver.LoanAmount, out: "LoanAmount"},
			{logical: resolver.LoanType, out: "LoanType"},
			{logical: resolver.InterestRate, out: "InterestRate"},
			{logical: resolver.LoanTerm, out: "LoanTerm"},
			{logical: resolver.ApprovalRejectionDate, out: "ApprovalRejectionDate"},
			{logical: resolver.LoanStatus, out: "LoanStatus"},
			{logical: resolver.BranchID, out: "BranchID"},
		},
		primaryKey: "LoanID",
		foreignKeys: []models.ForeignKey{
			fk(Loans, "CustomerID", Customers),
			fk(Loans, "BranchID", Branches),
		},
	},
	{
		name: Cards,
		fields: []field{
			{logical: resolver.CardID, out: "CardID"},
			{logical: resolver.CustomerID, out: "CustomerID"},
			{logical: resolver.CardType, out: "CardType"},
			{logical: resolver.CreditLimit, out: "CreditLimit"},
			{logical: resolver.CreditCardBalance, out: "CreditCardBalance"},
			{logical: resolver.MinimumPaymentDue, out: "MinimumPaymentDue"},
			{logical: resolver.PaymentDueDate, out: "PaymentDueDate"},
			{logical: resolver.LastCreditCardPaymentDate, out: "LastCreditCardPaymentDate"},
			{logical: resolver.RewardsPoints, out: "RewardsPoints"},
		},
		primaryKey:  "CardID",
		foreignKeys: []models.ForeignKey{fk(Cards, "CustomerID", Customers)},
	},
	{
		name: Feedback,
		fields: []field{
			{logical: resolver.FeedbackID, out: "FeedbackID"},
			{logical: resolver.CustomerID, out: "CustomerID"},
			{logical: resolver.FeedbackDate, out: "FeedbackDate"},
			{logical: resolver.FeedbackType, out: "FeedbackType"},
			{logical: resolver.ResolutionStatus, out: "ResolutionStatus"},
			{logical: resolver.ResolutionDate, out: "ResolutionDate"},
		},
		primaryKey:  "FeedbackID",
		foreignKeys: []models.ForeignKey{fk(Feedback, "CustomerID", Customers)},
	},
	{
		name:         Branches,
		fields:       []field{{logical: resolver.BranchID, out: "BranchID"}},
		primaryKey:   "BranchID",
		dedup:        dedupRows,
		requires:     resolver.BranchID,
		emptyColumns: []string{"BranchID"},
	},
	{
		name: Anomalies,
		fields: []field{
			{logical: resolver.CustomerID, out: "CustomerID"},
			{logical: resolver.Anomaly, out: "Anomaly"},
		},
		dedup:        dedupRows,
		foreignKeys:  []models.ForeignKey{fk(Anomalies, "CustomerID", Customers)},
		requires:     resolver.Anomaly,
		emptyColumns: []string{"CustomerID", "Anomaly"},
		dropMissing:  "Anomaly",
	},
}

// split projects frame into one table per definition
func split(frame *models.Frame, binding *resolver.Binding) []*models.Table {
	tables := make([]*models.Table, 0, len(tableDefs))
	for _, def := range tableDefs {
		tables = append(tables, project(frame, binding, def))
	}
	return tables
}

func project(frame *models.Frame, binding *resolver.Binding, def tableDef) *models.Table {
	table := &models.Table{Name: def.name, Rows: [][]models.Value{}}

	if def.requires != "" && !binding.Has(def.requires) {
		table.Columns = append([]string(nil), def.emptyColumns...)
		table.ForeignKeys = presentForeignKeys(def.foreignKeys, table.Columns)
		return table
	}

	var indexes []int
	for _, f := range def.fields {
		idx, name := locate(frame, binding, f)
		if idx < 0 {
			continue
		}
		indexes = append(indexes, idx)
		table.Columns = append(table.Columns, name)
	}

	if def.primaryKey != "" && table.ColumnIndex(def.primaryKey) >= 0 {
		table.PrimaryKey = def.primaryKey
	}
	table.ForeignKeys = presentForeignKeys(def.foreignKeys, table.Columns)

	dropIdx := -1
	if def.dropMissing != "" {
		dropIdx = table.ColumnIndex(def.dropMissing)
	}

	keyIdx := -1
	if def.dedup == dedupByKey && table.PrimaryKey != "" {
		keyIdx = table.ColumnIndex(table.PrimaryKey)
	}

	seen := make(map[string]bool)
	for _, src := range frame.Rows {
		row := make([]models.Value, len(indexes))
		for i, idx := range indexes {
			row[i] = src[idx]
		}

		if dropIdx >= 0 && row[dropIdx].IsMissing() {
			continue
		}

		var key string
		switch {
		case def.dedup == dedupRows:
			key = rowKey(row)
		case keyIdx >= 0:
			key = row[keyIdx].Key()
		default:
			table.Rows = append(table.Rows, row)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		table.Rows = append(table.Rows, row)
	}

	return table
}

// locate returns the frame position and the output name of f, or -1 when
// the input does not carry it
func locate(frame *models.Frame, binding *resolver.Binding, f field) (int, string) {
	if f.derived != "" {
		return frame.Index(f.derived), f.out
	}
	col, ok := binding.Lookup(f.logical)
	if !ok {
		return -1, ""
	}
	if f.out == "" {
		return col.Index, col.Actual
	}
	return col.Index, f.out
}

func presentForeignKeys(fks []models.ForeignKey, columns []string) []models.ForeignKey {
	var out []models.ForeignKey
	for _, k := range fks {
		for _, c := range columns {
			if c == k.Column {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// rowKey length-prefixes every cell key so that no two distinct rows can
// produce the same key
func rowKey(row []models.Value) string {
	var b strings.Builder
	for _, v := range row {
		k := v.Key()
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}
