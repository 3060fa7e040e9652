package dictionary

import "github.com/vitebski/csv-relational-normalizer/pkg/models"

// TableName is the name of the output table holding the dictionary
const TableName = "DataDictionary"

// Columns of the dictionary table
var Columns = []string{"Table", "PrimaryKey", "ForeignKeys", "Notes"}

// Build returns the fixed description of every normalized table. It does not
// look at the data.
func Build() []models.DictionaryEntry {
	return []models.DictionaryEntry{
		{Table: "Customers", PrimaryKey: "CustomerID", Notes: "Customer master data"},
		{Table: "Accounts", PrimaryKey: "AccountID", ForeignKeys: "CustomerID", Notes: "One or more accounts per customer"},
		{Table: "Transactions", PrimaryKey: "TransactionID (may be null)", ForeignKeys: "AccountID, BranchID", Notes: "Transaction records"},
		{Table: "Loans", PrimaryKey: "LoanID", ForeignKeys: "CustomerID, BranchID", Notes: "Loan records if present"},
		{Table: "Cards", PrimaryKey: "CardID", ForeignKeys: "CustomerID", Notes: "Credit card records"},
		{Table: "Feedback", PrimaryKey: "FeedbackID", ForeignKeys: "CustomerID", Notes: "Customer feedback"},
		{Table: "Branches", PrimaryKey: "BranchID", Notes: "Branch identifiers"},
		{Table: "Anomalies", PrimaryKey: "", ForeignKeys: "CustomerID", Notes: "Rows flagged as anomalies (if any)"},
	}
}

// Table renders Build as an output table. Entries without foreign keys get
// a missing cell rather than an empty string.
func Table() *models.Table {
	entries := Build()
	table := &models.Table{
		Name:    TableName,
		Columns: append([]string(nil), Columns...),
		Rows:    make([][]models.Value, 0, len(entries)),
	}
	for _, e := range entries {
		fks := models.MissingValue()
		if e.ForeignKeys != "" {
			fks = models.StringValue(e.ForeignKeys)
		}
		table.Rows = append(table.Rows, []models.Value{
			models.StringValue(e.Table),
			models.StringValue(e.PrimaryKey),
			fks,
			models.StringValue(e.Notes),
		})
	}
	return table
}
