package dictionary

import "testing"

func TestBuild(t *testing.T) {
	entries := Build()
	if len(entries) != 8 {
		t.Fatalf("Expected 8 dictionary entries, got %d", len(entries))
	}

	want := []string{"Customers", "Accounts", "Transactions", "Loans", "Cards", "Feedback", "Branches", "Anomalies"}
	for i, name := range want {
		if entries[i].Table != name {
			t.Errorf("Entry %d: expected table %s, got %s", i, name, entries[i].Table)
		}
	}

	if entries[2].ForeignKeys != "AccountID, BranchID" {
		t.Errorf("Unexpected Transactions foreign keys: %q", entries[2].ForeignKeys)
	}
	if entries[7].PrimaryKey != "" {
		t.Errorf("Expected Anomalies to have no primary key, got %q", entries[7].PrimaryKey)
	}
}

func TestTable(t *testing.T) {
	table := Table()
	if table.Name != TableName {
		t.Errorf("Expected table name %s, got %s", TableName, table.Name)
	}
	if len(table.Rows) != 8 {
		t.Fatalf("Expected 8 rows, got %d", len(table.Rows))
	}
	if len(table.Columns) != 4 {
		t.Errorf("Expected 4 columns, got %v", table.Columns)
	}

	fkIdx := table.ColumnIndex("ForeignKeys")
	if !table.Rows[0][fkIdx].IsMissing() {
		t.Errorf("Expected Customers foreign keys to be missing, got %v", table.Rows[0][fkIdx])
	}
	if got := table.Rows[1][fkIdx].String(); got != "CustomerID" {
		t.Errorf("Expected Accounts foreign keys CustomerID, got %q", got)
	}

	// Build returns fresh slices each call
	table.Rows[0][0].Str = "changed"
	if Table().Rows[0][0].Str != "Customers" {
		t.Error("Expected Table to be independent across calls")
	}
}
