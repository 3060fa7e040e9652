package resolver

import "strings"

// Logical column names expected somewhere in the wide input. Matching
// against the actual headers is case and whitespace insensitive.
const (
	CustomerID                     = "Customer ID"
	FirstName                      = "First Name"
	LastName                       = "Last Name"
	Age                            = "Age"
	Gender                         = "Gender"
	Address                        = "Address"
	City                           = "City"
	ContactNumber                  = "Contact Number"
	Email                          = "Email"
	AccountType                    = "Account Type"
	AccountBalance                 = "Account Balance"
	DateOfAccountOpening           = "Date Of Account Opening"
	LastTransactionDate            = "Last Transaction Date"
	TransactionID                  = "TransactionID"
	TransactionDate                = "Transaction Date"
	TransactionType                = "Transaction Type"
	TransactionAmount              = "Transaction Amount"
	AccountBalanceAfterTransaction = "Account Balance After Transaction"
	BranchID                       = "Branch ID"
	LoanID                         = "Loan ID"
	LoanAmount                     = "Loan Amount"
	LoanType                       = "Loan Type"
	InterestRate                   = "Interest Rate"
	LoanTerm                       = "Loan Term"
	ApprovalRejectionDate          = "Approval/Rejection Date"
	LoanStatus                     = "Loan Status"
	CardID                         = "CardID"
	CardType                       = "Card Type"
	CreditLimit                    = "Credit Limit"
	CreditCardBalance              = "Credit Card Balance"
	MinimumPaymentDue              = "Minimum Payment Due"
	PaymentDueDate                 = "Payment Due Date"
	LastCreditCardPaymentDate      = "Last Credit Card Payment Date"
	RewardsPoints                  = "Rewards Points"
	FeedbackID                     = "Feedback ID"
	FeedbackDate                   = "Feedback Date"
	FeedbackType                   = "Feedback Type"
	ResolutionStatus               = "Resolution Status"
	ResolutionDate                 = "Resolution Date"
	Anomaly                        = "Anomaly"
)

// Catalog lists every logical column in the order the wide layout
// traditionally carries them
var Catalog = []string{
	CustomerID, FirstName, LastName, Age, Gender, Address, City, ContactNumber, Email,
	AccountType, AccountBalance, DateOfAccountOpening, LastTransactionDate,
	TransactionID, TransactionDate, TransactionType, TransactionAmount, AccountBalanceAfterTransaction,
	BranchID,
	LoanID, LoanAmount, LoanType, InterestRate, LoanTerm, ApprovalRejectionDate, LoanStatus,
	CardID, CardType, CreditLimit, CreditCardBalance, MinimumPaymentDue, PaymentDueDate,
	LastCreditCardPaymentDate, RewardsPoints,
	FeedbackID, FeedbackDate, FeedbackType, ResolutionStatus, ResolutionDate,
	Anomaly,
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindColumn returns the position of the first header matching target after
// trimming and lower-casing both sides. When several headers match, the
// leftmost one always wins.
func FindColumn(headers []string, target string) (int, bool) {
	key := normalize(target)
	for i, h := range headers {
		if normalize(h) == key {
			return i, true
		}
	}
	return -1, false
}

// Column is a resolved logical column
type Column struct {
	Logical string
	Actual  string
	Index   int
}

// Binding maps logical columns to the headers of one loaded table
type Binding struct {
	columns map[string]Column
	missing []string
}

// Resolve matches the whole catalog against headers once
func Resolve(headers []string) *Binding {
	b := &Binding{columns: make(map[string]Column, len(Catalog))}
	for _, logical := range Catalog {
		idx, ok := FindColumn(headers, logical)
		if !ok {
			b.missing = append(b.missing, logical)
			continue
		}
		b.columns[logical] = Column{Logical: logical, Actual: headers[idx], Index: idx}
	}
	return b
}

// Lookup returns the resolved column for a logical name
func (b *Binding) Lookup(logical string) (Column, bool) {
	c, ok := b.columns[logical]
	return c, ok
}

// Has reports whether the logical column was found
func (b *Binding) Has(logical string) bool {
	_, ok := b.columns[logical]
	return ok
}

// Missing returns the logical columns not present in the input, in catalog order
func (b *Binding) Missing() []string {
	return b.missing
}
