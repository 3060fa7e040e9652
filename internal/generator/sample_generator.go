package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/internal/resolver"
)

var (
	genders            = []string{"Male", "Female", "Other"}
	accountTypes       = []string{"Savings", "Current"}
	transactionTypes   = []string{"Deposit", "Withdrawal", "Transfer"}
	loanTypes          = []string{"Mortgage", "Auto", "Personal"}
	loanStatuses       = []string{"Approved", "Rejected", "Closed"}
	cardTypes          = []string{"Visa", "MasterCard", "AMEX"}
	feedbackTypes      = []string{"Complaint", "Praise", "Suggestion"}
	resolutionStatuses = []string{"Resolved", "Pending"}
	anomalyLabels      = []string{"Suspicious", "Flagged"}
	dateLayouts        = []string{"2006-01-02", "01/02/2006", "Jan 2, 2006"}
	missingTokens      = []string{"", "NA", "N/A"}
	sampleEpoch        = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
)

const (
	sampleWindowDays       = 9 * 365
	rowsPerCustomer        = 3
	maxAccountsPerCustomer = 2
)

type customer struct {
	id       string
	first    string
	last     string
	gender   string
	email    string
	address  string
	city     string
	phone    string
	age      int
	accounts []account
}

type account struct {
	kind   string
	opened time.Time
	branch string
}

// SampleGenerator produces wide banking rows in the layout the normalizer
// reads. Output mixes date layouts, decorated amounts and missing tokens,
// and repeats customers and accounts across rows.
type SampleGenerator struct {
	Faker  faker.Faker
	Rand   *rand.Rand
	Logger *logrus.Logger
}

// NewSampleGenerator creates a generator. The same seed gives the same rows.
func NewSampleGenerator(seed int64, logger *logrus.Logger) *SampleGenerator {
	return &SampleGenerator{
		Faker:  faker.NewWithSeed(rand.NewSource(seed)),
		Rand:   rand.New(rand.NewSource(seed)),
		Logger: logger,
	}
}

// Headers returns the header row, one per logical column
func (sg *SampleGenerator) Headers() []string {
	return append([]string(nil), resolver.Catalog...)
}

// Rows generates records rows aligned to Headers
func (sg *SampleGenerator) Rows(records int) [][]string {
	if records <= 0 {
		return nil
	}

	numCustomers := records/rowsPerCustomer + 1
	customers := make([]*customer, numCustomers)
	for i := range customers {
		customers[i] = sg.newCustomer(i + 1)
	}

	rows := make([][]string, 0, records)
	for i := 0; i < records; i++ {
		c := customers[sg.Rand.Intn(len(customers))]
		a := c.accounts[sg.Rand.Intn(len(c.accounts))]
		rows = append(rows, sg.row(i+1, c, a))
	}

	sg.Logger.Debugf("Generated %d sample rows for %d customers", len(rows), numCustomers)
	return rows
}

// WriteCSV writes the header and records rows to w
func (sg *SampleGenerator) WriteCSV(w io.Writer, records int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sg.Headers()); err != nil {
		return err
	}
	if err := cw.WriteAll(sg.Rows(records)); err != nil {
		return err
	}
	return cw.Error()
}

func (sg *SampleGenerator) newCustomer(n int) *customer {
	c := &customer{
		id:      strconv.Itoa(n),
		first:   sg.Faker.Person().FirstName(),
		last:    sg.Faker.Person().LastName(),
		gender:  sg.pick(genders),
		email:   sg.Faker.Internet().Email(),
		address: sg.Faker.Address().StreetAddress(),
		city:    sg.Faker.Address().City(),
		phone:   sg.Faker.Phone().Number(),
		age:     18 + sg.Rand.Intn(70),
	}
	count := 1 + sg.Rand.Intn(maxAccountsPerCustomer)
	for j := 0; j < count; j++ {
		c.accounts = append(c.accounts, account{
			kind:   sg.pick(accountTypes),
			opened: sg.date(),
			branch: fmt.Sprintf("%d", 1+sg.Rand.Intn(20)),
		})
	}
	return c
}

func (sg *SampleGenerator) row(n int, c *customer, a account) []string {
	values := map[string]string{
		resolver.CustomerID:                     c.id,
		resolver.FirstName:                      c.first,
		resolver.LastName:                       c.last,
		resolver.Age:                            strconv.Itoa(c.age),
		resolver.Gender:                         c.gender,
		resolver.Address:                        c.address,
		resolver.City:                           c.city,
		resolver.ContactNumber:                  c.phone,
		resolver.Email:                          c.email,
		resolver.AccountType:                    a.kind,
		resolver.AccountBalance:                 sg.amount(100000),
		resolver.DateOfAccountOpening:           a.opened.Format(sg.pick(dateLayouts)),
		resolver.LastTransactionDate:            sg.formatDate(sg.date()),
		resolver.TransactionID:                  strconv.Itoa(n),
		resolver.TransactionDate:                sg.formatDate(sg.date()),
		resolver.TransactionType:                sg.pick(transactionTypes),
		resolver.TransactionAmount:              sg.amount(5000),
		resolver.AccountBalanceAfterTransaction: sg.amount(100000),
		resolver.BranchID:                       a.branch,
		resolver.LoanID:                         strconv.Itoa(n),
		resolver.LoanAmount:                     sg.amount(500000),
		resolver.LoanType:                       sg.pick(loanTypes),
		resolver.InterestRate:                   fmt.Sprintf("%.2f%%", 1+sg.Rand.Float64()*9),
		resolver.LoanTerm:                       strconv.Itoa(12 * (1 + sg.Rand.Intn(30))),
		resolver.ApprovalRejectionDate:          sg.formatDate(sg.date()),
		resolver.LoanStatus:                     sg.pick(loanStatuses),
		resolver.CardID:                         strconv.Itoa(n),
		resolver.CardType:                       sg.pick(cardTypes),
		resolver.CreditLimit:                    sg.amount(20000),
		resolver.CreditCardBalance:              sg.amount(20000),
		resolver.MinimumPaymentDue:              sg.amount(500),
		resolver.PaymentDueDate:                 sg.formatDate(sg.date()),
		resolver.LastCreditCardPaymentDate:      sg.formatDate(sg.date()),
		resolver.RewardsPoints:                  strconv.Itoa(sg.Rand.Intn(10000)),
		resolver.FeedbackID:                     strconv.Itoa(n),
		resolver.FeedbackDate:                   sg.formatDate(sg.date()),
		resolver.FeedbackType:                   sg.pick(feedbackTypes),
		resolver.ResolutionStatus:               sg.pick(resolutionStatuses),
		resolver.ResolutionDate:                 sg.date().Format("2006-01-02"),
		resolver.Anomaly:                        sg.anomaly(),
	}

	row := make([]string, len(resolver.Catalog))
	for i, logical := range resolver.Catalog {
		row[i] = values[logical]
	}
	return row
}

func (sg *SampleGenerator) pick(options []string) string {
	return options[sg.Rand.Intn(len(options))]
}

func (sg *SampleGenerator) date() time.Time {
	return sampleEpoch.AddDate(0, 0, sg.Rand.Intn(sampleWindowDays))
}

func (sg *SampleGenerator) formatDate(t time.Time) string {
	// roughly one in twenty dates is left out
	if sg.Rand.Intn(20) == 0 {
		return sg.pick(missingTokens)
	}
	return t.Format(sg.pick(dateLayouts))
}

// amount renders a currency value, sometimes with a symbol and thousands
// separators
func (sg *SampleGenerator) amount(limit int) string {
	cents := sg.Rand.Intn(limit * 100)
	whole, frac := cents/100, cents%100
	if sg.Rand.Intn(2) == 0 {
		return fmt.Sprintf("%d.%02d", whole, frac)
	}
	return fmt.Sprintf("$%s.%02d", groupThousands(whole), frac)
}

func (sg *SampleGenerator) anomaly() string {
	if sg.Rand.Intn(10) == 0 {
		return sg.pick(anomalyLabels)
	}
	return sg.pick(missingTokens)
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
