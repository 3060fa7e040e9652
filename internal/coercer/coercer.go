package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/vitebski/csv-relational-normalizer/internal/resolver"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

// DateColumns are parsed into calendar values
var DateColumns = []string{
	resolver.DateOfAccountOpening,
	resolver.LastTransactionDate,
	resolver.TransactionDate,
	resolver.ApprovalRejectionDate,
	resolver.PaymentDueDate,
	resolver.LastCreditCardPaymentDate,
	resolver.FeedbackDate,
}

// NumericColumns are parsed into floats after stripping currency decoration
var NumericColumns = []string{
	resolver.AccountBalance,
	resolver.TransactionAmount,
	resolver.AccountBalanceAfterTransaction,
	resolver.LoanAmount,
	resolver.InterestRate,
	resolver.CreditLimit,
	resolver.CreditCardBalance,
	resolver.MinimumPaymentDue,
	resolver.RewardsPoints,
}

// Coerce rewrites the resolved date and numeric columns of frame in place.
// Unparseable cells become missing. Cells that are already typed are left
// untouched, so running it twice changes nothing.
func Coerce(frame *models.Frame, binding *resolver.Binding) {
	for _, logical := range DateColumns {
		if col, ok := binding.Lookup(logical); ok {
			apply(frame, col.Index, ParseDate)
		}
	}
	for _, logical := range NumericColumns {
		if col, ok := binding.Lookup(logical); ok {
			apply(frame, col.Index, ParseNumber)
		}
	}
}

func apply(frame *models.Frame, idx int, parse func(models.Value) models.Value) {
	for _, row := range frame.Rows {
		row[idx] = parse(row[idx])
	}
}

// fallbackDateLayouts are tried when the layout cannot be guessed
var fallbackDateLayouts = []string{"01-02-2006", "1-2-2006", "02-01-2006"}

// ParseDate converts a text cell into a time cell, guessing the layout.
// Ambiguous numeric dates are read month first and retried day first when
// the month would be out of range.
func ParseDate(v models.Value) models.Value {
	if v.Kind != models.String {
		return v
	}
	s := strings.TrimSpace(v.Str)
	if s == "" {
		return models.MissingValue()
	}
	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(true), dateparse.RetryAmbiguousDateWithSwap(true))
	if err == nil {
		return models.TimeValue(t)
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.TimeValue(t)
		}
	}
	return models.MissingValue()
}

// ParseNumber keeps only digits, '.', '-', 'e' and 'E' and parses the rest
// as a float
func ParseNumber(v models.Value) models.Value {
	if v.Kind != models.String {
		return v
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == 'e' || r == 'E' {
			return r
		}
		return -1
	}, v.Str)
	if cleaned == "" {
		return models.MissingValue()
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return models.MissingValue()
	}
	return models.NumberValue(f)
}
