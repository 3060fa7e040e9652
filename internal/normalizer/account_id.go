package normalizer

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/vitebski/csv-relational-normalizer/internal/resolver"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
)

const (
	// AccountIDColumn is the derived column appended to the wide frame
	AccountIDColumn = "AccountID"

	accountIDPrefix    = "ACC_"
	accountIDHexLength = 12
	accountIDSeparator = "|"
)

// MakeAccountID derives a stable account identifier from the customer, the
// account type and the opening date as text. Empty parts are allowed.
func MakeAccountID(customerID, accountType, openDate string) string {
	base := strings.Join([]string{customerID, accountType, openDate}, accountIDSeparator)
	sum := sha1.Sum([]byte(base))
	return accountIDPrefix + hex.EncodeToString(sum[:])[:accountIDHexLength]
}

// DeriveAccountIDs fills the AccountID column of frame, adding it when the
// input does not carry one. Each row is handled on its own.
func DeriveAccountIDs(frame *models.Frame, binding *resolver.Binding) error {
	cust, ok := binding.Lookup(resolver.CustomerID)
	if !ok {
		return &MissingColumnError{Column: resolver.CustomerID}
	}
	acctType, hasType := binding.Lookup(resolver.AccountType)
	openDate, hasDate := binding.Lookup(resolver.DateOfAccountOpening)

	idx := frame.Index(AccountIDColumn)
	if idx < 0 {
		frame.Headers = append(frame.Headers, AccountIDColumn)
		idx = len(frame.Headers) - 1
		for i, row := range frame.Rows {
			frame.Rows[i] = append(row, models.MissingValue())
		}
	}

	for _, row := range frame.Rows {
		var typ, opened string
		if hasType {
			typ = row[acctType.Index].String()
		}
		if hasDate {
			opened = row[openDate.Index].String()
		}
		row[idx] = models.StringValue(MakeAccountID(row[cust.Index].String(), typ, opened))
	}
	return nil
}
