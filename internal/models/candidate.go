package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods detected from statement descriptions.
const (
	PaymentMethodUPI   = "UPI"
	PaymentMethodPOS   = "POS"
	PaymentMethodATM   = "ATM"
	PaymentMethodNEFT  = "NEFT"
	PaymentMethodIMPS  = "IMPS"
	PaymentMethodCash  = "CASH"
	PaymentMethodOther = "OTHER"
)

// TransactionStatus is the settlement state a statement row reported.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
	StatusRefunded  TransactionStatus = "refunded"
)

// NormalizeStatus maps free-form statement status text onto the canonical
// four-value set. Statements rarely list anything but settled rows, so
// unrecognized or empty text counts as completed.
func NormalizeStatus(text string) TransactionStatus {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(lower, "refund"):
		return StatusRefunded
	case strings.Contains(lower, "cancel"):
		return StatusCancelled
	case strings.Contains(lower, "fail"),
		strings.Contains(lower, "decline"),
		strings.Contains(lower, "reject"):
		return StatusFailed
	default:
		return StatusCompleted
	}
}

// TransactionCandidate is a normalized statement row that has not been
// persisted yet. Amount carries sign: negative for expenses, positive for
// income. Date is always UTC.
type TransactionCandidate struct {
	Date          time.Time
	Amount        decimal.Decimal
	Currency      string
	Description   string
	Category      string
	MerchantName  string
	PaymentMethod string
	Status        TransactionStatus
	Dialect       StatementDialect
	RawData       JSONBMap
}

// Fingerprint derives the deduplication key: the first 19 characters of the
// ISO-8601 UTC date, the amount at two decimal places, and the lowercased
// description, joined by pipes. Two candidates with the same fingerprint are
// considered the same real-world transaction.
func (c *TransactionCandidate) Fingerprint() string {
	return c.Date.UTC().Format("2006-01-02T15:04:05") +
		"|" + c.Amount.StringFixed(2) +
		"|" + strings.ToLower(c.Description)
}

// IsExpense returns true when the candidate represents money leaving the
// account.
func (c *TransactionCandidate) IsExpense() bool {
	return c.Amount.IsNegative()
}
