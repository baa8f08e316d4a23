package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Format(t *testing.T) {
	candidate := &TransactionCandidate{
		Date:        time.Date(2026, 2, 7, 9, 44, 13, 0, time.UTC),
		Amount:      decimal.NewFromFloat(-299),
		Description: "Google One",
	}

	assert.Equal(t, "2026-02-07T09:44:13|-299.00|google one", candidate.Fingerprint())
}

func TestFingerprint_NormalizesToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	local := &TransactionCandidate{
		Date:        time.Date(2026, 2, 7, 15, 14, 13, 0, ist),
		Amount:      decimal.NewFromInt(100),
		Description: "Salary",
	}
	utc := &TransactionCandidate{
		Date:        time.Date(2026, 2, 7, 9, 44, 13, 0, time.UTC),
		Amount:      decimal.NewFromInt(100),
		Description: "Salary",
	}

	assert.Equal(t, utc.Fingerprint(), local.Fingerprint())
}

func TestFingerprint_CaseInsensitiveDescription(t *testing.T) {
	base := TransactionCandidate{
		Date:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromFloat(-42.5),
		Description: "SWIGGY ORDER",
	}
	lower := base
	lower.Description = "swiggy order"

	assert.Equal(t, base.Fingerprint(), lower.Fingerprint())
}

func TestFingerprint_AmountScale(t *testing.T) {
	a := TransactionCandidate{Date: time.Now().UTC(), Amount: decimal.NewFromFloat(100), Description: "x"}
	b := a
	b.Amount = decimal.RequireFromString("100.00")

	// 100 and 100.00 are the same money, so the same fingerprint.
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestNormalizeStatus(t *testing.T) {
	testCases := []struct {
		text     string
		expected TransactionStatus
	}{
		{"Completed", StatusCompleted},
		{"SUCCESS", StatusCompleted},
		{"", StatusCompleted},
		{"Refund", StatusRefunded},
		{"Refunded", StatusRefunded},
		{"Cancelled", StatusCancelled},
		{"canceled", StatusCancelled},
		{"Failed", StatusFailed},
		{"Declined", StatusFailed},
		{"Rejected", StatusFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeStatus(tc.text))
		})
	}
}

func TestCandidateIsExpense(t *testing.T) {
	expense := TransactionCandidate{Amount: decimal.NewFromInt(-1)}
	income := TransactionCandidate{Amount: decimal.NewFromInt(1)}

	assert.True(t, expense.IsExpense())
	assert.False(t, income.IsExpense())
}
