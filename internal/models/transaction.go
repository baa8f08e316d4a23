package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrMissingOwner       = errors.New("transaction owner is required")
	ErrMissingFingerprint = errors.New("transaction fingerprint is required")
	ErrMissingDescription = errors.New("transaction description is required")
	ErrZeroDate           = errors.New("transaction date is required")
)

// Transaction is a persisted statement row. Amount keeps its sign: negative
// for expenses, positive for income.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_owner_occurred" json:"owner_id"`
	Fingerprint   string          `gorm:"type:varchar(512);not null;index:idx_owner_fingerprint" json:"fingerprint"`
	OccurredAt    time.Time       `gorm:"not null;index:idx_owner_occurred,sort:desc" json:"occurred_at"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3)" json:"currency,omitempty"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Category      string          `gorm:"type:varchar(50)" json:"category,omitempty"`
	MerchantName  string          `gorm:"type:varchar(255)" json:"merchant_name,omitempty"`
	PaymentMethod string          `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	Status        string          `gorm:"type:varchar(20)" json:"status,omitempty"`
	SourceDialect string          `gorm:"type:varchar(20)" json:"source_dialect,omitempty"`
	ImportJobID   *uuid.UUID      `gorm:"type:uuid;index" json:"import_job_id,omitempty"`
	RawData       JSONBMap        `gorm:"type:jsonb" json:"raw_data,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrMissingOwner
	}
	if t.Fingerprint == "" {
		return ErrMissingFingerprint
	}
	if t.Description == "" {
		return ErrMissingDescription
	}
	if t.OccurredAt.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// IsExpense returns true when the amount is negative.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// FromCandidate builds a persistable record from a normalized candidate.
func FromCandidate(c *TransactionCandidate, ownerID uuid.UUID, jobID *uuid.UUID) *Transaction {
	return &Transaction{
		OwnerID:       ownerID,
		Fingerprint:   c.Fingerprint(),
		OccurredAt:    c.Date.UTC(),
		Amount:        c.Amount,
		Currency:      c.Currency,
		Description:   c.Description,
		Category:      c.Category,
		MerchantName:  c.MerchantName,
		PaymentMethod: c.PaymentMethod,
		Status:        string(c.Status),
		SourceDialect: string(c.Dialect),
		ImportJobID:   jobID,
		RawData:       c.RawData,
	}
}
