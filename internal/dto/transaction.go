package dto

import (
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
)

// PaginationParams contains pagination parameters
type PaginationParams struct {
	Offset int `query:"offset"`
	Limit  int `query:"limit"`
}

// TransactionResponse represents one persisted transaction
type TransactionResponse struct {
	ID            uuid.UUID `json:"id"`
	OccurredAt    time.Time `json:"occurredAt"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency,omitempty"`
	Description   string    `json:"description"`
	Category      string    `json:"category,omitempty"`
	MerchantName  string    `json:"merchantName,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Status        string    `json:"status,omitempty"`
	SourceDialect string    `json:"sourceDialect,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	HasMore bool  `json:"hasMore"`
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total,omitempty"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// FromTransaction converts a persisted row to its response shape
func FromTransaction(txn *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            txn.ID,
		OccurredAt:    txn.OccurredAt,
		Amount:        txn.Amount.StringFixed(2),
		Currency:      txn.Currency,
		Description:   txn.Description,
		Category:      txn.Category,
		MerchantName:  txn.MerchantName,
		PaymentMethod: txn.PaymentMethod,
		Status:        txn.Status,
		SourceDialect: txn.SourceDialect,
		CreatedAt:     txn.CreatedAt,
	}
}
