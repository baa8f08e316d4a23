package handlers

import (
	"fmt"
	"net/http"
	"time"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/errors"
	"statement-ingest/internal/repositories"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
	cacheTTL         = 5 * time.Minute
)

// TransactionHandler handles transaction history HTTP requests
type TransactionHandler struct {
	transactionRepo repositories.TransactionRepositoryInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionRepo repositories.TransactionRepositoryInterface) *TransactionHandler {
	return &TransactionHandler{
		transactionRepo: transactionRepo,
	}
}

// ListTransactions retrieves one page of the authenticated user's history,
// ordered newest first
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	offset := getIntParam(c, "offset", 0)
	limit := getIntParam(c, "limit", defaultPageLimit)
	if offset < 0 || limit < 1 {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("offset must be >= 0 and limit >= 1"))
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	ctx := c.Request().Context()

	transactions, err := h.transactionRepo.ListPage(ctx, userID, offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	total, err := h.transactionRepo.CountByOwner(ctx, userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	responses := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, dto.FromTransaction(&transactions[i]))
	}

	response := dto.ListTransactionsResponse{
		Transactions: responses,
		Pagination: dto.PaginationInfo{
			HasMore: int64(offset+len(transactions)) < total,
			Offset:  offset,
			Limit:   limit,
			Total:   total,
		},
	}

	c.Response().Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(cacheTTL.Seconds())))

	return c.JSON(http.StatusOK, response)
}
