package services

import (
	"context"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
)

// CashbookReaderSvc defines read operations for the cashbook ledger
type CashbookReaderSvc interface {
	// ListEntries retrieves a ledger page in chronological order with the
	// stored running balances. A limit of 0 returns the full ledger. The
	// returned token resumes after the last entry of the page; it is empty
	// when no further entries exist.
	ListEntries(ctx context.Context, requestingUserID string, limit int, nextToken string) ([]domain.CashbookEntry, string, error)
}

// CashbookWriterSvc defines write operations for the cashbook ledger; all
// require the manage capability.
type CashbookWriterSvc interface {
	// AppendExpense appends an expense entry, deriving balanceBefore from the
	// chronologically previous entry and storing both balances with the row.
	AppendExpense(ctx context.Context, req dto.CreateCashExpenseRequest, requestingUserID string) (*domain.CashbookEntry, error)

	// AppendIncome appends an income entry analogously.
	AppendIncome(ctx context.Context, req dto.CreateCashIncomeRequest, requestingUserID string) (*domain.CashbookEntry, error)

	// DeleteEntry removes an entry. Later stored balances are not recomputed.
	DeleteEntry(ctx context.Context, entryID string, requestingUserID string) error
}

// CashbookSvcFacade combines all cashbook service interfaces
type CashbookSvcFacade interface {
	CashbookReaderSvc
	CashbookWriterSvc
}
