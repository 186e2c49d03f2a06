package dto

import (
	"time"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/utils"
	"github.com/shopspring/decimal"
)

// CreateCashExpenseRequest records an outgoing cash movement, either manual
// or derived from an approved reimbursement request.
type CreateCashExpenseRequest struct {
	Amount         string  `json:"amount" binding:"required,amount"`
	BookingDate    string  `json:"bookingDate" binding:"required,datetime=2006-01-02"`
	Comment        string  `json:"comment" binding:"required,max=255"`
	RequestID      *string `json:"requestID" binding:"omitempty,uuid"`
	FundingEventID *string `json:"fundingEventID" binding:"omitempty,uuid"`
}

// CreateCashIncomeRequest records an incoming cash movement derived from a
// recorded income entry.
type CreateCashIncomeRequest struct {
	Amount         string  `json:"amount" binding:"required,amount"`
	BookingDate    string  `json:"bookingDate" binding:"required,datetime=2006-01-02"`
	Comment        string  `json:"comment" binding:"required,max=255"`
	IncomeEntryID  string  `json:"incomeEntryID" binding:"required,uuid"`
	FundingEventID *string `json:"fundingEventID" binding:"omitempty,uuid"`
}

// CashbookEntryResponse defines the data returned for one ledger row.
type CashbookEntryResponse struct {
	EntryID        string                   `json:"entryID"`
	Direction      domain.CashbookDirection `json:"direction"`
	Amount         decimal.Decimal          `json:"amount"`
	BookingDate    string                   `json:"bookingDate"`
	Comment        string                   `json:"comment"`
	RequestID      *string                  `json:"requestID,omitempty"`
	IncomeEntryID  *string                  `json:"incomeEntryID,omitempty"`
	FundingEventID *string                  `json:"fundingEventID,omitempty"`
	// Running balances formatted for display with two decimals.
	BalanceBefore string    `json:"balanceBefore"`
	BalanceAfter  string    `json:"balanceAfter"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ListCashbookResponse wraps one ordered ledger page. NextToken is empty on
// the last page.
type ListCashbookResponse struct {
	Entries   []CashbookEntryResponse `json:"entries"`
	NextToken string                  `json:"nextToken,omitempty"`
}

// ToCashbookEntryResponse converts a domain.CashbookEntry to its DTO.
func ToCashbookEntryResponse(e *domain.CashbookEntry) CashbookEntryResponse {
	return CashbookEntryResponse{
		EntryID:        e.EntryID,
		Direction:      e.Direction,
		Amount:         e.Amount,
		BookingDate:    e.BookingDate.Format("2006-01-02"),
		Comment:        e.Comment,
		RequestID:      e.RequestID,
		IncomeEntryID:  e.IncomeEntryID,
		FundingEventID: e.FundingEventID,
		BalanceBefore:  utils.FormatAmount(e.BalanceBefore),
		BalanceAfter:   utils.FormatAmount(e.BalanceAfter),
		CreatedAt:      e.CreatedAt,
	}
}

// ToListCashbookResponse converts a page of domain entries to the list DTO.
func ToListCashbookResponse(entries []domain.CashbookEntry, nextToken string) ListCashbookResponse {
	out := make([]CashbookEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToCashbookEntryResponse(&e)
	}
	return ListCashbookResponse{Entries: out, NextToken: nextToken}
}
