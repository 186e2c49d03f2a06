package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashbookDirection indicates whether a cashbook entry moves money in or out.
type CashbookDirection string

const (
	CashbookIncome  CashbookDirection = "INCOME"
	CashbookExpense CashbookDirection = "EXPENSE"
)

// IsValid reports whether the direction is a known member of the enum.
func (d CashbookDirection) IsValid() bool {
	return d == CashbookIncome || d == CashbookExpense
}

// CashbookEntry is one ledger row recording an income or expense movement
// with its running balance. Balances are computed once on append and stored
// with the row; they are never recomputed on read.
type CashbookEntry struct {
	EntryID     string            `json:"entryID"` // Primary Key (e.g., UUID)
	Direction   CashbookDirection `json:"direction"`
	Amount      decimal.Decimal   `json:"amount"`
	BookingDate time.Time         `json:"bookingDate"` // Date only, no time component
	Comment     string            `json:"comment"`
	// An expense entry may be derived from a paid-out reimbursement request,
	// an income entry from a recorded donation. Both are optional.
	RequestID      *string               `json:"requestID,omitempty"`
	Request        *ReimbursementRequest `json:"request,omitempty"` // Populated on read paths
	IncomeEntryID  *string               `json:"incomeEntryID,omitempty"`
	FundingEventID *string               `json:"fundingEventID,omitempty"`
	BalanceBefore  decimal.Decimal       `json:"balanceBefore"`
	BalanceAfter   decimal.Decimal       `json:"balanceAfter"`
	AuditFields
}

// SignedAmount returns the amount with the sign implied by the direction.
func (e *CashbookEntry) SignedAmount() decimal.Decimal {
	if e.Direction == CashbookExpense {
		return e.Amount.Neg()
	}
	return e.Amount
}
