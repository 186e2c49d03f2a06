package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashbookEntry is the database representation of one ledger row. The
// running balances are stored columns, not derived on read.
type CashbookEntry struct {
	EntryID        string          `db:"entry_id"`
	Direction      string          `db:"direction"`
	Amount         decimal.Decimal `db:"amount"`
	BookingDate    time.Time       `db:"booking_date"`
	Comment        string          `db:"comment"`
	RequestID      *string         `db:"request_id"`
	IncomeEntryID  *string         `db:"income_entry_id"`
	FundingEventID *string         `db:"funding_event_id"`
	BalanceBefore  decimal.Decimal `db:"balance_before"`
	BalanceAfter   decimal.Decimal `db:"balance_after"`
	AuditFields
}
