package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingEvent is the database representation of a funding event.
type FundingEvent struct {
	EventID string     `db:"event_id"`
	Name    string     `db:"name"`
	Date    *time.Time `db:"event_date"`
	AuditFields
}

// BudgetCategory is the database representation of a planned budget bucket.
type BudgetCategory struct {
	CategoryID    string          `db:"category_id"`
	EventID       string          `db:"event_id"`
	Category      string          `db:"category"`
	PlannedAmount decimal.Decimal `db:"planned_amount"`
	AuditFields
}

// IncomeEntry is the database representation of a recorded income.
type IncomeEntry struct {
	IncomeID   string          `db:"income_id"`
	EventID    string          `db:"event_id"`
	Source     string          `db:"source"`
	Amount     decimal.Decimal `db:"amount"`
	ReceivedAt *time.Time      `db:"received_at"`
	Comment    string          `db:"comment"`
	AuditFields
}
