package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingEvent is a named, optionally dated grouping of budgets and income
// against which reimbursement requests are reconciled.
type FundingEvent struct {
	EventID       string           `json:"eventID"` // Primary Key (e.g., UUID)
	Name          string           `json:"name"`
	Date          *time.Time       `json:"date,omitempty"` // Date only, no time component
	Budgets       []BudgetCategory `json:"budgets"`
	IncomeEntries []IncomeEntry    `json:"incomeEntries"`
	AuditFields
}

// TotalPlanned sums the planned amounts of all budget categories.
func (e *FundingEvent) TotalPlanned() decimal.Decimal {
	total := decimal.Zero
	for _, b := range e.Budgets {
		total = total.Add(b.PlannedAmount)
	}
	return total
}

// TotalIncome sums all income entries of the event.
func (e *FundingEvent) TotalIncome() decimal.Decimal {
	total := decimal.Zero
	for _, in := range e.IncomeEntries {
		total = total.Add(in.Amount)
	}
	return total
}

// BudgetCategory is one planned spending bucket within a funding event.
type BudgetCategory struct {
	CategoryID    string          `json:"categoryID"` // Primary Key (e.g., UUID)
	EventID       string          `json:"eventID"`    // FK -> funding_events
	Category      string          `json:"category"`   // Label, e.g. "Getränke"
	PlannedAmount decimal.Decimal `json:"plannedAmount"`
	AuditFields
}

// IncomeEntry records a donation or other income attributed to a funding event.
type IncomeEntry struct {
	IncomeID   string          `json:"incomeID"` // Primary Key (e.g., UUID)
	EventID    string          `json:"eventID"`  // FK -> funding_events
	Source     string          `json:"source"`
	Amount     decimal.Decimal `json:"amount"`
	ReceivedAt *time.Time      `json:"receivedAt,omitempty"`
	Comment    string          `json:"comment"`
	AuditFields
}
