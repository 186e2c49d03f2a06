package domain

import (
	"github.com/shopspring/decimal"
)

// CategoryBreakdown represents one budget category's actual spend against its
// planned amount, with the contributing line items for drill-down display.
type CategoryBreakdown struct {
	CategoryID string          `json:"categoryID"`
	Category   string          `json:"category"`
	Planned    decimal.Decimal `json:"planned"`
	Actual     decimal.Decimal `json:"actual"`
	Items      []LineItem      `json:"items"`
}

// EventReport is the planned-vs-actual reconciliation for one funding event.
// Actual counts only line items whose parent request is approved or paid;
// pending and rejected bucket the remaining statuses separately.
type EventReport struct {
	EventID    string              `json:"eventID"`
	Name       string              `json:"name"`
	Date       *string             `json:"date,omitempty"`
	Planned    decimal.Decimal     `json:"planned"`
	Actual     decimal.Decimal     `json:"actual"`
	Pending    decimal.Decimal     `json:"pending"`
	Rejected   decimal.Decimal     `json:"rejected"`
	Income     decimal.Decimal     `json:"income"`
	Balance    decimal.Decimal     `json:"balance"` // income - actual
	Categories []CategoryBreakdown `json:"categories"`
	// Line items counting as spent whose category reference matches no known
	// budget category of the event.
	Unassigned []LineItem `json:"unassigned"`
}

// EventReportSummary carries the range totals shown alongside per-event reports.
type EventReportSummary struct {
	TotalPlanned decimal.Decimal `json:"totalPlanned"`
	TotalActual  decimal.Decimal `json:"totalActual"`
}
