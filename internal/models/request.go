package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReimbursementRequest is the database representation of a request header.
type ReimbursementRequest struct {
	RequestID     string    `db:"request_id"`
	ApplicantID   string    `db:"applicant_id"`
	IBAN          string    `db:"iban"`
	AccountHolder string    `db:"account_holder"`
	Comment       string    `db:"comment"`
	Status        string    `db:"status"`
	SubmittedAt   time.Time `db:"submitted_at"`
	AuditFields
}

// LineItem is the database representation of one itemized expense.
type LineItem struct {
	ItemID           string          `db:"item_id"`
	RequestID        string          `db:"request_id"`
	PositionLabel    string          `db:"position_label"`
	Description      string          `db:"description"`
	Amount           decimal.Decimal `db:"amount"`
	ReceiptURL       *string         `db:"receipt_url"`
	BudgetCategoryID *string         `db:"budget_category_id"`
	FundingEventID   *string         `db:"funding_event_id"`
	AuditFields
}
