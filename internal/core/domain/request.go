package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus indicates the decision state of a reimbursement request.
type RequestStatus string

const (
	StatusPendingDecision RequestStatus = "PENDING_DECISION"
	StatusApproved        RequestStatus = "APPROVED"
	StatusRejected        RequestStatus = "REJECTED"
	StatusPaid            RequestStatus = "PAID"
)

// IsValid reports whether the status is a known member of the enum.
// No transition graph is enforced beyond enum membership: any status may
// follow any other, the same way the decision workflow always behaved.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPendingDecision, StatusApproved, StatusRejected, StatusPaid:
		return true
	}
	return false
}

// CountsAsSpent reports whether line items of a request in this status
// contribute to a funding event's actual spend.
func (s RequestStatus) CountsAsSpent() bool {
	return s == StatusApproved || s == StatusPaid
}

// LineItem is one itemized expense within a reimbursement request.
type LineItem struct {
	ItemID           string          `json:"itemID"`        // Primary Key (e.g., UUID)
	RequestID        string          `json:"requestID"`     // FK -> reimbursement_requests
	PositionLabel    string          `json:"positionLabel"` // e.g. receipt position number
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	ReceiptURL       *string         `json:"receiptURL,omitempty"`       // URL reference after external upload
	BudgetCategoryID *string         `json:"budgetCategoryID,omitempty"` // FK -> budget_categories, nullable
	FundingEventID   *string         `json:"fundingEventID,omitempty"`   // FK -> funding_events, nullable
	AuditFields
}

// ReimbursementRequest is a member's request to be paid back for itemized expenses.
type ReimbursementRequest struct {
	RequestID     string        `json:"requestID"` // Primary Key (e.g., UUID)
	ApplicantID   string        `json:"applicantID"`
	Applicant     *User         `json:"applicant,omitempty"` // Populated on read paths
	IBAN          string        `json:"iban"`
	AccountHolder string        `json:"accountHolder"`
	Comment       string        `json:"comment"`
	Status        RequestStatus `json:"status"`
	SubmittedAt   time.Time     `json:"submittedAt"`
	Items         []LineItem    `json:"items"`
	AuditFields
}

// TotalAmount sums the request's line item amounts. Sums are kept at full
// precision; rounding to two decimals happens only when formatting responses.
func (r *ReimbursementRequest) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// ApplicantName returns the applicant's display name, or empty when the
// applicant is not loaded.
func (r *ReimbursementRequest) ApplicantName() string {
	if r.Applicant == nil {
		return ""
	}
	return r.Applicant.Name()
}
