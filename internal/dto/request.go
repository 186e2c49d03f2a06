package dto

import (
	"time"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/utils"
	"github.com/shopspring/decimal"
)

// CreateLineItemRequest defines one itemized expense in a submission.
// Amounts arrive as decimal strings the way browser forms send them;
// both "12.34" and "12,34" are accepted.
type CreateLineItemRequest struct {
	PositionLabel    string  `json:"positionLabel" binding:"required"`
	Description      string  `json:"description" binding:"required"`
	Amount           string  `json:"amount" binding:"required,amount"`
	ReceiptURL       *string `json:"receiptURL" binding:"omitempty,url"`
	BudgetCategoryID *string `json:"budgetCategoryID" binding:"omitempty,uuid"`
	FundingEventID   *string `json:"fundingEventID" binding:"omitempty,uuid"`
}

// CreateRequestRequest defines the data needed to submit a reimbursement request.
type CreateRequestRequest struct {
	IBAN          string `json:"iban" binding:"required,iban"`
	AccountHolder string `json:"accountHolder" binding:"required,max=100"`
	Comment       string `json:"comment"`
	// ApplicantID may only be set by admins submitting on behalf of a member.
	ApplicantID *string                 `json:"applicantID" binding:"omitempty,uuid"`
	Items       []CreateLineItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateRequestStatusRequest carries the new decision status for a request.
type UpdateRequestStatusRequest struct {
	Status domain.RequestStatus `json:"status" binding:"required,oneof=PENDING_DECISION APPROVED REJECTED PAID"`
}

// ListRequestsParams defines the filter query parameters for listing requests.
type ListRequestsParams struct {
	ApplicantName string   `form:"applicantName"`
	Comment       string   `form:"comment"`
	MinAmount     string   `form:"minAmount"`
	MaxAmount     string   `form:"maxAmount"`
	Status        string   `form:"status"`
	SubmittedFrom string   `form:"submittedFrom" binding:"omitempty,datetime=2006-01-02"`
	SubmittedTo   string   `form:"submittedTo" binding:"omitempty,datetime=2006-01-02"`
	EventNames    []string `form:"eventName"`
}

// ToRequestFilter converts the query parameters into filter criteria.
// Amount bounds that do not parse impose no constraint.
func (p ListRequestsParams) ToRequestFilter() domain.RequestFilter {
	f := domain.RequestFilter{
		ApplicantName:     p.ApplicantName,
		Comment:           p.Comment,
		Status:            domain.RequestStatus(p.Status),
		FundingEventNames: p.EventNames,
	}
	if d, ok := utils.ParseAmount(p.MinAmount); ok {
		f.MinAmount = &d
	}
	if d, ok := utils.ParseAmount(p.MaxAmount); ok {
		f.MaxAmount = &d
	}
	if t, err := time.Parse("2006-01-02", p.SubmittedFrom); err == nil {
		f.SubmittedFrom = &t
	}
	if t, err := time.Parse("2006-01-02", p.SubmittedTo); err == nil {
		// Inclusive upper bound on a date covers the whole day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.SubmittedTo = &end
	}
	return f
}

// LineItemResponse defines the data returned for a line item.
type LineItemResponse struct {
	ItemID           string          `json:"itemID"`
	PositionLabel    string          `json:"positionLabel"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	ReceiptURL       *string         `json:"receiptURL,omitempty"`
	BudgetCategoryID *string         `json:"budgetCategoryID,omitempty"`
	FundingEventID   *string         `json:"fundingEventID,omitempty"`
}

// RequestResponse defines the data returned for a reimbursement request.
type RequestResponse struct {
	RequestID     string               `json:"requestID"`
	Applicant     UserResponse         `json:"applicant"`
	IBAN          string               `json:"iban"`
	AccountHolder string               `json:"accountHolder"`
	Comment       string               `json:"comment"`
	Status        domain.RequestStatus `json:"status"`
	SubmittedAt   time.Time            `json:"submittedAt"`
	Items         []LineItemResponse   `json:"items"`
	// Total is the display total, rounded to two decimals.
	Total string `json:"total"`
}

// ListRequestsResponse wraps a list of requests.
type ListRequestsResponse struct {
	Requests []RequestResponse `json:"requests"`
}

// ToLineItemResponse converts a domain.LineItem to LineItemResponse DTO.
func ToLineItemResponse(item *domain.LineItem) LineItemResponse {
	return LineItemResponse{
		ItemID:           item.ItemID,
		PositionLabel:    item.PositionLabel,
		Description:      item.Description,
		Amount:           item.Amount,
		ReceiptURL:       item.ReceiptURL,
		BudgetCategoryID: item.BudgetCategoryID,
		FundingEventID:   item.FundingEventID,
	}
}

// ToRequestResponse converts a domain.ReimbursementRequest to RequestResponse DTO.
func ToRequestResponse(r *domain.ReimbursementRequest) RequestResponse {
	items := make([]LineItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ToLineItemResponse(&item)
	}
	resp := RequestResponse{
		RequestID:     r.RequestID,
		IBAN:          r.IBAN,
		AccountHolder: r.AccountHolder,
		Comment:       r.Comment,
		Status:        r.Status,
		SubmittedAt:   r.SubmittedAt,
		Items:         items,
		Total:         utils.FormatAmount(r.TotalAmount()),
	}
	if r.Applicant != nil {
		resp.Applicant = ToUserResponse(r.Applicant)
	} else {
		resp.Applicant = UserResponse{UserID: r.ApplicantID}
	}
	return resp
}

// ToListRequestsResponse converts a slice of domain requests to the list DTO.
func ToListRequestsResponse(requests []domain.ReimbursementRequest) ListRequestsResponse {
	out := make([]RequestResponse, len(requests))
	for i, r := range requests {
		out[i] = ToRequestResponse(&r)
	}
	return ListRequestsResponse{Requests: out}
}
