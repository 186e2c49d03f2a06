package dto

import (
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/utils"
)

// EventReportParams defines query parameters for the event report.
// Both bounds are inclusive and filter on the event date.
type EventReportParams struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// CategoryBreakdownResponse represents one budget category row in the report.
// All amounts are display-formatted to two decimals; the underlying sums are
// computed at full precision first.
type CategoryBreakdownResponse struct {
	CategoryID string             `json:"categoryID"`
	Category   string             `json:"category"`
	Planned    string             `json:"planned"`
	Actual     string             `json:"actual"`
	Items      []LineItemResponse `json:"items"`
}

// EventReportResponse represents the reconciliation report for one event.
type EventReportResponse struct {
	EventID    string                      `json:"eventID"`
	Name       string                      `json:"name"`
	Date       *string                     `json:"date,omitempty"`
	Planned    string                      `json:"planned"`
	Actual     string                      `json:"actual"`
	Pending    string                      `json:"pending"`
	Rejected   string                      `json:"rejected"`
	Income     string                      `json:"income"`
	Balance    string                      `json:"balance"`
	Categories []CategoryBreakdownResponse `json:"categories"`
	Unassigned []LineItemResponse          `json:"unassigned"`
}

// EventReportListResponse wraps the per-event reports with the range totals.
type EventReportListResponse struct {
	Events       []EventReportResponse `json:"events"`
	TotalPlanned string                `json:"totalPlanned"`
	TotalActual  string                `json:"totalActual"`
}

func toLineItemResponses(items []domain.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, item := range items {
		out[i] = ToLineItemResponse(&item)
	}
	return out
}

// ToEventReportResponse converts a domain.EventReport to its DTO.
func ToEventReportResponse(r *domain.EventReport) EventReportResponse {
	categories := make([]CategoryBreakdownResponse, len(r.Categories))
	for i, c := range r.Categories {
		categories[i] = CategoryBreakdownResponse{
			CategoryID: c.CategoryID,
			Category:   c.Category,
			Planned:    utils.FormatAmount(c.Planned),
			Actual:     utils.FormatAmount(c.Actual),
			Items:      toLineItemResponses(c.Items),
		}
	}
	return EventReportResponse{
		EventID:    r.EventID,
		Name:       r.Name,
		Date:       r.Date,
		Planned:    utils.FormatAmount(r.Planned),
		Actual:     utils.FormatAmount(r.Actual),
		Pending:    utils.FormatAmount(r.Pending),
		Rejected:   utils.FormatAmount(r.Rejected),
		Income:     utils.FormatAmount(r.Income),
		Balance:    utils.FormatAmount(r.Balance),
		Categories: categories,
		Unassigned: toLineItemResponses(r.Unassigned),
	}
}

// ToEventReportListResponse converts reports and summary to the list DTO.
func ToEventReportListResponse(reports []domain.EventReport, summary domain.EventReportSummary) EventReportListResponse {
	out := make([]EventReportResponse, len(reports))
	for i, r := range reports {
		out[i] = ToEventReportResponse(&r)
	}
	return EventReportListResponse{
		Events:       out,
		TotalPlanned: utils.FormatAmount(summary.TotalPlanned),
		TotalActual:  utils.FormatAmount(summary.TotalActual),
	}
}
