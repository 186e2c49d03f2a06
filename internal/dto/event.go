package dto

import (
	"time"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEventRequest defines the data needed to create a funding event.
type CreateEventRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// CreateBudgetCategoryRequest defines the data for one planned budget bucket.
type CreateBudgetCategoryRequest struct {
	EventID       string `json:"eventID" binding:"required,uuid"`
	Category      string `json:"category" binding:"required,max=100"`
	PlannedAmount string `json:"plannedAmount" binding:"required,amount"`
}

// CreateIncomeEntryRequest defines the data for one donation/income record.
type CreateIncomeEntryRequest struct {
	EventID    string `json:"eventID" binding:"required,uuid"`
	Source     string `json:"source" binding:"required,max=255"`
	Amount     string `json:"amount" binding:"required,amount"`
	ReceivedAt string `json:"receivedAt" binding:"omitempty,datetime=2006-01-02"`
	Comment    string `json:"comment"`
}

// BudgetCategoryResponse defines the data returned for a budget category.
type BudgetCategoryResponse struct {
	CategoryID    string          `json:"categoryID"`
	EventID       string          `json:"eventID"`
	Category      string          `json:"category"`
	PlannedAmount decimal.Decimal `json:"plannedAmount"`
}

// IncomeEntryResponse defines the data returned for an income entry.
type IncomeEntryResponse struct {
	IncomeID   string          `json:"incomeID"`
	EventID    string          `json:"eventID"`
	Source     string          `json:"source"`
	Amount     decimal.Decimal `json:"amount"`
	ReceivedAt *string         `json:"receivedAt,omitempty"`
	Comment    string          `json:"comment"`
}

// EventResponse defines the data returned for a funding event with its
// nested budgets and income entries.
type EventResponse struct {
	EventID       string                   `json:"eventID"`
	Name          string                   `json:"name"`
	Date          *string                  `json:"date,omitempty"`
	Budgets       []BudgetCategoryResponse `json:"budgets"`
	IncomeEntries []IncomeEntryResponse    `json:"incomeEntries"`
	CreatedAt     time.Time                `json:"createdAt"`
}

// ListEventsResponse wraps a list of funding events.
type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
}

// ToBudgetCategoryResponse converts a domain.BudgetCategory to its DTO.
func ToBudgetCategoryResponse(b *domain.BudgetCategory) BudgetCategoryResponse {
	return BudgetCategoryResponse{
		CategoryID:    b.CategoryID,
		EventID:       b.EventID,
		Category:      b.Category,
		PlannedAmount: b.PlannedAmount,
	}
}

// ToIncomeEntryResponse converts a domain.IncomeEntry to its DTO.
func ToIncomeEntryResponse(in *domain.IncomeEntry) IncomeEntryResponse {
	resp := IncomeEntryResponse{
		IncomeID: in.IncomeID,
		EventID:  in.EventID,
		Source:   in.Source,
		Amount:   in.Amount,
		Comment:  in.Comment,
	}
	if in.ReceivedAt != nil {
		received := in.ReceivedAt.Format("2006-01-02")
		resp.ReceivedAt = &received
	}
	return resp
}

// ToEventResponse converts a domain.FundingEvent to EventResponse DTO.
func ToEventResponse(e *domain.FundingEvent) EventResponse {
	budgets := make([]BudgetCategoryResponse, len(e.Budgets))
	for i, b := range e.Budgets {
		budgets[i] = ToBudgetCategoryResponse(&b)
	}
	incomes := make([]IncomeEntryResponse, len(e.IncomeEntries))
	for i, in := range e.IncomeEntries {
		incomes[i] = ToIncomeEntryResponse(&in)
	}
	resp := EventResponse{
		EventID:       e.EventID,
		Name:          e.Name,
		Budgets:       budgets,
		IncomeEntries: incomes,
		CreatedAt:     e.CreatedAt,
	}
	if e.Date != nil {
		date := e.Date.Format("2006-01-02")
		resp.Date = &date
	}
	return resp
}

// ToListEventsResponse converts a slice of domain events to the list DTO.
func ToListEventsResponse(events []domain.FundingEvent) ListEventsResponse {
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = ToEventResponse(&e)
	}
	return ListEventsResponse{Events: out}
}
