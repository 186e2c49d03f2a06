package services

import (
	"context"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
)

// EventReaderSvc defines read operations for funding events
type EventReaderSvc interface {
	// GetEventByID retrieves one event with budgets and income entries.
	GetEventByID(ctx context.Context, eventID string) (*domain.FundingEvent, error)

	// ListEvents retrieves all events with budgets and income entries.
	ListEvents(ctx context.Context) ([]domain.FundingEvent, error)
}

// EventWriterSvc defines write operations for funding events; all require
// the manage capability.
type EventWriterSvc interface {
	// CreateEvent creates a new funding event.
	CreateEvent(ctx context.Context, req dto.CreateEventRequest, requestingUserID string) (*domain.FundingEvent, error)

	// DeleteEvent removes an event with its budgets and income entries.
	DeleteEvent(ctx context.Context, eventID string, requestingUserID string) error

	// CreateBudgetCategory adds a planned budget bucket to an event.
	CreateBudgetCategory(ctx context.Context, req dto.CreateBudgetCategoryRequest, requestingUserID string) (*domain.BudgetCategory, error)

	// DeleteBudgetCategory removes a budget bucket.
	DeleteBudgetCategory(ctx context.Context, categoryID string, requestingUserID string) error

	// CreateIncomeEntry records a donation/income for an event.
	CreateIncomeEntry(ctx context.Context, req dto.CreateIncomeEntryRequest, requestingUserID string) (*domain.IncomeEntry, error)

	// DeleteIncomeEntry removes an income record.
	DeleteIncomeEntry(ctx context.Context, incomeID string, requestingUserID string) error
}

// EventSvcFacade combines all funding-event-related service interfaces
type EventSvcFacade interface {
	EventReaderSvc
	EventWriterSvc
}
