package repositories

import (
	"context"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
)

// FundingEventReader defines read operations for funding event data
type FundingEventReader interface {
	// FindEventByID retrieves one event with its budgets and income entries.
	FindEventByID(ctx context.Context, eventID string) (*domain.FundingEvent, error)

	// ListEvents retrieves all events with budgets and income entries,
	// ordered by event date (undated events last).
	ListEvents(ctx context.Context) ([]domain.FundingEvent, error)
}

// FundingEventWriter defines write operations for funding event data
type FundingEventWriter interface {
	// SaveEvent persists a new funding event.
	SaveEvent(ctx context.Context, event domain.FundingEvent) error

	// DeleteEvent removes an event with its budgets and income entries.
	// Line items referencing the event keep existing with a cleared reference.
	DeleteEvent(ctx context.Context, eventID string) error
}

// BudgetCategoryWriter defines write operations for budget categories
type BudgetCategoryWriter interface {
	// SaveBudgetCategory persists a new budget category.
	SaveBudgetCategory(ctx context.Context, category domain.BudgetCategory) error

	// DeleteBudgetCategory removes a budget category. Line items referencing
	// it keep existing with a cleared reference.
	DeleteBudgetCategory(ctx context.Context, categoryID string) error
}

// IncomeEntryWriter defines write operations for income entries
type IncomeEntryWriter interface {
	// SaveIncomeEntry persists a new income entry.
	SaveIncomeEntry(ctx context.Context, entry domain.IncomeEntry) error

	// FindIncomeEntryByID retrieves one income entry.
	FindIncomeEntryByID(ctx context.Context, incomeID string) (*domain.IncomeEntry, error)

	// DeleteIncomeEntry removes an income entry.
	DeleteIncomeEntry(ctx context.Context, incomeID string) error
}

// EventRepositoryFacade combines all funding-event-related repository interfaces
type EventRepositoryFacade interface {
	FundingEventReader
	FundingEventWriter
	BudgetCategoryWriter
	IncomeEntryWriter
}
