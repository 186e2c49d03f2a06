package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
	"github.com/kassenwart/kassenwart_backend/internal/utils"
)

// eventService manages funding events with their budget categories and
// income entries. Reads are open to all members; writes are reserved for
// users holding the manage capability.
type eventService struct {
	BaseService
	eventRepo portsrepo.EventRepositoryFacade
}

// NewEventService creates a new funding event service.
func NewEventService(eventRepo portsrepo.EventRepositoryFacade, userSvc portssvc.UserReaderSvc) portssvc.EventSvcFacade {
	return &eventService{
		BaseService: BaseService{Users: userSvc},
		eventRepo:   eventRepo,
	}
}

var _ portssvc.EventSvcFacade = (*eventService)(nil)

// GetEventByID retrieves one event with budgets and income entries.
func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.FundingEvent, error) {
	return s.eventRepo.FindEventByID(ctx, eventID)
}

// ListEvents retrieves all events with budgets and income entries.
func (s *eventService) ListEvents(ctx context.Context) ([]domain.FundingEvent, error) {
	events, err := s.eventRepo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list funding events: %w", err)
	}
	if events == nil {
		events = []domain.FundingEvent{}
	}
	return events, nil
}

// CreateEvent creates a new funding event.
func (s *eventService) CreateEvent(ctx context.Context, req dto.CreateEventRequest, requestingUserID string) (*domain.FundingEvent, error) {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return nil, err
	}

	now := time.Now()
	event := domain.FundingEvent{
		EventID:       uuid.NewString(),
		Name:          req.Name,
		Budgets:       []domain.BudgetCategory{},
		IncomeEntries: []domain.IncomeEntry{},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date)
		}
		event.Date = &date
	}

	if err := s.eventRepo.SaveEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to save funding event")
		return nil, fmt.Errorf("failed to create funding event: %w", err)
	}

	logger.Info("Funding event created", slog.String("event_id", event.EventID), slog.String("name", event.Name))
	return &event, nil
}

// DeleteEvent removes an event together with its budgets and income entries.
func (s *eventService) DeleteEvent(ctx context.Context, eventID string, requestingUserID string) error {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return err
	}
	if _, err := s.eventRepo.FindEventByID(ctx, eventID); err != nil {
		return err
	}
	if err := s.eventRepo.DeleteEvent(ctx, eventID); err != nil {
		s.LogError(ctx, err, "Failed to delete funding event", slog.String("event_id", eventID))
		return fmt.Errorf("failed to delete funding event %s: %w", eventID, err)
	}
	logger.Info("Funding event deleted", slog.String("event_id", eventID))
	return nil
}

// CreateBudgetCategory adds a planned budget bucket to an event.
func (s *eventService) CreateBudgetCategory(ctx context.Context, req dto.CreateBudgetCategoryRequest, requestingUserID string) (*domain.BudgetCategory, error) {
	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return nil, err
	}
	if _, err := s.eventRepo.FindEventByID(ctx, req.EventID); err != nil {
		return nil, err
	}

	planned, ok := utils.ParseAmount(req.PlannedAmount)
	if !ok || planned.IsNegative() {
		return nil, fmt.Errorf("%w: invalid planned amount %q", apperrors.ErrValidation, req.PlannedAmount)
	}

	now := time.Now()
	category := domain.BudgetCategory{
		CategoryID:    uuid.NewString(),
		EventID:       req.EventID,
		Category:      req.Category,
		PlannedAmount: planned,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	if err := s.eventRepo.SaveBudgetCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create budget category: %w", err)
	}
	return &category, nil
}

// DeleteBudgetCategory removes a budget bucket. Line items referencing it
// survive with a cleared reference; the repository handles the unlinking.
func (s *eventService) DeleteBudgetCategory(ctx context.Context, categoryID string, requestingUserID string) error {
	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return err
	}
	if err := s.eventRepo.DeleteBudgetCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete budget category %s: %w", categoryID, err)
	}
	return nil
}

// CreateIncomeEntry records a donation or other income for an event.
func (s *eventService) CreateIncomeEntry(ctx context.Context, req dto.CreateIncomeEntryRequest, requestingUserID string) (*domain.IncomeEntry, error) {
	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return nil, err
	}
	if _, err := s.eventRepo.FindEventByID(ctx, req.EventID); err != nil {
		return nil, err
	}

	amount, ok := utils.ParseAmount(req.Amount)
	if !ok || amount.IsNegative() {
		return nil, fmt.Errorf("%w: invalid income amount %q", apperrors.ErrValidation, req.Amount)
	}

	now := time.Now()
	entry := domain.IncomeEntry{
		IncomeID: uuid.NewString(),
		EventID:  req.EventID,
		Source:   req.Source,
		Amount:   amount,
		Comment:  req.Comment,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	if req.ReceivedAt != "" {
		received, err := time.Parse("2006-01-02", req.ReceivedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid receivedAt %q", apperrors.ErrValidation, req.ReceivedAt)
		}
		entry.ReceivedAt = &received
	}

	if err := s.eventRepo.SaveIncomeEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create income entry: %w", err)
	}
	return &entry, nil
}

// DeleteIncomeEntry removes an income record.
func (s *eventService) DeleteIncomeEntry(ctx context.Context, incomeID string, requestingUserID string) error {
	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return err
	}
	if err := s.eventRepo.DeleteIncomeEntry(ctx, incomeID); err != nil {
		return fmt.Errorf("failed to delete income entry %s: %w", incomeID, err)
	}
	return nil
}
