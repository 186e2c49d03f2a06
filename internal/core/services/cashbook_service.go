package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
	"github.com/kassenwart/kassenwart_backend/internal/utils"
	"github.com/kassenwart/kassenwart_backend/internal/utils/pagination"
)

var (
	ErrBackdatedEntry   = errors.New("booking date precedes the latest cashbook entry")
	ErrRequestNotBooked = errors.New("request is not approved")
	ErrAlreadyBooked    = errors.New("request already has a cashbook entry")
)

// cashbookService maintains the append-only cash ledger. Running balances
// are derived from the latest entry at append time and stored with the row,
// which is why appends older than the newest booking date are rejected.
type cashbookService struct {
	BaseService
	cashbookRepo portsrepo.CashbookRepositoryFacade
	requestRepo  portsrepo.RequestRepositoryFacade
	eventRepo    portsrepo.EventRepositoryFacade
}

// NewCashbookService creates a new cashbook service.
func NewCashbookService(cashbookRepo portsrepo.CashbookRepositoryFacade, requestRepo portsrepo.RequestRepositoryFacade, eventRepo portsrepo.EventRepositoryFacade, userSvc portssvc.UserReaderSvc) portssvc.CashbookSvcFacade {
	return &cashbookService{
		BaseService:  BaseService{Users: userSvc},
		cashbookRepo: cashbookRepo,
		requestRepo:  requestRepo,
		eventRepo:    eventRepo,
	}
}

var _ portssvc.CashbookSvcFacade = (*cashbookService)(nil)

// ListEntries retrieves a ledger page in chronological order. The token
// encodes the booking date, creation time and id of the last entry served.
func (s *cashbookService) ListEntries(ctx context.Context, requestingUserID string, limit int, nextToken string) ([]domain.CashbookEntry, string, error) {
	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return nil, "", err
	}

	var after *portsrepo.CashbookCursor
	if nextToken != "" {
		bookingDate, createdAt, entryID, err := pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		after = &portsrepo.CashbookCursor{BookingDate: bookingDate, CreatedAt: createdAt, EntryID: entryID}
	}

	fetchLimit := 0
	if limit > 0 {
		fetchLimit = limit + 1 // one extra row to detect a further page
	}
	entries, err := s.cashbookRepo.ListEntries(ctx, fetchLimit, after)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list cashbook entries: %w", err)
	}

	var token string
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		token = pagination.EncodeToken(last.BookingDate, last.CreatedAt, last.EntryID)
	}
	if entries == nil {
		entries = []domain.CashbookEntry{}
	}
	return entries, token, nil
}

// openingBalance returns the balance the new entry starts from and validates
// that the booking date does not fall before the newest existing entry.
func (s *cashbookService) openingBalance(ctx context.Context, bookingDate time.Time) (decimal.Decimal, error) {
	latest, err := s.cashbookRepo.FindLatestEntry(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to read latest cashbook entry: %w", err)
	}
	if bookingDate.Before(latest.BookingDate) {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrBackdatedEntry)
	}
	return latest.BalanceAfter, nil
}

// appendAttempts bounds the re-chaining retries when a concurrent append
// moves the latest balance between the read and the save.
const appendAttempts = 3

func (s *cashbookService) append(ctx context.Context, entry domain.CashbookEntry) (*domain.CashbookEntry, error) {
	logger := s.GetLogger(ctx)

	var saveErr error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		before, err := s.openingBalance(ctx, entry.BookingDate)
		if err != nil {
			return nil, err
		}
		entry.BalanceBefore = before
		entry.BalanceAfter = before.Add(entry.SignedAmount())

		saveErr = s.cashbookRepo.SaveEntry(ctx, entry)
		if saveErr == nil {
			break
		}
		if errors.Is(saveErr, apperrors.ErrConflict) {
			logger.Warn("Cashbook append lost a race, re-chaining balances",
				slog.String("entry_id", entry.EntryID))
			continue
		}
		s.LogError(ctx, saveErr, "Failed to save cashbook entry")
		return nil, fmt.Errorf("failed to append cashbook entry: %w", saveErr)
	}
	if saveErr != nil {
		s.LogError(ctx, saveErr, "Cashbook append exhausted retries", slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("failed to append cashbook entry: %w", saveErr)
	}

	logger.Info("Cashbook entry appended",
		slog.String("entry_id", entry.EntryID),
		slog.String("direction", string(entry.Direction)),
		slog.String("balance_after", entry.BalanceAfter.String()))
	return &entry, nil
}

// AppendExpense appends an outgoing movement. When the expense is derived
// from a reimbursement request the request must be approved and not yet
// booked; the repository's exclusion query keeps the booked request out of
// the available-for-cashbook listing afterwards.
func (s *cashbookService) AppendExpense(ctx context.Context, req dto.CreateCashExpenseRequest, requestingUserID string) (*domain.CashbookEntry, error) {
	actor, err := s.RequireManager(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}

	amount, ok := utils.ParseAmount(req.Amount)
	if !ok || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: invalid expense amount %q", apperrors.ErrValidation, req.Amount)
	}
	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking date %q", apperrors.ErrValidation, req.BookingDate)
	}

	if req.RequestID != nil {
		if err := s.validateRequestLink(ctx, *req.RequestID); err != nil {
			return nil, err
		}
	}
	if req.FundingEventID != nil {
		if _, err := s.eventRepo.FindEventByID(ctx, *req.FundingEventID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	entry := domain.CashbookEntry{
		EntryID:        uuid.NewString(),
		Direction:      domain.CashbookExpense,
		Amount:         amount,
		BookingDate:    bookingDate,
		Comment:        req.Comment,
		RequestID:      req.RequestID,
		FundingEventID: req.FundingEventID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	return s.append(ctx, entry)
}

func (s *cashbookService) validateRequestLink(ctx context.Context, requestID string) error {
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != domain.StatusApproved {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrRequestNotBooked)
	}
	available, err := s.requestRepo.ListRequestsAvailableForCashbook(ctx)
	if err != nil {
		return fmt.Errorf("failed to check cashbook availability: %w", err)
	}
	for _, r := range available {
		if r.RequestID == requestID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAlreadyBooked)
}

// AppendIncome appends an incoming movement derived from a recorded income
// entry of a funding event.
func (s *cashbookService) AppendIncome(ctx context.Context, req dto.CreateCashIncomeRequest, requestingUserID string) (*domain.CashbookEntry, error) {
	actor, err := s.RequireManager(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}

	amount, ok := utils.ParseAmount(req.Amount)
	if !ok || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: invalid income amount %q", apperrors.ErrValidation, req.Amount)
	}
	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking date %q", apperrors.ErrValidation, req.BookingDate)
	}
	if _, err := s.eventRepo.FindIncomeEntryByID(ctx, req.IncomeEntryID); err != nil {
		return nil, err
	}
	if req.FundingEventID != nil {
		if _, err := s.eventRepo.FindEventByID(ctx, *req.FundingEventID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	entry := domain.CashbookEntry{
		EntryID:        uuid.NewString(),
		Direction:      domain.CashbookIncome,
		Amount:         amount,
		BookingDate:    bookingDate,
		Comment:        req.Comment,
		IncomeEntryID:  &req.IncomeEntryID,
		FundingEventID: req.FundingEventID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	return s.append(ctx, entry)
}

// DeleteEntry removes an entry. Stored balances of later entries keep their
// values; the ledger view makes the resulting gap visible rather than
// silently rewriting history.
func (s *cashbookService) DeleteEntry(ctx context.Context, entryID string, requestingUserID string) error {
	logger := s.GetLogger(ctx)

	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return err
	}
	if _, err := s.cashbookRepo.FindEntryByID(ctx, entryID); err != nil {
		return err
	}
	if err := s.cashbookRepo.DeleteEntry(ctx, entryID); err != nil {
		s.LogError(ctx, err, "Failed to delete cashbook entry", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to delete cashbook entry %s: %w", entryID, err)
	}
	logger.Info("Cashbook entry deleted", slog.String("entry_id", entryID))
	return nil
}
