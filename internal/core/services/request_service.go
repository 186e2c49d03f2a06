package services

import (
	"context"
	"errors"
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

var (
	ErrNoLineItems     = errors.New("request must have at least one line item")
	ErrInvalidAmount   = errors.New("line item amount is not a valid decimal")
	ErrRequestNotOwned = errors.New("request belongs to another user")
	ErrNotPending      = errors.New("request is no longer pending")
)

// requestService owns the reimbursement request store: submissions, line
// items, listings, and the status transition guard.
type requestService struct {
	BaseService
	requestRepo portsrepo.RequestRepositoryFacade
	eventRepo   portsrepo.EventRepositoryFacade
}

// NewRequestService creates a new request service.
func NewRequestService(requestRepo portsrepo.RequestRepositoryFacade, eventRepo portsrepo.EventRepositoryFacade, userSvc portssvc.UserReaderSvc) portssvc.RequestSvcFacade {
	return &requestService{
		BaseService: BaseService{Users: userSvc},
		requestRepo: requestRepo,
		eventRepo:   eventRepo,
	}
}

var _ portssvc.RequestSvcFacade = (*requestService)(nil)

func (s *requestService) toLineItem(requestID string, req dto.CreateLineItemRequest, creatorUserID string, now time.Time) (domain.LineItem, error) {
	amount, ok := utils.ParseAmount(req.Amount)
	if !ok || amount.IsNegative() {
		return domain.LineItem{}, fmt.Errorf("%w: %q", ErrInvalidAmount, req.Amount)
	}
	return domain.LineItem{
		ItemID:           uuid.NewString(),
		RequestID:        requestID,
		PositionLabel:    req.PositionLabel,
		Description:      req.Description,
		Amount:           amount,
		ReceiptURL:       req.ReceiptURL,
		BudgetCategoryID: req.BudgetCategoryID,
		FundingEventID:   req.FundingEventID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}, nil
}

// CreateRequest submits a new reimbursement request with its line items.
// Guests may not submit. Non-admin callers always become the applicant
// themselves; an applicantID supplied by a regular member is silently
// discarded, matching the original submission behavior.
func (s *requestService) CreateRequest(ctx context.Context, req dto.CreateRequestRequest, creatorUserID string) (*domain.ReimbursementRequest, error) {
	logger := s.GetLogger(ctx)

	creator, err := s.Users.GetUserByID(ctx, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}
	if !creator.Role.CanSubmitRequests() {
		return nil, fmt.Errorf("%w: role %s may not submit requests", apperrors.ErrForbidden, creator.Role)
	}

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNoLineItems)
	}

	applicantID := creatorUserID
	if req.ApplicantID != nil && *req.ApplicantID != creatorUserID && creator.Role.CanManageRequests() {
		applicantID = *req.ApplicantID
		if _, err := s.Users.GetUserByID(ctx, applicantID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: applicant %s not found", apperrors.ErrValidation, applicantID)
			}
			return nil, err
		}
	}

	now := time.Now()
	requestID := uuid.NewString()

	items := make([]domain.LineItem, len(req.Items))
	for i, itemReq := range req.Items {
		item, err := s.toLineItem(requestID, itemReq, creatorUserID, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		items[i] = item
	}

	request := domain.ReimbursementRequest{
		RequestID:     requestID,
		ApplicantID:   applicantID,
		IBAN:          req.IBAN,
		AccountHolder: req.AccountHolder,
		Comment:       req.Comment,
		Status:        domain.StatusPendingDecision,
		SubmittedAt:   now,
		Items:         items,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.requestRepo.SaveRequest(ctx, request); err != nil {
		s.LogError(ctx, err, "Failed to save request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	logger.Info("Request submitted",
		slog.String("request_id", requestID),
		slog.String("applicant_id", applicantID),
		slog.Int("items", len(items)))
	return s.requestRepo.FindRequestByID(ctx, requestID)
}

// GetRequestByID retrieves one request. Members may only read their own;
// managers may read any.
func (s *requestService) GetRequestByID(ctx context.Context, requestID string, requestingUserID string) (*domain.ReimbursementRequest, error) {
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ApplicantID != requestingUserID {
		if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
			return nil, err
		}
	}
	return request, nil
}

// ListRequests retrieves all requests matching the filter, newest first.
// The filter itself is applied in memory as a pure function over the loaded
// set, so composing criteria behaves identically to filtering client-side.
func (s *requestService) ListRequests(ctx context.Context, filter domain.RequestFilter, requestingUserID string) ([]domain.ReimbursementRequest, error) {
	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	if filter.IsZero() {
		return requests, nil
	}
	eventNames, err := s.eventNamesByID(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterRequests(requests, filter, eventNames), nil
}

func (s *requestService) eventNamesByID(ctx context.Context) (map[string]string, error) {
	events, err := s.eventRepo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve funding event names: %w", err)
	}
	names := make(map[string]string, len(events))
	for _, e := range events {
		names[e.EventID] = e.Name
	}
	return names, nil
}

// ListMyRequests retrieves the caller's own requests, newest first.
func (s *requestService) ListMyRequests(ctx context.Context, requestingUserID string) ([]domain.ReimbursementRequest, error) {
	requests, err := s.requestRepo.ListRequestsByApplicant(ctx, requestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for user %s: %w", requestingUserID, err)
	}
	if requests == nil {
		requests = []domain.ReimbursementRequest{}
	}
	return requests, nil
}

// ListAvailableForCashbook retrieves approved requests that have not been
// booked as a cash expense yet. Requires the manage capability, since only
// managers maintain the cashbook.
func (s *requestService) ListAvailableForCashbook(ctx context.Context, requestingUserID string) ([]domain.ReimbursementRequest, error) {
	if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.ListRequestsAvailableForCashbook(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cashbook candidates: %w", err)
	}
	return requests, nil
}

// DeleteRequest removes a request. Owners may delete while it is still
// pending; managers may always delete.
func (s *requestService) DeleteRequest(ctx context.Context, requestID string, requestingUserID string) error {
	logger := s.GetLogger(ctx)

	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ApplicantID == requestingUserID {
		if request.Status != domain.StatusPendingDecision {
			return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotPending)
		}
	} else if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
		return err
	}

	if err := s.requestRepo.DeleteRequest(ctx, requestID); err != nil {
		s.LogError(ctx, err, "Failed to delete request", slog.String("request_id", requestID))
		return fmt.Errorf("failed to delete request %s: %w", requestID, err)
	}
	logger.Info("Request deleted", slog.String("request_id", requestID), slog.String("deleted_by", requestingUserID))
	return nil
}

func (s *requestService) authorizeItemMutation(ctx context.Context, requestID string, requestingUserID string) (*domain.ReimbursementRequest, error) {
	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ApplicantID != requestingUserID {
		if _, err := s.RequireManager(ctx, requestingUserID); err != nil {
			return nil, err
		}
	} else if request.Status != domain.StatusPendingDecision {
		// Owners may only amend while the decision is still open.
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotPending)
	}
	return request, nil
}

// AddLineItem appends one line item to an existing request.
func (s *requestService) AddLineItem(ctx context.Context, requestID string, req dto.CreateLineItemRequest, requestingUserID string) (*domain.LineItem, error) {
	if _, err := s.authorizeItemMutation(ctx, requestID, requestingUserID); err != nil {
		return nil, err
	}
	item, err := s.toLineItem(requestID, req, requestingUserID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	if err := s.requestRepo.SaveLineItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add line item to request %s: %w", requestID, err)
	}
	return &item, nil
}

// RemoveLineItem deletes one line item from an existing request.
func (s *requestService) RemoveLineItem(ctx context.Context, requestID string, itemID string, requestingUserID string) error {
	request, err := s.authorizeItemMutation(ctx, requestID, requestingUserID)
	if err != nil {
		return err
	}
	found := false
	for _, item := range request.Items {
		if item.ItemID == itemID {
			found = true
			break
		}
	}
	if !found {
		return apperrors.ErrNotFound
	}
	if len(request.Items) == 1 {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNoLineItems)
	}
	if err := s.requestRepo.DeleteLineItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to remove line item %s: %w", itemID, err)
	}
	return nil
}

// SetStatus is the status transition guard. The actor must hold the manage
// capability and the target status must be a member of the enum; beyond enum
// membership no transition graph is enforced, so any status may follow any
// other. The change is persisted before the local copy is updated, so a
// repository failure leaves the stored status unchanged.
func (s *requestService) SetStatus(ctx context.Context, requestID string, newStatus domain.RequestStatus, actorUserID string) (*domain.ReimbursementRequest, error) {
	logger := s.GetLogger(ctx)

	actor, err := s.RequireManager(ctx, actorUserID)
	if err != nil {
		return nil, err
	}
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, newStatus)
	}

	request, err := s.requestRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.requestRepo.UpdateRequestStatus(ctx, requestID, newStatus, actor.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to update request status",
			slog.String("request_id", requestID),
			slog.String("new_status", string(newStatus)))
		return nil, fmt.Errorf("failed to update status of request %s: %w", requestID, err)
	}

	request.Status = newStatus
	request.LastUpdatedAt = now
	request.LastUpdatedBy = actor.UserID

	logger.Info("Request status changed",
		slog.String("request_id", requestID),
		slog.String("status", string(newStatus)),
		slog.String("actor_id", actor.UserID))
	return request, nil
}
