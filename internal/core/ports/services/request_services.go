package services

import (
	"context"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
)

// RequestReaderSvc defines read operations for reimbursement requests
type RequestReaderSvc interface {
	// GetRequestByID retrieves a request; non-admins may only read their own.
	GetRequestByID(ctx context.Context, requestID string, requestingUserID string) (*domain.ReimbursementRequest, error)

	// ListRequests retrieves all requests matching the filter, newest first.
	// Requires the manage capability.
	ListRequests(ctx context.Context, filter domain.RequestFilter, requestingUserID string) ([]domain.ReimbursementRequest, error)

	// ListMyRequests retrieves the requesting user's own requests, newest first.
	ListMyRequests(ctx context.Context, requestingUserID string) ([]domain.ReimbursementRequest, error)

	// ListAvailableForCashbook retrieves approved requests without a
	// cashbook expense entry yet.
	ListAvailableForCashbook(ctx context.Context, requestingUserID string) ([]domain.ReimbursementRequest, error)
}

// RequestWriterSvc defines write operations for reimbursement requests
type RequestWriterSvc interface {
	// CreateRequest submits a new request with its line items. The applicant
	// is forced to the caller unless the caller holds the manage capability.
	CreateRequest(ctx context.Context, req dto.CreateRequestRequest, creatorUserID string) (*domain.ReimbursementRequest, error)

	// DeleteRequest removes a request. Owners may delete while the request is
	// still pending; admins may always delete.
	DeleteRequest(ctx context.Context, requestID string, requestingUserID string) error

	// AddLineItem appends one line item to a pending request.
	AddLineItem(ctx context.Context, requestID string, req dto.CreateLineItemRequest, requestingUserID string) (*domain.LineItem, error)

	// RemoveLineItem deletes one line item from a pending request.
	RemoveLineItem(ctx context.Context, requestID string, itemID string, requestingUserID string) error
}

// RequestStatusSvc is the status transition guard: it validates the actor's
// capability and the target status before persisting the change.
type RequestStatusSvc interface {
	// SetStatus applies a status change on behalf of an actor. Returns
	// apperrors.ErrForbidden when the actor lacks the manage capability and
	// apperrors.ErrValidation when the status is not a member of the enum.
	// On repository failure the stored status is unchanged.
	SetStatus(ctx context.Context, requestID string, newStatus domain.RequestStatus, actorUserID string) (*domain.ReimbursementRequest, error)
}

// RequestSvcFacade combines all request-related service interfaces
type RequestSvcFacade interface {
	RequestReaderSvc
	RequestWriterSvc
	RequestStatusSvc
}
