package repositories

import (
	"context"
	"time"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
)

// RequestReader defines read operations for reimbursement request data
type RequestReader interface {
	// FindRequestByID retrieves a request with its line items and applicant.
	FindRequestByID(ctx context.Context, requestID string) (*domain.ReimbursementRequest, error)

	// ListRequests retrieves all requests with items and applicants,
	// newest submission first.
	ListRequests(ctx context.Context) ([]domain.ReimbursementRequest, error)

	// ListRequestsByApplicant retrieves the requests submitted by one user,
	// newest submission first.
	ListRequestsByApplicant(ctx context.Context, applicantID string) ([]domain.ReimbursementRequest, error)

	// ListRequestsAvailableForCashbook retrieves approved requests that have
	// no cashbook expense entry yet.
	ListRequestsAvailableForCashbook(ctx context.Context) ([]domain.ReimbursementRequest, error)
}

// RequestWriter defines write operations for reimbursement request data
type RequestWriter interface {
	// SaveRequest persists a request and its line items atomically.
	SaveRequest(ctx context.Context, request domain.ReimbursementRequest) error

	// UpdateRequestStatus updates only the status field of a request.
	UpdateRequestStatus(ctx context.Context, requestID string, status domain.RequestStatus, updatedBy string, updatedAt time.Time) error

	// DeleteRequest removes a request and its line items.
	DeleteRequest(ctx context.Context, requestID string) error
}

// LineItemWriter defines write operations for individual line items.
type LineItemWriter interface {
	// SaveLineItem adds a single line item to an existing request.
	SaveLineItem(ctx context.Context, item domain.LineItem) error

	// DeleteLineItem removes a single line item.
	DeleteLineItem(ctx context.Context, itemID string) error
}

// RequestRepositoryFacade combines all request-related repository interfaces
type RequestRepositoryFacade interface {
	RequestReader
	RequestWriter
	LineItemWriter
}
