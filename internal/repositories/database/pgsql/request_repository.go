package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	"github.com/kassenwart/kassenwart_backend/internal/models"
	"github.com/kassenwart/kassenwart_backend/internal/utils/mapping"
)

const requestColumns = `r.request_id, r.applicant_id, r.iban, r.account_holder, r.comment, r.status,
		r.submitted_at, r.created_at, r.created_by, r.last_updated_at, r.last_updated_by`

const lineItemColumns = `item_id, request_id, position_label, description, amount,
		receipt_url, budget_category_id, funding_event_id,
		created_at, created_by, last_updated_at, last_updated_by`

type PgxRequestRepository struct {
	BaseRepository
	userRepo portsrepo.UserReader
}

func newPgxRequestRepository(db *pgxpool.Pool, userRepo portsrepo.UserReader) portsrepo.RequestRepositoryFacade {
	return &PgxRequestRepository{
		BaseRepository: BaseRepository{Pool: db},
		userRepo:       userRepo,
	}
}

var _ portsrepo.RequestRepositoryFacade = (*PgxRequestRepository)(nil)

func scanRequest(row pgx.Row) (*models.ReimbursementRequest, error) {
	var m models.ReimbursementRequest
	err := row.Scan(
		&m.RequestID,
		&m.ApplicantID,
		&m.IBAN,
		&m.AccountHolder,
		&m.Comment,
		&m.Status,
		&m.SubmittedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanLineItem(row pgx.Row) (*models.LineItem, error) {
	var m models.LineItem
	err := row.Scan(
		&m.ItemID,
		&m.RequestID,
		&m.PositionLabel,
		&m.Description,
		&m.Amount,
		&m.ReceiptURL,
		&m.BudgetCategoryID,
		&m.FundingEventID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxRequestRepository) SaveRequest(ctx context.Context, request domain.ReimbursementRequest) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelRequest(request)
	headerQuery := `
		INSERT INTO reimbursement_requests (request_id, applicant_id, iban, account_holder, comment, status,
			submitted_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, headerQuery,
		m.RequestID,
		m.ApplicantID,
		m.IBAN,
		m.AccountHolder,
		m.Comment,
		m.Status,
		m.SubmittedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert request %s: %w", m.RequestID, err)
	}

	batch := &pgx.Batch{}
	itemQuery := `
		INSERT INTO line_items (item_id, request_id, position_label, description, amount,
			receipt_url, budget_category_id, funding_event_id,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, item := range request.Items {
		mi := mapping.ToModelLineItem(item)
		batch.Queue(itemQuery,
			mi.ItemID,
			mi.RequestID,
			mi.PositionLabel,
			mi.Description,
			mi.Amount,
			mi.ReceiptURL,
			mi.BudgetCategoryID,
			mi.FundingEventID,
			mi.CreatedAt,
			mi.CreatedBy,
			mi.LastUpdatedAt,
			mi.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert line items for request %s: %w", m.RequestID, err)
	}

	return r.Commit(ctx, tx)
}

// loadItems fetches the line items of the given requests, keyed by request ID.
func (r *PgxRequestRepository) loadItems(ctx context.Context, requestIDs []string) (map[string][]domain.LineItem, error) {
	itemsByRequest := make(map[string][]domain.LineItem, len(requestIDs))
	if len(requestIDs) == 0 {
		return itemsByRequest, nil
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM line_items
		WHERE request_id = ANY($1)
		ORDER BY created_at, item_id;
	`, lineItemColumns)
	rows, err := r.Pool.Query(ctx, query, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item row: %w", err)
		}
		itemsByRequest[m.RequestID] = append(itemsByRequest[m.RequestID], mapping.ToDomainLineItem(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating line item rows: %w", err)
	}
	return itemsByRequest, nil
}

// attach resolves line items and applicants for a set of request headers.
func (r *PgxRequestRepository) attach(ctx context.Context, headers []models.ReimbursementRequest) ([]domain.ReimbursementRequest, error) {
	requestIDs := make([]string, len(headers))
	for i, h := range headers {
		requestIDs[i] = h.RequestID
	}
	itemsByRequest, err := r.loadItems(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	applicants := make(map[string]*domain.User)
	requests := make([]domain.ReimbursementRequest, len(headers))
	for i, h := range headers {
		request := mapping.ToDomainRequest(h)
		request.Items = itemsByRequest[h.RequestID]
		if request.Items == nil {
			request.Items = []domain.LineItem{}
		}
		applicant, ok := applicants[h.ApplicantID]
		if !ok {
			applicant, err = r.userRepo.FindUserByID(ctx, h.ApplicantID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to resolve applicant %s: %w", h.ApplicantID, err)
			}
			applicants[h.ApplicantID] = applicant
		}
		request.Applicant = applicant
		requests[i] = request
	}
	return requests, nil
}

func (r *PgxRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.ReimbursementRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reimbursement_requests r
		WHERE r.request_id = $1;
	`, requestColumns)
	m, err := scanRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find request %s: %w", requestID, err)
	}
	requests, err := r.attach(ctx, []models.ReimbursementRequest{*m})
	if err != nil {
		return nil, err
	}
	return &requests[0], nil
}

func (r *PgxRequestRepository) listRequests(ctx context.Context, where string, args ...any) ([]domain.ReimbursementRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reimbursement_requests r
		%s
		ORDER BY r.submitted_at DESC, r.request_id;
	`, requestColumns, where)
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var headers []models.ReimbursementRequest
	for rows.Next() {
		m, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request row: %w", err)
		}
		headers = append(headers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating request rows: %w", err)
	}
	return r.attach(ctx, headers)
}

func (r *PgxRequestRepository) ListRequests(ctx context.Context) ([]domain.ReimbursementRequest, error) {
	return r.listRequests(ctx, "")
}

func (r *PgxRequestRepository) ListRequestsByApplicant(ctx context.Context, applicantID string) ([]domain.ReimbursementRequest, error) {
	return r.listRequests(ctx, "WHERE r.applicant_id = $1", applicantID)
}

// ListRequestsAvailableForCashbook returns approved requests with no cashbook
// expense entry referencing them yet.
func (r *PgxRequestRepository) ListRequestsAvailableForCashbook(ctx context.Context) ([]domain.ReimbursementRequest, error) {
	where := `
		WHERE r.status = $1
		AND NOT EXISTS (
			SELECT 1 FROM cashbook_entries c WHERE c.request_id = r.request_id
		)`
	return r.listRequests(ctx, where, string(domain.StatusApproved))
}

func (r *PgxRequestRepository) UpdateRequestStatus(ctx context.Context, requestID string, status domain.RequestStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE reimbursement_requests
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE request_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, requestID, string(status), updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of request %s: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxRequestRepository) DeleteRequest(ctx context.Context, requestID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM cashbook_entries WHERE request_id = $1;`, requestID); err != nil {
		return fmt.Errorf("failed to delete cashbook entries of request %s: %w", requestID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE request_id = $1;`, requestID); err != nil {
		return fmt.Errorf("failed to delete line items of request %s: %w", requestID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM reimbursement_requests WHERE request_id = $1;`, requestID)
	if err != nil {
		return fmt.Errorf("failed to delete request %s: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return r.Commit(ctx, tx)
}

func (r *PgxRequestRepository) SaveLineItem(ctx context.Context, item domain.LineItem) error {
	m := mapping.ToModelLineItem(item)
	query := `
		INSERT INTO line_items (item_id, request_id, position_label, description, amount,
			receipt_url, budget_category_id, funding_event_id,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ItemID,
		m.RequestID,
		m.PositionLabel,
		m.Description,
		m.Amount,
		m.ReceiptURL,
		m.BudgetCategoryID,
		m.FundingEventID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save line item %s: %w", item.ItemID, err)
	}
	return nil
}

func (r *PgxRequestRepository) DeleteLineItem(ctx context.Context, itemID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM line_items WHERE item_id = $1;`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete line item %s: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
