package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	"github.com/kassenwart/kassenwart_backend/internal/models"
	"github.com/kassenwart/kassenwart_backend/internal/utils/mapping"
)

const cashbookColumns = `entry_id, direction, amount, booking_date, comment,
		request_id, income_entry_id, funding_event_id, balance_before, balance_after,
		created_at, created_by, last_updated_at, last_updated_by`

type PgxCashbookRepository struct {
	BaseRepository
	requestRepo portsrepo.RequestReader
}

func newPgxCashbookRepository(db *pgxpool.Pool, requestRepo portsrepo.RequestReader) portsrepo.CashbookRepositoryFacade {
	return &PgxCashbookRepository{
		BaseRepository: BaseRepository{Pool: db},
		requestRepo:    requestRepo,
	}
}

var _ portsrepo.CashbookRepositoryFacade = (*PgxCashbookRepository)(nil)

func scanCashbookEntry(row pgx.Row) (*models.CashbookEntry, error) {
	var m models.CashbookEntry
	err := row.Scan(
		&m.EntryID,
		&m.Direction,
		&m.Amount,
		&m.BookingDate,
		&m.Comment,
		&m.RequestID,
		&m.IncomeEntryID,
		&m.FundingEventID,
		&m.BalanceBefore,
		&m.BalanceAfter,
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

// toDomainEntry converts a row and resolves the linked request when present.
func (r *PgxCashbookRepository) toDomainEntry(ctx context.Context, m models.CashbookEntry) (domain.CashbookEntry, error) {
	entry := mapping.ToDomainCashbookEntry(m)
	if entry.RequestID != nil {
		request, err := r.requestRepo.FindRequestByID(ctx, *entry.RequestID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return entry, fmt.Errorf("failed to resolve request %s for cashbook entry: %w", *entry.RequestID, err)
		}
		entry.Request = request
	}
	return entry, nil
}

// ListEntries returns the ledger ordered by booking date with insertion
// order breaking ties, matching the order balances were chained in. When a
// cursor is given, only entries strictly after it are returned. A limit of 0
// means no limit.
func (r *PgxCashbookRepository) ListEntries(ctx context.Context, limit int, after *portsrepo.CashbookCursor) ([]domain.CashbookEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM cashbook_entries
	`, cashbookColumns)
	var args []any
	if after != nil {
		query += ` WHERE (booking_date, created_at, entry_id) > ($1, $2, $3)`
		args = append(args, after.BookingDate, after.CreatedAt, after.EntryID)
	}
	query += ` ORDER BY booking_date, created_at, entry_id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashbook entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CashbookEntry
	for rows.Next() {
		m, err := scanCashbookEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cashbook row: %w", err)
		}
		entry, err := r.toDomainEntry(ctx, *m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating cashbook rows: %w", err)
	}
	return entries, nil
}

func (r *PgxCashbookRepository) FindLatestEntry(ctx context.Context) (*domain.CashbookEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM cashbook_entries
		ORDER BY booking_date DESC, created_at DESC, entry_id DESC
		LIMIT 1;
	`, cashbookColumns)
	m, err := scanCashbookEntry(r.Pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest cashbook entry: %w", err)
	}
	entry := mapping.ToDomainCashbookEntry(*m)
	return &entry, nil
}

func (r *PgxCashbookRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.CashbookEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM cashbook_entries
		WHERE entry_id = $1;
	`, cashbookColumns)
	m, err := scanCashbookEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cashbook entry %s: %w", entryID, err)
	}
	entry, err := r.toDomainEntry(ctx, *m)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// cashbookAppendLockKey serializes appends so stored running balances form an
// unbroken chain even under concurrent writers.
const cashbookAppendLockKey = 0x6b617373626f6f6b // "kassbook"

// SaveEntry inserts a new ledger entry. The insert runs in a transaction
// holding an advisory lock, and the entry's BalanceBefore is checked against
// the latest stored balance_after. A mismatch means another append won the
// race; the caller gets apperrors.ErrConflict and must re-chain and retry.
func (r *PgxCashbookRepository) SaveEntry(ctx context.Context, entry domain.CashbookEntry) error {
	m := mapping.ToModelCashbookEntry(entry)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, cashbookAppendLockKey); err != nil {
		return fmt.Errorf("failed to acquire cashbook append lock: %w", err)
	}

	var latestAfter decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT balance_after
		FROM cashbook_entries
		ORDER BY booking_date DESC, created_at DESC, entry_id DESC
		LIMIT 1;
	`).Scan(&latestAfter)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		latestAfter = decimal.Zero
	case err != nil:
		return fmt.Errorf("failed to read latest cashbook balance: %w", err)
	}
	if !m.BalanceBefore.Equal(latestAfter) {
		return apperrors.ErrConflict
	}

	query := `
		INSERT INTO cashbook_entries (entry_id, direction, amount, booking_date, comment,
			request_id, income_entry_id, funding_event_id, balance_before, balance_after,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, query,
		m.EntryID,
		m.Direction,
		m.Amount,
		m.BookingDate,
		m.Comment,
		m.RequestID,
		m.IncomeEntryID,
		m.FundingEventID,
		m.BalanceBefore,
		m.BalanceAfter,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save cashbook entry: %w", err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxCashbookRepository) DeleteEntry(ctx context.Context, entryID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM cashbook_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete cashbook entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
