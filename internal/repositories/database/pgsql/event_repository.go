package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	"github.com/kassenwart/kassenwart_backend/internal/models"
	"github.com/kassenwart/kassenwart_backend/internal/utils/mapping"
)

const eventColumns = `event_id, name, event_date, created_at, created_by, last_updated_at, last_updated_by`

type PgxEventRepository struct {
	BaseRepository
}

func newPgxEventRepository(db *pgxpool.Pool) portsrepo.EventRepositoryFacade {
	return &PgxEventRepository{BaseRepository{Pool: db}}
}

var _ portsrepo.EventRepositoryFacade = (*PgxEventRepository)(nil)

func scanEvent(row pgx.Row) (*models.FundingEvent, error) {
	var m models.FundingEvent
	err := row.Scan(
		&m.EventID,
		&m.Name,
		&m.Date,
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

// loadChildren fetches the budgets and income entries of the given events.
func (r *PgxEventRepository) loadChildren(ctx context.Context, eventIDs []string) (map[string][]domain.BudgetCategory, map[string][]domain.IncomeEntry, error) {
	budgets := make(map[string][]domain.BudgetCategory, len(eventIDs))
	incomes := make(map[string][]domain.IncomeEntry, len(eventIDs))
	if len(eventIDs) == 0 {
		return budgets, incomes, nil
	}

	budgetQuery := `
		SELECT category_id, event_id, category, planned_amount,
			created_at, created_by, last_updated_at, last_updated_by
		FROM budget_categories
		WHERE event_id = ANY($1)
		ORDER BY category;
	`
	rows, err := r.Pool.Query(ctx, budgetQuery, eventIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query budget categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m models.BudgetCategory
		if err := rows.Scan(&m.CategoryID, &m.EventID, &m.Category, &m.PlannedAmount,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, nil, fmt.Errorf("failed to scan budget category row: %w", err)
		}
		budgets[m.EventID] = append(budgets[m.EventID], mapping.ToDomainBudgetCategory(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed iterating budget category rows: %w", err)
	}

	incomeQuery := `
		SELECT income_id, event_id, source, amount, received_at, comment,
			created_at, created_by, last_updated_at, last_updated_by
		FROM income_entries
		WHERE event_id = ANY($1)
		ORDER BY received_at NULLS LAST, income_id;
	`
	incomeRows, err := r.Pool.Query(ctx, incomeQuery, eventIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query income entries: %w", err)
	}
	defer incomeRows.Close()
	for incomeRows.Next() {
		var m models.IncomeEntry
		if err := incomeRows.Scan(&m.IncomeID, &m.EventID, &m.Source, &m.Amount, &m.ReceivedAt, &m.Comment,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, nil, fmt.Errorf("failed to scan income entry row: %w", err)
		}
		incomes[m.EventID] = append(incomes[m.EventID], mapping.ToDomainIncomeEntry(m))
	}
	if err := incomeRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed iterating income entry rows: %w", err)
	}

	return budgets, incomes, nil
}

func (r *PgxEventRepository) attach(ctx context.Context, headers []models.FundingEvent) ([]domain.FundingEvent, error) {
	eventIDs := make([]string, len(headers))
	for i, h := range headers {
		eventIDs[i] = h.EventID
	}
	budgets, incomes, err := r.loadChildren(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	events := make([]domain.FundingEvent, len(headers))
	for i, h := range headers {
		event := mapping.ToDomainFundingEvent(h)
		if b := budgets[h.EventID]; b != nil {
			event.Budgets = b
		}
		if in := incomes[h.EventID]; in != nil {
			event.IncomeEntries = in
		}
		events[i] = event
	}
	return events, nil
}

func (r *PgxEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.FundingEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM funding_events WHERE event_id = $1;`, eventColumns)
	m, err := scanEvent(r.Pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find funding event %s: %w", eventID, err)
	}
	events, err := r.attach(ctx, []models.FundingEvent{*m})
	if err != nil {
		return nil, err
	}
	return &events[0], nil
}

func (r *PgxEventRepository) ListEvents(ctx context.Context) ([]domain.FundingEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM funding_events
		ORDER BY event_date NULLS LAST, name;
	`, eventColumns)
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query funding events: %w", err)
	}
	defer rows.Close()

	var headers []models.FundingEvent
	for rows.Next() {
		m, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan funding event row: %w", err)
		}
		headers = append(headers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating funding event rows: %w", err)
	}
	return r.attach(ctx, headers)
}

func (r *PgxEventRepository) SaveEvent(ctx context.Context, event domain.FundingEvent) error {
	m := mapping.ToModelFundingEvent(event)
	query := `
		INSERT INTO funding_events (event_id, name, event_date,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.EventID,
		m.Name,
		m.Date,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save funding event: %w", err)
	}
	return nil
}

// DeleteEvent removes the event with its budgets and income entries. Line
// item and cashbook references are cleared rather than cascaded so the
// expense history survives the event's removal; cashbook entries booked
// from the event's income entries go with them.
func (r *PgxEventRepository) DeleteEvent(ctx context.Context, eventID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `UPDATE line_items SET funding_event_id = NULL WHERE funding_event_id = $1;`, eventID); err != nil {
		return fmt.Errorf("failed to unlink line items from event %s: %w", eventID, err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE line_items SET budget_category_id = NULL
		WHERE budget_category_id IN (SELECT category_id FROM budget_categories WHERE event_id = $1);
	`, eventID); err != nil {
		return fmt.Errorf("failed to unlink line items from budgets of event %s: %w", eventID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM budget_categories WHERE event_id = $1;`, eventID); err != nil {
		return fmt.Errorf("failed to delete budgets of event %s: %w", eventID, err)
	}
	if _, err := tx.Exec(ctx, `UPDATE cashbook_entries SET funding_event_id = NULL WHERE funding_event_id = $1;`, eventID); err != nil {
		return fmt.Errorf("failed to unlink cashbook entries from event %s: %w", eventID, err)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM cashbook_entries
		WHERE income_entry_id IN (SELECT income_id FROM income_entries WHERE event_id = $1);
	`, eventID); err != nil {
		return fmt.Errorf("failed to delete cashbook entries of income entries of event %s: %w", eventID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM income_entries WHERE event_id = $1;`, eventID); err != nil {
		return fmt.Errorf("failed to delete income entries of event %s: %w", eventID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM funding_events WHERE event_id = $1;`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete funding event %s: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return r.Commit(ctx, tx)
}

func (r *PgxEventRepository) SaveBudgetCategory(ctx context.Context, category domain.BudgetCategory) error {
	m := mapping.ToModelBudgetCategory(category)
	query := `
		INSERT INTO budget_categories (category_id, event_id, category, planned_amount,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CategoryID,
		m.EventID,
		m.Category,
		m.PlannedAmount,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save budget category: %w", err)
	}
	return nil
}

func (r *PgxEventRepository) DeleteBudgetCategory(ctx context.Context, categoryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `UPDATE line_items SET budget_category_id = NULL WHERE budget_category_id = $1;`, categoryID); err != nil {
		return fmt.Errorf("failed to unlink line items from budget category %s: %w", categoryID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM budget_categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete budget category %s: %w", categoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return r.Commit(ctx, tx)
}

func (r *PgxEventRepository) SaveIncomeEntry(ctx context.Context, entry domain.IncomeEntry) error {
	m := mapping.ToModelIncomeEntry(entry)
	query := `
		INSERT INTO income_entries (income_id, event_id, source, amount, received_at, comment,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.IncomeID,
		m.EventID,
		m.Source,
		m.Amount,
		m.ReceivedAt,
		m.Comment,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save income entry: %w", err)
	}
	return nil
}

func (r *PgxEventRepository) FindIncomeEntryByID(ctx context.Context, incomeID string) (*domain.IncomeEntry, error) {
	query := `
		SELECT income_id, event_id, source, amount, received_at, comment,
			created_at, created_by, last_updated_at, last_updated_by
		FROM income_entries
		WHERE income_id = $1;
	`
	var m models.IncomeEntry
	err := r.Pool.QueryRow(ctx, query, incomeID).Scan(
		&m.IncomeID,
		&m.EventID,
		&m.Source,
		&m.Amount,
		&m.ReceivedAt,
		&m.Comment,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find income entry %s: %w", incomeID, err)
	}
	entry := mapping.ToDomainIncomeEntry(m)
	return &entry, nil
}

// DeleteIncomeEntry removes an income entry together with the cashbook
// entries booked from it.
func (r *PgxEventRepository) DeleteIncomeEntry(ctx context.Context, incomeID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM cashbook_entries WHERE income_entry_id = $1;`, incomeID); err != nil {
		return fmt.Errorf("failed to delete cashbook entries of income entry %s: %w", incomeID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM income_entries WHERE income_id = $1;`, incomeID)
	if err != nil {
		return fmt.Errorf("failed to delete income entry %s: %w", incomeID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return r.Commit(ctx, tx)
}
