package repositories

import (
	"context"
	"time"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
)

// CashbookCursor identifies the last entry of a served page. It carries all
// three ordering columns so paging resumes after the exact row even when
// several entries share a booking date and creation time.
type CashbookCursor struct {
	BookingDate time.Time
	CreatedAt   time.Time
	EntryID     string
}

// CashbookReader defines read operations for the cashbook ledger
type CashbookReader interface {
	// ListEntries retrieves cashbook entries of both directions, ordered by
	// booking date ascending with ties broken by insertion order. When the
	// cursor is non-nil only entries strictly after it are returned;
	// a limit of 0 disables the limit.
	ListEntries(ctx context.Context, limit int, after *CashbookCursor) ([]domain.CashbookEntry, error)

	// FindLatestEntry retrieves the chronologically last entry across both
	// directions, or apperrors.ErrNotFound when the cashbook is empty.
	FindLatestEntry(ctx context.Context) (*domain.CashbookEntry, error)

	// FindEntryByID retrieves one cashbook entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.CashbookEntry, error)
}

// CashbookWriter defines write operations for the cashbook ledger
type CashbookWriter interface {
	// SaveEntry persists a new entry with its precomputed running balances.
	SaveEntry(ctx context.Context, entry domain.CashbookEntry) error

	// DeleteEntry removes an entry. Stored balances of later entries are
	// deliberately left untouched.
	DeleteEntry(ctx context.Context, entryID string) error
}

// CashbookRepositoryFacade combines all cashbook repository interfaces
type CashbookRepositoryFacade interface {
	CashbookReader
	CashbookWriter
}
