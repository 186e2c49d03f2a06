package services

import (
	"context"
	"time"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
)

// ReportingSvcFacade defines operations for budget reconciliation reports.
type ReportingSvcFacade interface {
	// EventReports produces the planned-vs-actual reconciliation for every
	// funding event whose date falls inside the inclusive range (nil bounds
	// impose no constraint; undated events pass only an unbounded range),
	// together with the range totals.
	EventReports(ctx context.Context, from, to *time.Time) ([]domain.EventReport, domain.EventReportSummary, error)
}
