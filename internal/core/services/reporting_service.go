package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
)

// reportingService builds planned-vs-actual reconciliation reports per
// funding event. It aggregates over full repository snapshots in memory at
// full decimal precision; rounding happens only when the DTO layer formats
// the report for display.
type reportingService struct {
	BaseService
	eventRepo   portsrepo.EventRepositoryFacade
	requestRepo portsrepo.RequestRepositoryFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(eventRepo portsrepo.EventRepositoryFacade, requestRepo portsrepo.RequestRepositoryFacade, userSvc portssvc.UserReaderSvc) portssvc.ReportingSvcFacade {
	return &reportingService{
		BaseService: BaseService{Users: userSvc},
		eventRepo:   eventRepo,
		requestRepo: requestRepo,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// eventInRange applies the inclusive date bounds. An undated event passes
// only when neither bound is set.
func eventInRange(e *domain.FundingEvent, from, to *time.Time) bool {
	if e.Date == nil {
		return from == nil && to == nil
	}
	if from != nil && e.Date.Before(*from) {
		return false
	}
	if to != nil && e.Date.After(*to) {
		return false
	}
	return true
}

// EventReports produces the reconciliation for every funding event inside
// the inclusive range, together with the range totals. Actual spend counts
// only line items whose parent request is approved or paid; items of pending
// and rejected requests are bucketed separately and never enter the
// per-category breakdowns.
func (s *reportingService) EventReports(ctx context.Context, from, to *time.Time) ([]domain.EventReport, domain.EventReportSummary, error) {
	summary := domain.EventReportSummary{TotalPlanned: decimal.Zero, TotalActual: decimal.Zero}

	events, err := s.eventRepo.ListEvents(ctx)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to load funding events: %w", err)
	}
	requests, err := s.requestRepo.ListRequests(ctx)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to load requests: %w", err)
	}

	// Bucket line items by the event they are attributed to, keeping the
	// parent request's status alongside.
	type attributedItem struct {
		item   domain.LineItem
		status domain.RequestStatus
	}
	itemsByEvent := make(map[string][]attributedItem)
	for _, r := range requests {
		for _, item := range r.Items {
			if item.FundingEventID == nil {
				continue
			}
			itemsByEvent[*item.FundingEventID] = append(itemsByEvent[*item.FundingEventID], attributedItem{item: item, status: r.Status})
		}
	}

	reports := make([]domain.EventReport, 0, len(events))
	for i := range events {
		event := &events[i]
		if !eventInRange(event, from, to) {
			continue
		}

		report := domain.EventReport{
			EventID:    event.EventID,
			Name:       event.Name,
			Planned:    event.TotalPlanned(),
			Actual:     decimal.Zero,
			Pending:    decimal.Zero,
			Rejected:   decimal.Zero,
			Income:     event.TotalIncome(),
			Categories: make([]domain.CategoryBreakdown, len(event.Budgets)),
			Unassigned: []domain.LineItem{},
		}
		if event.Date != nil {
			date := event.Date.Format("2006-01-02")
			report.Date = &date
		}

		categoryIndex := make(map[string]int, len(event.Budgets))
		for j, b := range event.Budgets {
			report.Categories[j] = domain.CategoryBreakdown{
				CategoryID: b.CategoryID,
				Category:   b.Category,
				Planned:    b.PlannedAmount,
				Actual:     decimal.Zero,
				Items:      []domain.LineItem{},
			}
			categoryIndex[b.CategoryID] = j
		}

		for _, ai := range itemsByEvent[event.EventID] {
			switch {
			case ai.status.CountsAsSpent():
				report.Actual = report.Actual.Add(ai.item.Amount)
				if ai.item.BudgetCategoryID != nil {
					if j, ok := categoryIndex[*ai.item.BudgetCategoryID]; ok {
						report.Categories[j].Actual = report.Categories[j].Actual.Add(ai.item.Amount)
						report.Categories[j].Items = append(report.Categories[j].Items, ai.item)
						continue
					}
				}
				report.Unassigned = append(report.Unassigned, ai.item)
			case ai.status == domain.StatusRejected:
				report.Rejected = report.Rejected.Add(ai.item.Amount)
			default:
				report.Pending = report.Pending.Add(ai.item.Amount)
			}
		}

		report.Balance = report.Income.Sub(report.Actual)
		summary.TotalPlanned = summary.TotalPlanned.Add(report.Planned)
		summary.TotalActual = summary.TotalActual.Add(report.Actual)
		reports = append(reports, report)
	}

	return reports, summary, nil
}
