package mapping

import (
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/models"
)

// ToModelFundingEvent converts a domain FundingEvent to its model (header only)
func ToModelFundingEvent(d domain.FundingEvent) models.FundingEvent {
	return models.FundingEvent{
		EventID:     d.EventID,
		Name:        d.Name,
		Date:        d.Date,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFundingEvent converts a model FundingEvent to its domain form.
// Budgets and income entries are attached by the repository.
func ToDomainFundingEvent(m models.FundingEvent) domain.FundingEvent {
	return domain.FundingEvent{
		EventID:       m.EventID,
		Name:          m.Name,
		Date:          m.Date,
		Budgets:       []domain.BudgetCategory{},
		IncomeEntries: []domain.IncomeEntry{},
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBudgetCategory converts a domain BudgetCategory to a model BudgetCategory
func ToModelBudgetCategory(d domain.BudgetCategory) models.BudgetCategory {
	return models.BudgetCategory{
		CategoryID:    d.CategoryID,
		EventID:       d.EventID,
		Category:      d.Category,
		PlannedAmount: d.PlannedAmount,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudgetCategory converts a model BudgetCategory to a domain BudgetCategory
func ToDomainBudgetCategory(m models.BudgetCategory) domain.BudgetCategory {
	return domain.BudgetCategory{
		CategoryID:    m.CategoryID,
		EventID:       m.EventID,
		Category:      m.Category,
		PlannedAmount: m.PlannedAmount,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelIncomeEntry converts a domain IncomeEntry to a model IncomeEntry
func ToModelIncomeEntry(d domain.IncomeEntry) models.IncomeEntry {
	return models.IncomeEntry{
		IncomeID:    d.IncomeID,
		EventID:     d.EventID,
		Source:      d.Source,
		Amount:      d.Amount,
		ReceivedAt:  d.ReceivedAt,
		Comment:     d.Comment,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainIncomeEntry converts a model IncomeEntry to a domain IncomeEntry
func ToDomainIncomeEntry(m models.IncomeEntry) domain.IncomeEntry {
	return domain.IncomeEntry{
		IncomeID:    m.IncomeID,
		EventID:     m.EventID,
		Source:      m.Source,
		Amount:      m.Amount,
		ReceivedAt:  m.ReceivedAt,
		Comment:     m.Comment,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
