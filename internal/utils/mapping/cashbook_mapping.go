package mapping

import (
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/models"
)

// ToModelCashbookEntry converts a domain CashbookEntry to a model CashbookEntry
func ToModelCashbookEntry(d domain.CashbookEntry) models.CashbookEntry {
	return models.CashbookEntry{
		EntryID:        d.EntryID,
		Direction:      string(d.Direction),
		Amount:         d.Amount,
		BookingDate:    d.BookingDate,
		Comment:        d.Comment,
		RequestID:      d.RequestID,
		IncomeEntryID:  d.IncomeEntryID,
		FundingEventID: d.FundingEventID,
		BalanceBefore:  d.BalanceBefore,
		BalanceAfter:   d.BalanceAfter,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCashbookEntry converts a model CashbookEntry to a domain CashbookEntry
func ToDomainCashbookEntry(m models.CashbookEntry) domain.CashbookEntry {
	return domain.CashbookEntry{
		EntryID:        m.EntryID,
		Direction:      domain.CashbookDirection(m.Direction),
		Amount:         m.Amount,
		BookingDate:    m.BookingDate,
		Comment:        m.Comment,
		RequestID:      m.RequestID,
		IncomeEntryID:  m.IncomeEntryID,
		FundingEventID: m.FundingEventID,
		BalanceBefore:  m.BalanceBefore,
		BalanceAfter:   m.BalanceAfter,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
