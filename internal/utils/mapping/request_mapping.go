package mapping

import (
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/kassenwart/kassenwart_backend/internal/models"
)

// ToModelRequest converts a domain ReimbursementRequest to its model (header only)
func ToModelRequest(d domain.ReimbursementRequest) models.ReimbursementRequest {
	return models.ReimbursementRequest{
		RequestID:     d.RequestID,
		ApplicantID:   d.ApplicantID,
		IBAN:          d.IBAN,
		AccountHolder: d.AccountHolder,
		Comment:       d.Comment,
		Status:        string(d.Status),
		SubmittedAt:   d.SubmittedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRequest converts a model ReimbursementRequest to its domain form.
// Items and the applicant are attached by the repository.
func ToDomainRequest(m models.ReimbursementRequest) domain.ReimbursementRequest {
	return domain.ReimbursementRequest{
		RequestID:     m.RequestID,
		ApplicantID:   m.ApplicantID,
		IBAN:          m.IBAN,
		AccountHolder: m.AccountHolder,
		Comment:       m.Comment,
		Status:        domain.RequestStatus(m.Status),
		SubmittedAt:   m.SubmittedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain LineItem to a model LineItem
func ToModelLineItem(d domain.LineItem) models.LineItem {
	return models.LineItem{
		ItemID:           d.ItemID,
		RequestID:        d.RequestID,
		PositionLabel:    d.PositionLabel,
		Description:      d.Description,
		Amount:           d.Amount,
		ReceiptURL:       d.ReceiptURL,
		BudgetCategoryID: d.BudgetCategoryID,
		FundingEventID:   d.FundingEventID,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLineItem converts a model LineItem to a domain LineItem
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		ItemID:           m.ItemID,
		RequestID:        m.RequestID,
		PositionLabel:    m.PositionLabel,
		Description:      m.Description,
		Amount:           m.Amount,
		ReceiptURL:       m.ReceiptURL,
		BudgetCategoryID: m.BudgetCategoryID,
		FundingEventID:   m.FundingEventID,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
