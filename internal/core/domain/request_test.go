package domain_test

import (
	"testing"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func stringPtr(s string) *string {
	return &s
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func TestRequestStatus_IsValid(t *testing.T) {
	valid := []domain.RequestStatus{
		domain.StatusPendingDecision,
		domain.StatusApproved,
		domain.StatusRejected,
		domain.StatusPaid,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "%s should be valid", s)
	}
	assert.False(t, domain.RequestStatus("CANCELLED").IsValid())
	assert.False(t, domain.RequestStatus("approved").IsValid(), "enum comparison is case sensitive")
	assert.False(t, domain.RequestStatus("").IsValid())
}

func TestUserRole_Capabilities(t *testing.T) {
	assert.True(t, domain.RoleAdmin.CanManageRequests())
	assert.False(t, domain.RoleMember.CanManageRequests())
	assert.False(t, domain.RoleGuest.CanManageRequests())

	assert.True(t, domain.RoleAdmin.CanSubmitRequests())
	assert.True(t, domain.RoleMember.CanSubmitRequests())
	assert.False(t, domain.RoleGuest.CanSubmitRequests(), "guests stay read-only")
}

func TestRequestStatus_CountsAsSpent(t *testing.T) {
	assert.True(t, domain.StatusApproved.CountsAsSpent())
	assert.True(t, domain.StatusPaid.CountsAsSpent())
	assert.False(t, domain.StatusPendingDecision.CountsAsSpent())
	assert.False(t, domain.StatusRejected.CountsAsSpent())
}

func TestReimbursementRequest_TotalAmount(t *testing.T) {
	request := domain.ReimbursementRequest{
		Items: []domain.LineItem{
			{Amount: decimal.RequireFromString("10.10")},
			{Amount: decimal.RequireFromString("20.203")},
			{Amount: decimal.RequireFromString("0.007")},
		},
	}
	// Totals are kept at full precision; no intermediate rounding.
	assert.True(t, request.TotalAmount().Equal(decimal.RequireFromString("30.31")),
		"got %s", request.TotalAmount())

	empty := domain.ReimbursementRequest{}
	assert.True(t, empty.TotalAmount().IsZero())
}

func TestReimbursementRequest_ApplicantName(t *testing.T) {
	request := domain.ReimbursementRequest{
		Applicant: &domain.User{FirstName: "Erika", LastName: "Musterfrau"},
	}
	assert.Equal(t, "Erika Musterfrau", request.ApplicantName())

	// Falls back to the username when no name parts are set.
	request.Applicant = &domain.User{Username: "erika"}
	assert.Equal(t, "erika", request.ApplicantName())

	request.Applicant = nil
	assert.Equal(t, "", request.ApplicantName())
}
