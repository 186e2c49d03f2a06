package domain_test

import (
	"testing"
	"time"

	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func filterFixture() ([]domain.ReimbursementRequest, map[string]string) {
	eventNames := map[string]string{
		"event-summer": "Sommerfest",
		"event-winter": "Winterfeier",
	}
	requests := []domain.ReimbursementRequest{
		{
			RequestID:   "req-1",
			Applicant:   &domain.User{FirstName: "Anna", LastName: "Schmidt"},
			Comment:     "Getränke für das Sommerfest",
			Status:      domain.StatusApproved,
			SubmittedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			Items: []domain.LineItem{
				{Amount: decimal.RequireFromString("40.00"), FundingEventID: stringPtr("event-summer")},
				{Amount: decimal.RequireFromString("10.00")},
			},
		},
		{
			RequestID:   "req-2",
			Applicant:   &domain.User{FirstName: "Bernd", LastName: "Maier"},
			Comment:     "Deko",
			Status:      domain.StatusPendingDecision,
			SubmittedAt: time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC),
			Items: []domain.LineItem{
				{Amount: decimal.RequireFromString("120.50"), FundingEventID: stringPtr("event-winter")},
			},
		},
		{
			RequestID:   "req-3",
			Applicant:   &domain.User{FirstName: "Anna", LastName: "Schmidt"},
			Comment:     "Fahrtkosten",
			Status:      domain.StatusRejected,
			SubmittedAt: time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC),
			Items: []domain.LineItem{
				{Amount: decimal.RequireFromString("15.00")},
			},
		},
	}
	return requests, eventNames
}

func filteredIDs(requests []domain.ReimbursementRequest) []string {
	ids := make([]string, len(requests))
	for i, r := range requests {
		ids[i] = r.RequestID
	}
	return ids
}

func TestFilterRequests_ZeroFilterReturnsAll(t *testing.T) {
	requests, eventNames := filterFixture()
	assert.True(t, domain.RequestFilter{}.IsZero())
	got := domain.FilterRequests(requests, domain.RequestFilter{}, eventNames)
	assert.Equal(t, []string{"req-1", "req-2", "req-3"}, filteredIDs(got))
}

func TestFilterRequests_ApplicantNameCaseInsensitiveSubstring(t *testing.T) {
	requests, eventNames := filterFixture()
	got := domain.FilterRequests(requests, domain.RequestFilter{ApplicantName: "anna sch"}, eventNames)
	assert.Equal(t, []string{"req-1", "req-3"}, filteredIDs(got))
}

func TestFilterRequests_CommentSubstring(t *testing.T) {
	requests, eventNames := filterFixture()
	got := domain.FilterRequests(requests, domain.RequestFilter{Comment: "sommerfest"}, eventNames)
	assert.Equal(t, []string{"req-1"}, filteredIDs(got))
}

func TestFilterRequests_AmountBoundsAreInclusive(t *testing.T) {
	requests, eventNames := filterFixture()
	// req-1 totals exactly 50.00.
	got := domain.FilterRequests(requests, domain.RequestFilter{
		MinAmount: decimalPtr(decimal.RequireFromString("50.00")),
		MaxAmount: decimalPtr(decimal.RequireFromString("50.00")),
	}, eventNames)
	assert.Equal(t, []string{"req-1"}, filteredIDs(got))

	got = domain.FilterRequests(requests, domain.RequestFilter{
		MinAmount: decimalPtr(decimal.RequireFromString("50.01")),
	}, eventNames)
	assert.Equal(t, []string{"req-2"}, filteredIDs(got))
}

func TestFilterRequests_SubmittedRangeInclusive(t *testing.T) {
	requests, eventNames := filterFixture()
	from := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	got := domain.FilterRequests(requests, domain.RequestFilter{SubmittedFrom: &from, SubmittedTo: &to}, eventNames)
	assert.Equal(t, []string{"req-1", "req-3"}, filteredIDs(got))
}

func TestFilterRequests_EventNamesMatchAnyItem(t *testing.T) {
	requests, eventNames := filterFixture()
	got := domain.FilterRequests(requests, domain.RequestFilter{
		FundingEventNames: []string{"Sommerfest", "Winterfeier"},
	}, eventNames)
	assert.Equal(t, []string{"req-1", "req-2"}, filteredIDs(got))

	// Items without an event reference never match a named event.
	got = domain.FilterRequests(requests, domain.RequestFilter{
		FundingEventNames: []string{"Vereinsjubiläum"},
	}, eventNames)
	assert.Empty(t, got)
}

func TestFilterRequests_CriteriaCombineWithAnd(t *testing.T) {
	requests, eventNames := filterFixture()
	// Applicant matches req-1 and req-3, status narrows it to req-1 only.
	got := domain.FilterRequests(requests, domain.RequestFilter{
		ApplicantName: "Anna",
		Status:        domain.StatusApproved,
	}, eventNames)
	assert.Equal(t, []string{"req-1"}, filteredIDs(got))

	// Each criterion alone matches something, the conjunction matches nothing.
	got = domain.FilterRequests(requests, domain.RequestFilter{
		ApplicantName: "Bernd",
		Status:        domain.StatusApproved,
	}, eventNames)
	assert.Empty(t, got)
}

func TestFilterRequests_PureAndIdempotent(t *testing.T) {
	requests, eventNames := filterFixture()
	filter := domain.RequestFilter{Status: domain.StatusApproved}

	first := domain.FilterRequests(requests, filter, eventNames)
	second := domain.FilterRequests(requests, filter, eventNames)
	assert.Equal(t, first, second, "same criteria must yield the same result")

	// Filtering an already filtered set with the same criteria is a no-op.
	again := domain.FilterRequests(first, filter, eventNames)
	assert.Equal(t, first, again)

	// The input slice is never mutated.
	assert.Len(t, requests, 3)
	assert.Equal(t, "req-1", requests[0].RequestID)
}
