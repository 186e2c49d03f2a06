package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestFilter describes the optional criteria applied when listing
// reimbursement requests. Zero-valued fields impose no constraint; all
// provided criteria are combined with logical AND.
type RequestFilter struct {
	ApplicantName     string           // case-insensitive substring on the applicant's display name
	Comment           string           // case-insensitive substring on the request comment
	MinAmount         *decimal.Decimal // inclusive lower bound on the request total
	MaxAmount         *decimal.Decimal // inclusive upper bound on the request total
	Status            RequestStatus    // exact match
	SubmittedFrom     *time.Time       // inclusive
	SubmittedTo       *time.Time       // inclusive
	FundingEventNames []string         // request matches if ANY item belongs to a named event
}

// IsZero reports whether no criteria are set.
func (f RequestFilter) IsZero() bool {
	return f.ApplicantName == "" && f.Comment == "" && f.MinAmount == nil && f.MaxAmount == nil &&
		f.Status == "" && f.SubmittedFrom == nil && f.SubmittedTo == nil && len(f.FundingEventNames) == 0
}

// Matches reports whether a single request satisfies every set criterion.
// Event names are compared against the names resolved by eventNameByID.
func (f RequestFilter) Matches(r *ReimbursementRequest, eventNameByID map[string]string) bool {
	if f.ApplicantName != "" &&
		!strings.Contains(strings.ToLower(r.ApplicantName()), strings.ToLower(f.ApplicantName)) {
		return false
	}
	if f.Comment != "" &&
		!strings.Contains(strings.ToLower(r.Comment), strings.ToLower(f.Comment)) {
		return false
	}
	if f.MinAmount != nil || f.MaxAmount != nil {
		total := r.TotalAmount()
		if f.MinAmount != nil && total.LessThan(*f.MinAmount) {
			return false
		}
		if f.MaxAmount != nil && total.GreaterThan(*f.MaxAmount) {
			return false
		}
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.SubmittedFrom != nil && r.SubmittedAt.Before(*f.SubmittedFrom) {
		return false
	}
	if f.SubmittedTo != nil && r.SubmittedAt.After(*f.SubmittedTo) {
		return false
	}
	if len(f.FundingEventNames) > 0 {
		wanted := make(map[string]bool, len(f.FundingEventNames))
		for _, name := range f.FundingEventNames {
			wanted[name] = true
		}
		found := false
		for _, item := range r.Items {
			if item.FundingEventID == nil {
				continue
			}
			if wanted[eventNameByID[*item.FundingEventID]] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FilterRequests applies the filter to a request slice and returns the
// matching requests in their original order. The input is never mutated and
// no side effects occur, so applying the same criteria twice yields the same
// result.
func FilterRequests(requests []ReimbursementRequest, f RequestFilter, eventNameByID map[string]string) []ReimbursementRequest {
	if f.IsZero() {
		return requests
	}
	filtered := make([]ReimbursementRequest, 0, len(requests))
	for _, r := range requests {
		if f.Matches(&r, eventNameByID) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
