package domain

import (
	"strings"
	"time"
)

// UserRole defines the application-wide role of a user.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"  // Treasurers/board members; may decide requests and manage budgets.
	RoleMember UserRole = "MEMBER" // Regular members; may submit and view their own requests.
	RoleGuest  UserRole = "GUEST"  // Authenticated but not yet assigned; read-only on own data.
)

// CanManageRequests reports whether the role may decide request statuses,
// delete foreign requests, edit budgets and write cashbook entries.
// All privileged checks go through this single capability function.
func (r UserRole) CanManageRequests() bool {
	return r == RoleAdmin
}

// CanSubmitRequests reports whether the role may file reimbursement
// requests. Guests stay read-only until an admin assigns them a role.
func (r UserRole) CanSubmitRequests() bool {
	return r == RoleAdmin || r == RoleMember
}

// IsValid reports whether the role is a known member of the enum.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// User represents a user of the application in the domain.
type User struct {
	UserID       string   `json:"userID"` // Primary Key (e.g., UUID)
	Username     string   `json:"username"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"`
	// Refresh token details for session renewal. Only the SHA256 hash is stored.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}

// Name returns the display name used in request listings and filters.
func (u *User) Name() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// GoogleUserInfo holds the subset of the Google ID token payload the
// application cares about when logging a user in via Google.
type GoogleUserInfo struct {
	Sub           string `json:"sub"` // Google's stable user ID
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}
