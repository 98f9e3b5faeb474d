package user

import "time"

// Role is the access level assigned to a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// DefaultRole is assigned when a user is created without an explicit role.
const DefaultRole = RoleUser

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

// TimestampLayout renders timestamps as ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// User represents a user entity in the system.
type User struct {
	ID        string    // ID is the immutable unique identifier (UUID v4)
	Name      string    // Name is the full name of the user
	Email     string    // Email is unique across all live users
	Role      Role      // Role is one of admin, user, guest
	CreatedAt time.Time // CreatedAt is set once at creation
	UpdatedAt time.Time // UpdatedAt is refreshed on every successful update
}

// Patch holds the optional fields of a partial update. Nil means "leave untouched".
type Patch struct {
	Name  *string
	Email *string
	Role  *Role
}

// Apply merges the provided fields over u. ID and CreatedAt are never touched.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// FormatTimestamp renders t using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
