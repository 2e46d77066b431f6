package domain

import "time"

// Canonical role names. Roles are created idempotently at bootstrap and are
// always referenced by name, never by id.
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// User is a principal that can authenticate against the control plane.
type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	DisplayName  string     `json:"display_name,omitempty"`
	Active       bool       `json:"active" gorm:"not null;default:true"`
	TenantID     *int64     `json:"tenant_id,omitempty" gorm:"index"`
	Roles        []Role     `json:"roles,omitempty" gorm:"many2many:user_roles"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RoleNames returns the user's role set as plain names for token claims.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role is a named permission bucket, many-to-many with User.
type Role struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:32;uniqueIndex;not null"`
}
