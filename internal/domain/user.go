package domain

import (
	"strings"
	"time"
)

// Role is the authorization role of a back office user.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleScout   Role = "scout"
)

// Roles returns all valid roles.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleManager, RoleScout}
}

// Department is the optional organisational unit of a user.
type Department string

const (
	DepartmentManagement     Department = "management"
	DepartmentScouting       Department = "scouting"
	DepartmentTransfers      Department = "transfers"
	DepartmentAnalytics      Department = "analytics"
	DepartmentAdministration Department = "administration"
)

// User represents a users row. Email is write-once.
type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Department Department `json:"department,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// UserInput is the candidate submitted by the users form.
type UserInput struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Department Department `json:"department"`
	Phone      string     `json:"phone"`
	Bio        string     `json:"bio"`
}

// Apply copies the mutable fields of the input onto u. Email is never copied;
// it is set once when the record is provisioned.
func (in UserInput) Apply(u *User) {
	u.Name = strings.TrimSpace(in.Name)
	u.Role = in.Role
	u.Department = in.Department
	u.Phone = strings.TrimSpace(in.Phone)
	u.Bio = strings.TrimSpace(in.Bio)
}

// AuthUser holds credentials from auth_users. Its ID equals the users row ID.
type AuthUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PasswordReset is a pending single-use reset token (stored hashed).
type PasswordReset struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
}
