package entity

import "strings"

// UserType distinguishes employees from administrators
type UserType string

const (
	UserTypeEmployee UserType = "Employee"
	UserTypeAdmin    UserType = "Admin"
)

// User is the session record kept by the browser: a type and an email
type User struct {
	Type  UserType `json:"type"`
	Email string   `json:"email"`
}

// Valid reports whether the user carries a known type and a non-empty email
func (u User) Valid() bool {
	if strings.TrimSpace(u.Email) == "" {
		return false
	}
	return u.Type == UserTypeEmployee || u.Type == UserTypeAdmin
}

// IsAdmin reports whether the user is an administrator
func (u User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}
