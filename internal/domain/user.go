package domain

import "time"

// User is an account able to own, be assigned to, or log time on tasks.
// Share marks portal users, who can read but never be assigned or manage teams.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	Share        bool
	CompanyID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Internal reports whether the user is a non-portal account.
func (u *User) Internal() bool {
	return u != nil && !u.Share
}

// Assignable reports whether the user may be chosen as a subtask assignee.
func (u *User) Assignable() bool {
	return u.Internal() && u.Active
}
