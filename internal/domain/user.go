package domain

import "time"

// User is a platform account. Requests reference users by stable ID through
// ReporterID and AssigneeID.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}
