package domain

import "time"

// User represents an account that can own and be assigned tasks.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the public view of a user embedded in task payloads.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// Summary strips everything but the identifying fields.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
