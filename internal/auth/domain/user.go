package domain

import "time"

type UserStatus string

const (
	UserActive UserStatus = "active"
	UserLocked UserStatus = "locked"
	// UserSuspended accounts cannot sign in at all.
	UserSuspended UserStatus = "inactive"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // argon2id PHC string, or bcrypt for imported accounts
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSignIn reports whether the account status allows password sign in.
func (u User) CanSignIn() bool {
	return u.Status == UserActive || u.Status == ""
}
