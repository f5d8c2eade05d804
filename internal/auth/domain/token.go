package domain

import "time"

const TokenTypeBearer = "Bearer"

// TokenPair is what the token endpoint returns. RefreshToken is empty on the
// refresh grant.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    time.Duration
}

// AccessToken is the stored record of an issued bearer token. Only the
// fingerprint of the token string is persisted.
type AccessToken struct {
	ID        string
	UserID    string
	ClientID  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshToken is the stored record of a refresh token.
type RefreshToken struct {
	ID        string
	UserID    string
	ClientID  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t AccessToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }

func (t RefreshToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }
