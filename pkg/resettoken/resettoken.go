// Package resettoken implements stateless password reset tokens.
//
// A token carries its expiry and the account email in clear text plus an
// HMAC-SHA256 digest keyed by the installation secret over
// expiry|email|passwordHash. Nothing is stored: verification recomputes the
// digest from the user's current password hash, so a token stops verifying
// as soon as the password it was issued against is replaced.
package resettoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalid is returned for malformed or tampered tokens.
	ErrInvalid = errors.New("resettoken: invalid token")
	// ErrExpired is returned when the embedded expiry has passed.
	ErrExpired = errors.New("resettoken: token expired")
)

const sep = "|"

// Parts is the clear-text content of a token.
type Parts struct {
	Email     string
	ExpiresAt time.Time
	digest    string
}

// Generate builds a token for email, valid until expiresAt. The token is
// deterministic for a given set of inputs.
func Generate(email string, expiresAt time.Time, secret, passwordHash string) string {
	expires := strconv.FormatInt(expiresAt.UnixMilli(), 10)
	raw := expires + sep + email + sep + digest(expires, email, secret, passwordHash)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode extracts the email and expiry without checking the digest. Callers
// use the email to look up the password hash needed by Verify.
func Decode(token string) (Parts, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return Parts{}, ErrInvalid
	}

	s := string(raw)
	first := strings.Index(s, sep)
	last := strings.LastIndex(s, sep)
	if first <= 0 || last <= first+1 || last == len(s)-1 {
		return Parts{}, ErrInvalid
	}

	ms, err := strconv.ParseInt(s[:first], 10, 64)
	if err != nil || ms <= 0 {
		return Parts{}, ErrInvalid
	}

	return Parts{
		Email:     s[first+1 : last],
		ExpiresAt: time.UnixMilli(ms),
		digest:    s[last+1:],
	}, nil
}

// Verify checks token against the installation secret and the user's current
// password hash at time now, returning the embedded email.
func Verify(token, secret, passwordHash string, now time.Time) (string, error) {
	p, err := Decode(token)
	if err != nil {
		return "", err
	}
	if now.After(p.ExpiresAt) {
		return "", ErrExpired
	}

	expires := strconv.FormatInt(p.ExpiresAt.UnixMilli(), 10)
	want := digest(expires, p.Email, secret, passwordHash)
	if !hmac.Equal([]byte(want), []byte(p.digest)) {
		return "", ErrInvalid
	}
	return p.Email, nil
}

func digest(expires, email, secret, passwordHash string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(expires + sep + email + sep + passwordHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
