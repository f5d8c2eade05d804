package domain

import "time"

// Client is a registered front-end application, identified by a slug and a
// shared secret.
type Client struct {
	ID         string
	Slug       string
	Name       string
	SecretHash string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
