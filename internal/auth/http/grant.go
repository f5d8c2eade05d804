package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/pressauth/pkg/authsdk"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
)

const maxBodyBytes = 1 << 20

const (
	grantPassword = "password"
	grantRefresh  = "refresh_token"
)

// ClientCredentials identify the front-end application making the request.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// grant is one of PasswordGrant or RefreshGrant.
type grant interface {
	client() ClientCredentials
}

type PasswordGrant struct {
	ClientCredentials
	Username string
	Password string
}

type RefreshGrant struct {
	ClientCredentials
	RefreshToken string
	// AccessToken is the bearer token sent alongside the request, if any.
	AccessToken string
}

func (g PasswordGrant) client() ClientCredentials { return g.ClientCredentials }
func (g RefreshGrant) client() ClientCredentials  { return g.ClientCredentials }

// parseGrant reads a JSON or form encoded token request.
func parseGrant(w http.ResponseWriter, r *http.Request) (grant, *authsdk.APIError) {
	var req authsdk.TokenRequest

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, authsdk.ErrInvalidBody
		}
		mediaType = mt
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, authsdk.ErrInvalidBody
		}
	case "", "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, authsdk.ErrInvalidBody
		}
		req = authsdk.TokenRequest{
			GrantType:    r.PostForm.Get("grant_type"),
			Username:     r.PostForm.Get("username"),
			Password:     r.PostForm.Get("password"),
			RefreshToken: r.PostForm.Get("refresh_token"),
			ClientID:     r.PostForm.Get("client_id"),
			ClientSecret: r.PostForm.Get("client_secret"),
		}
	default:
		return nil, authsdk.ErrInvalidBody
	}

	creds := ClientCredentials{
		ClientID:     strings.TrimSpace(req.ClientID),
		ClientSecret: req.ClientSecret,
	}

	switch req.GrantType {
	case grantPassword:
		g := PasswordGrant{
			ClientCredentials: creds,
			Username:          strings.TrimSpace(req.Username),
			Password:          req.Password,
		}
		if g.Username == "" || g.Password == "" {
			return nil, authsdk.ErrMissingCredentials
		}
		return g, nil

	case grantRefresh:
		g := RefreshGrant{
			ClientCredentials: creds,
			RefreshToken:      strings.TrimSpace(req.RefreshToken),
		}
		if g.RefreshToken == "" {
			return nil, authsdk.ErrMissingCredentials
		}
		g.AccessToken, _ = httpx.BearerToken(r)
		return g, nil

	default:
		return nil, authsdk.ErrUnsupportedGrant
	}
}
