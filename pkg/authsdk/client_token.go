package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// PasswordGrant exchanges user credentials for an access and refresh token.
func (c *SDKClient) PasswordGrant(ctx context.Context, username, password string) (*TokenResponse, error) {
	return c.requestToken(ctx, url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	})
}

// RefreshGrant exchanges a refresh token for a new access token. The current
// access token, when given, is sent as the bearer token so the server can
// retire it.
func (c *SDKClient) RefreshGrant(ctx context.Context, refreshToken string, currentAccess ...string) (*TokenResponse, error) {
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}, currentAccess...)
}

// RevokeToken deletes token on behalf of the user owning accessToken.
func (c *SDKClient) RevokeToken(ctx context.Context, accessToken, token, hint string) error {
	body, err := jsonBody(RevokeRequest{Token: token, TokenTypeHint: hint})
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/authentication/revoke", body, map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + accessToken,
	})
	if err != nil {
		return err
	}

	var out struct{}
	return decodeJSON(resp, &out, http.StatusOK)
}

func (c *SDKClient) requestToken(ctx context.Context, data url.Values, bearer ...string) (*TokenResponse, error) {
	data.Set("client_id", c.ClientID)
	data.Set("client_secret", c.ClientSecret)

	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	if len(bearer) > 0 && bearer[0] != "" {
		headers["Authorization"] = "Bearer " + bearer[0]
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/authentication/token", strings.NewReader(data.Encode()), headers)
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}
