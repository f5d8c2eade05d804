package authsdk

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Errors []APIError `json:"errors"`
}

// TokenResponse is returned by POST /authentication/token. RefreshToken is
// only present on the password grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// TokenRequest is the JSON form of the token endpoint body. The same field
// names are accepted as application/x-www-form-urlencoded.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// PasswordResetRequest is the body of PUT /authentication/passwordreset.
type PasswordResetRequest struct {
	PasswordReset []PasswordReset `json:"passwordreset"`
}

type PasswordReset struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
	NePassword2 string `json:"ne2Password"`
}

// ResetLinkRequest is the body of POST /authentication/passwordreset.
type ResetLinkRequest struct {
	PasswordReset []ResetLink `json:"passwordreset"`
}

type ResetLink struct {
	Email string `json:"email"`
}

// MessageResponse wraps the confirmation returned by both reset endpoints.
type MessageResponse struct {
	PasswordReset []Message `json:"passwordreset"`
}

type Message struct {
	Message string `json:"message"`
}

// RevokeRequest is the body of POST /authentication/revoke.
type RevokeRequest struct {
	Token         string `json:"token"`
	TokenTypeHint string `json:"token_type_hint,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists dependency status for /readyz.
type HealthChecks struct {
	Database   string `json:"database"`
	BruteStore string `json:"brute_store"`
}
