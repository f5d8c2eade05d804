package authsdk

import (
	"context"
	"net/http"
)

// RequestPasswordReset asks the server to send a reset link to email.
func (c *SDKClient) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return c.passwordReset(ctx, http.MethodPost, ResetLinkRequest{
		PasswordReset: []ResetLink{{Email: email}},
	})
}

// ResetPassword consumes a reset token and sets a new password.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword, confirm string) (string, error) {
	return c.passwordReset(ctx, http.MethodPut, PasswordResetRequest{
		PasswordReset: []PasswordReset{{Token: token, NewPassword: newPassword, NePassword2: confirm}},
	})
}

func (c *SDKClient) passwordReset(ctx context.Context, method string, payload any) (string, error) {
	body, err := jsonBody(payload)
	if err != nil {
		return "", err
	}

	resp, err := c.doRequest(ctx, method, "/authentication/passwordreset", body, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return "", err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	if len(out.PasswordReset) == 0 {
		return "", nil
	}
	return out.PasswordReset[0].Message, nil
}
