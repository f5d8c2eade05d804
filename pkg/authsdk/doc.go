/*
Package authsdk is the client SDK and wire model for the pressauth
authentication service.

The types in this package are shared with the server: handlers encode
TokenResponse and the password reset payloads, and write failures through
APIError so clients can decode them back into the same type.

# Tokens

	client := authsdk.NewSDKClient("https://cms.example.com", "ghost-admin", "not_available")

	tokens, err := client.PasswordGrant(ctx, "editor@example.com", "s3cret-pass")
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorType == authsdk.ErrorTypeNotFound {
		// unknown user
	}

	// The refresh grant returns a new access token only. The refresh token
	// from the password grant stays valid.
	next, err := client.RefreshGrant(ctx, tokens.RefreshToken)

# Sessions

A Session keeps the token pair and refreshes the access token shortly before
it expires:

	session, err := client.AuthenticateWithPassword(ctx, username, password)
	err = session.Revoke(ctx)

# Password reset

	err := client.RequestPasswordReset(ctx, "editor@example.com")
	msg, err := client.ResetPassword(ctx, tokenFromEmail, "new-password", "new-password")
*/
package authsdk
