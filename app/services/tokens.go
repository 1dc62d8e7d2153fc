package services

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// newToken issues an opaque account token. UUIDv4 gives 122 bits of
// randomness, which is the unguessability bar for both verification and reset
// tokens here; neither token grants access by itself without the matching row.
func newToken() string {
	return uuid.NewString()
}

func verificationURL(baseURL, token string) string {
	return fmt.Sprintf("%s/account/v1/verify-email?token=%s", baseURL, url.QueryEscape(token))
}

func passwordResetURL(baseURL, email, token string) string {
	return fmt.Sprintf("%s/account/v1/reset-password?email=%s&token=%s",
		baseURL, url.QueryEscape(email), url.QueryEscape(token))
}
