// Package identity defines the narrow contract the client core uses to talk
// to the hosted identity provider. The concrete implementation lives in the
// API client; tests use hand-written fakes.
package identity

import (
	"context"
	"strings"
)

// Principal is the authenticated identity returned by the provider.
type Principal struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// BestDisplayName returns the profile display name, falling back to the
// local part of the email address when the profile has none.
func (p *Principal) BestDisplayName() string {
	if p == nil {
		return ""
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if at := strings.IndexByte(p.Email, '@'); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}

// Provider exposes identity operations to the client core.
//
// Contract:
//   - SignUp/SignIn establish a session with the backend and update the
//     current principal.
//   - SignOut clears the session.
//   - Current returns the signed-in principal, or nil.
//   - Reload re-fetches the principal's latest server-side state, e.g. to
//     catch out-of-band email verification.
//   - SendVerificationEmail asks the backend to issue a verification mail.
//   - OnStateChanged registers a callback invoked with the new principal
//     (or nil) whenever sign-in state changes.
//
// All methods must honor context cancellation/timeouts.
type Provider interface {
	SignUp(ctx context.Context, email string, password []byte, displayName string) (*Principal, error)
	SignIn(ctx context.Context, email string, password []byte) (*Principal, error)
	SignOut(ctx context.Context) error
	Current() *Principal
	Reload(ctx context.Context, p *Principal) (*Principal, error)
	SendVerificationEmail(ctx context.Context, p *Principal) error
	OnStateChanged(fn func(*Principal))
}
