package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/cryptox"
	"github.com/dmitrijs2005/tripkeeper/internal/identity"
)

const (
	saltLength        = 16
	minPasswordLength = 8
	minDisplayNameLen = 2
)

// Provider implements identity.Provider over the API client. It owns the
// salt/verifier derivation so the rest of the client never handles raw
// passwords, and fans sign-in state changes out to registered callbacks.
type Provider struct {
	client Client

	mu        sync.Mutex
	current   *identity.Principal
	callbacks []func(*identity.Principal)
}

func NewProvider(client Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) SignUp(ctx context.Context, email string, password []byte, displayName string) (*identity.Principal, error) {
	// Reject bad input before deriving anything or touching the network.
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}
	if len(strings.TrimSpace(displayName)) < minDisplayNameLen {
		return nil, fmt.Errorf("%w: display name must be at least %d characters", common.ErrorValidation, minDisplayNameLen)
	}

	salt := common.GenerateRandByteArray(saltLength)
	verifier := cryptox.DeriveVerifier(password, salt)

	if err := p.client.Register(ctx, email, displayName, salt, verifier); err != nil {
		return nil, err
	}
	return p.signIn(ctx, email, verifier)
}

func (p *Provider) SignIn(ctx context.Context, email string, password []byte) (*identity.Principal, error) {
	salt, err := p.client.GetSalt(ctx, email)
	if err != nil {
		return nil, err
	}
	return p.signIn(ctx, email, cryptox.DeriveVerifier(password, salt))
}

func (p *Provider) signIn(ctx context.Context, email string, verifier []byte) (*identity.Principal, error) {
	principal, err := p.client.Login(ctx, email, verifier)
	if err != nil {
		return nil, err
	}
	p.setCurrent(principal)
	return principal, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.client.Logout(ctx); err != nil {
		return err
	}
	p.setCurrent(nil)
	return nil
}

func (p *Provider) Current() *identity.Principal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Reload fetches the principal's latest server-side state. The returned
// principal becomes current only if the session still belongs to the same
// user.
func (p *Provider) Reload(ctx context.Context, _ *identity.Principal) (*identity.Principal, error) {
	principal, err := p.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.current != nil && p.current.UID == principal.UID {
		p.current = principal
	}
	p.mu.Unlock()
	return principal, nil
}

func (p *Provider) SendVerificationEmail(ctx context.Context, _ *identity.Principal) error {
	return p.client.SendVerificationEmail(ctx)
}

func (p *Provider) OnStateChanged(fn func(*identity.Principal)) {
	p.mu.Lock()
	p.callbacks = append(p.callbacks, fn)
	p.mu.Unlock()
}

func (p *Provider) setCurrent(principal *identity.Principal) {
	p.mu.Lock()
	p.current = principal
	callbacks := make([]func(*identity.Principal), len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(principal)
	}
}
