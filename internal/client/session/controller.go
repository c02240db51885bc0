// Package session implements the client's session and email-verification
// controller. It is the single source of truth for "is the user allowed
// past the gate": it reconciles the identity provider's sign-in state with
// the remotely-stored email-verified flag into one derived boolean, and
// persists the user's "proceed without verifying" choice across launches.
//
// States: signed out → signed in unverified → authenticated. The gate only
// reopens through a full sign-out/sign-in cycle.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
	"github.com/dmitrijs2005/tripkeeper/internal/client/repositories/settings"
	"github.com/dmitrijs2005/tripkeeper/internal/docstore"
	"github.com/dmitrijs2005/tripkeeper/internal/identity"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
)

const (
	verificationAckKeyPrefix = "verification_acknowledged:"
	biometricEnabledPrefix   = "biometric_enabled:"
)

// State is a read-only snapshot of the session for the UI layer.
type State struct {
	UID                      string
	DisplayName              string
	IdentityConfirmed        bool
	VerificationAcknowledged bool
	EmailVerified            bool
	BiometricAuthenticated   bool
	IsAuthenticated          bool
}

// Controller owns the session state. All mutation happens under one mutex;
// results of asynchronous work are applied only if the owning principal is
// still signed in (stale completions are discarded).
type Controller struct {
	provider identity.Provider
	docs     docstore.Store
	settings settings.Repository
	log      logging.Logger

	mu                       sync.Mutex
	uid                      string
	displayName              string
	identityConfirmed        bool
	verificationAcknowledged bool
	emailVerified            bool
	biometricAuthenticated   bool
	isAuthenticated          bool

	sub docstore.Subscription
}

// NewController wires the controller to its collaborators and registers it
// for identity state changes. It does not block.
func NewController(provider identity.Provider, docs docstore.Store, st settings.Repository, log logging.Logger) *Controller {
	c := &Controller{
		provider: provider,
		docs:     docs,
		settings: st,
		log:      log.With("component", "session"),
	}
	provider.OnStateChanged(func(p *identity.Principal) {
		c.OnIdentityStateChanged(context.Background(), p)
	})
	return c
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		UID:                      c.uid,
		DisplayName:              c.displayName,
		IdentityConfirmed:        c.identityConfirmed,
		VerificationAcknowledged: c.verificationAcknowledged,
		EmailVerified:            c.emailVerified,
		BiometricAuthenticated:   c.biometricAuthenticated,
		IsAuthenticated:          c.isAuthenticated,
	}
}

// IsAuthenticated reports whether the user is past the gate.
func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isAuthenticated
}

// OnIdentityStateChanged reconciles the controller with a provider state
// change. A nil principal means signed out: all session flags reset, the
// verification subscription is torn down, and the persisted acknowledgement
// is cleared so the next sign-in prompts again. A non-nil principal confirms
// identity, restores the persisted acknowledgement for that user, and
// refreshes verification state.
func (c *Controller) OnIdentityStateChanged(ctx context.Context, p *identity.Principal) {
	c.mu.Lock()

	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}

	if p == nil {
		prevUID := c.uid
		c.uid = ""
		c.displayName = ""
		c.identityConfirmed = false
		c.verificationAcknowledged = false
		c.emailVerified = false
		c.biometricAuthenticated = false
		c.recomputeGate()
		c.mu.Unlock()

		if prevUID != "" {
			if err := c.settings.Delete(ctx, verificationAckKeyPrefix+prevUID); err != nil {
				c.log.Warn(ctx, "failed to clear verification acknowledgement", "error", err)
			}
		}
		return
	}

	if c.uid != p.UID {
		// A biometric pass belongs to the previous principal.
		c.biometricAuthenticated = false
	}
	c.uid = p.UID
	c.displayName = p.BestDisplayName()
	c.identityConfirmed = true
	c.emailVerified = p.EmailVerified
	c.mu.Unlock()

	ack, err := c.settings.GetBool(ctx, verificationAckKeyPrefix+p.UID)
	if err != nil {
		c.log.Warn(ctx, "failed to load verification acknowledgement", "error", err)
		ack = false
	}

	c.mu.Lock()
	if c.uid == p.UID {
		c.verificationAcknowledged = ack
		c.recomputeGate()
	}
	c.mu.Unlock()

	c.RefreshVerificationState(ctx, p)
}

// RefreshVerificationState re-fetches the principal from the provider to
// catch out-of-band verification, re-establishes the live subscription on
// the principal's user document, and reconciles. The refresh and the
// subscription race freely: both paths are idempotent and converge to the
// same terminal state.
func (c *Controller) RefreshVerificationState(ctx context.Context, p *identity.Principal) {
	if p == nil {
		return
	}
	uid := p.UID

	reloaded, err := c.provider.Reload(ctx, p)
	if err != nil {
		c.log.Warn(ctx, "principal reload failed", "error", err)
		reloaded = p
	}

	sub, err := c.docs.Subscribe(models.UserDocPath(uid), func(doc *docstore.Document) {
		c.applyVerificationDoc(uid, doc)
	})
	if err != nil {
		c.log.Warn(ctx, "verification subscription failed", "error", err)
	} else {
		c.mu.Lock()
		if c.uid != uid {
			// Principal changed while we were subscribing; discard.
			c.mu.Unlock()
			sub.Unsubscribe()
		} else {
			if c.sub != nil {
				c.sub.Unsubscribe()
			}
			c.sub = sub
			c.mu.Unlock()
		}
	}

	if reloaded.EmailVerified {
		// Mirror into the backend record. Idempotent merge; a failed write
		// self-heals on the next subscription tick.
		err := c.docs.Set(ctx, models.UserDocPath(uid), map[string]any{"email_verified": true}, true)
		if err != nil {
			c.log.Warn(ctx, "failed to mirror email verification", "error", err)
		}
		c.markVerified(ctx, uid)
	}
}

// applyVerificationDoc is the live-subscription callback. Results owned by
// a previous principal are discarded.
func (c *Controller) applyVerificationDoc(uid string, doc *docstore.Document) {
	ctx := context.Background()

	c.mu.Lock()
	if c.uid != uid {
		c.mu.Unlock()
		c.log.Debug(ctx, "discarding stale verification update", "uid", uid)
		return
	}
	c.emailVerified = doc.BoolField("email_verified")
	verified := c.emailVerified
	c.mu.Unlock()

	if verified {
		c.markVerified(ctx, uid)
	}
}

// markVerified sets emailVerified and acknowledges verification for uid.
// Safe to call from both the refresh path and the subscription path.
func (c *Controller) markVerified(ctx context.Context, uid string) {
	c.mu.Lock()
	if c.uid != uid {
		c.mu.Unlock()
		return
	}
	c.emailVerified = true
	already := c.verificationAcknowledged
	c.verificationAcknowledged = true
	c.recomputeGate()
	c.mu.Unlock()

	if !already {
		if err := c.settings.SetBool(ctx, verificationAckKeyPrefix+uid, true); err != nil {
			c.log.Warn(ctx, "failed to persist verification acknowledgement", "error", err)
		}
	}
}

// AcknowledgeWithoutVerifying records the user's explicit choice to proceed
// without verifying their email.
func (c *Controller) AcknowledgeWithoutVerifying(ctx context.Context) {
	c.mu.Lock()
	c.verificationAcknowledged = true
	uid := c.uid
	c.recomputeGate()
	c.mu.Unlock()

	if uid != "" {
		if err := c.settings.SetBool(ctx, verificationAckKeyPrefix+uid, true); err != nil {
			c.log.Warn(ctx, "failed to persist verification acknowledgement", "error", err)
		}
	}
}

// SendVerificationEmail asks the provider to issue a verification mail for
// the current principal.
func (c *Controller) SendVerificationEmail(ctx context.Context) error {
	p := c.provider.Current()
	if p == nil {
		return nil
	}
	return c.provider.SendVerificationEmail(ctx, p)
}

// SetBiometricAuthenticated records the outcome of a platform biometric
// check for this process lifetime. Cleared on sign-out.
func (c *Controller) SetBiometricAuthenticated(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.biometricAuthenticated = ok
}

// SetBiometricEnabled persists the user's biometric-unlock preference.
func (c *Controller) SetBiometricEnabled(ctx context.Context, enabled bool) error {
	c.mu.Lock()
	uid := c.uid
	c.mu.Unlock()
	if uid == "" {
		return nil
	}
	return c.settings.SetBool(ctx, biometricEnabledPrefix+uid, enabled)
}

// SignOut requests provider sign-out. On failure existing state is left
// unchanged. On success security-related local flags are reset and the
// identity-state-changed path tears everything down.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	uid := c.uid
	c.mu.Unlock()

	if err := c.provider.SignOut(ctx); err != nil {
		return err
	}

	if uid != "" {
		if err := c.settings.Delete(ctx, biometricEnabledPrefix+uid); err != nil {
			c.log.Warn(ctx, "failed to clear biometric preference", "error", err)
		}
	}

	// The provider also notifies via OnStateChanged; both paths reset the
	// same way, so the double invocation is harmless.
	c.OnIdentityStateChanged(ctx, nil)
	return nil
}

// recomputeGate derives isAuthenticated from its two inputs. It is the only
// writer of the field and must be called with the mutex held after every
// mutation of either input.
func (c *Controller) recomputeGate() {
	c.isAuthenticated = c.identityConfirmed && c.verificationAcknowledged
}
