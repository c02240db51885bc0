package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/cryptox"
	"github.com/dmitrijs2005/tripkeeper/internal/identity"
)

// fakeAuthClient implements only the identity methods used by Provider.
type fakeAuthClient struct {
	Client

	salt         []byte
	registered   map[string][]byte // email -> verifier
	lastVerifier []byte
	loginErr     error
	logoutErr    error
	mePrincipal  *identity.Principal
}

func newFakeAuthClient() *fakeAuthClient {
	return &fakeAuthClient{
		salt:       []byte("0123456789abcdef"),
		registered: make(map[string][]byte),
	}
}

func (f *fakeAuthClient) Register(ctx context.Context, email, displayName string, salt, verifier []byte) error {
	f.salt = salt
	f.registered[email] = verifier
	return nil
}

func (f *fakeAuthClient) GetSalt(ctx context.Context, email string) ([]byte, error) {
	return f.salt, nil
}

func (f *fakeAuthClient) Login(ctx context.Context, email string, verifier []byte) (*identity.Principal, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.lastVerifier = verifier
	return &identity.Principal{UID: "u1", Email: email, DisplayName: "Anna"}, nil
}

func (f *fakeAuthClient) Logout(ctx context.Context) error {
	return f.logoutErr
}

func (f *fakeAuthClient) Me(ctx context.Context) (*identity.Principal, error) {
	return f.mePrincipal, nil
}

func TestProviderSignUpDerivesVerifierFromPassword(t *testing.T) {
	fc := newFakeAuthClient()
	p := NewProvider(fc)

	principal, err := p.SignUp(context.Background(), "anna@example.com", []byte("s3cret"), "Anna")
	require.NoError(t, err)
	require.Equal(t, "u1", principal.UID)

	// The server receives a derived verifier, never the password itself.
	want := cryptox.DeriveVerifier([]byte("s3cret"), fc.salt)
	require.Equal(t, want, fc.registered["anna@example.com"])
	require.Equal(t, want, fc.lastVerifier)
}

func TestProviderSignInUsesFetchedSalt(t *testing.T) {
	fc := newFakeAuthClient()
	p := NewProvider(fc)

	principal, err := p.SignIn(context.Background(), "anna@example.com", []byte("s3cret"))
	require.NoError(t, err)
	require.Equal(t, "u1", principal.UID)
	require.Equal(t, cryptox.DeriveVerifier([]byte("s3cret"), fc.salt), fc.lastVerifier)
	require.Equal(t, principal, p.Current())
}

func TestProviderStateChangeCallbacks(t *testing.T) {
	fc := newFakeAuthClient()
	p := NewProvider(fc)

	var got []*identity.Principal
	p.OnStateChanged(func(principal *identity.Principal) {
		got = append(got, principal)
	})

	_, err := p.SignIn(context.Background(), "anna@example.com", []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, p.SignOut(context.Background()))

	require.Len(t, got, 2)
	require.Equal(t, "u1", got[0].UID)
	require.Nil(t, got[1])
	require.Nil(t, p.Current())
}

func TestProviderSignOutFailureKeepsSession(t *testing.T) {
	fc := newFakeAuthClient()
	p := NewProvider(fc)

	_, err := p.SignIn(context.Background(), "anna@example.com", []byte("pw"))
	require.NoError(t, err)

	fc.logoutErr = errors.New("network down")
	require.Error(t, p.SignOut(context.Background()))
	require.NotNil(t, p.Current())
}

func TestProviderReloadUpdatesCurrentForSameUser(t *testing.T) {
	fc := newFakeAuthClient()
	p := NewProvider(fc)

	_, err := p.SignIn(context.Background(), "anna@example.com", []byte("pw"))
	require.NoError(t, err)

	fc.mePrincipal = &identity.Principal{UID: "u1", Email: "anna@example.com", EmailVerified: true}
	reloaded, err := p.Reload(context.Background(), p.Current())
	require.NoError(t, err)
	require.True(t, reloaded.EmailVerified)
	require.True(t, p.Current().EmailVerified)
}

func TestProviderSignUpValidation(t *testing.T) {
	fc := newFakeAuthClient()
	p := NewProvider(fc)

	cases := []struct {
		name        string
		email       string
		password    string
		displayName string
	}{
		{"bad email", "not-an-email", "longenough", "Anna"},
		{"short password", "anna@example.com", "short", "Anna"},
		{"short display name", "anna@example.com", "longenough", "A"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.SignUp(context.Background(), tc.email, []byte(tc.password), tc.displayName)
			require.ErrorIs(t, err, common.ErrorValidation)
			require.Empty(t, fc.registered)
		})
	}
}
