// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, email verification, and
// issuing/refreshing JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tripkeeper/internal/server/config"
	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
	"github.com/dmitrijs2005/tripkeeper/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides account-related operations:
// - Register: create users and their profile documents
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - SendVerificationEmail/ConfirmEmail: email ownership verification
// - DeleteAccount: destroy an account after re-authentication
type UserService struct {
	db                                *sql.DB
	repomanager                       repomanager.RepositoryManager
	log                               logging.Logger
	jwtSecret                         []byte
	accessTokenValidityDuration       time.Duration
	refreshTokenValidityDuration      time.Duration
	verificationTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:                                db,
		repomanager:                       m,
		log:                               log,
		jwtSecret:                         []byte(cfg.SecretKey),
		accessTokenValidityDuration:       cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration:      cfg.RefreshTokenValidityDuration,
		verificationTokenValidityDuration: cfg.VerificationTokenValidityDuration,
	}
}

// Register creates a new user together with their profile document. The email
// must not already be registered.
func (s *UserService) Register(ctx context.Context, email string, displayName string, salt, verifier []byte) (*models.User, error) {
	if email == "" || len(salt) == 0 || len(verifier) == 0 {
		return nil, common.ErrorValidation
	}

	userRepo := s.repomanager.Users(s.db)
	if _, err := userRepo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorEmailAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	var created *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user := &models.User{Email: email, DisplayName: displayName, Salt: salt, Verifier: verifier}
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %v", err)
		}

		doc := &models.Document{
			Path:       "users/" + u.ID,
			OwnerUID:   u.ID,
			AccessUIDs: []string{u.ID},
			Fields: map[string]any{
				"email":          u.Email,
				"display_name":   u.DisplayName,
				"email_verified": false,
			},
		}
		if _, err := s.repomanager.Documents(tx).Upsert(ctx, doc); err != nil {
			return fmt.Errorf("error creating profile document: %v", err)
		}

		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetSalt returns the user's stored salt or a random salt if the user is absent,
// to avoid leaking account existence.
func (s *UserService) GetSalt(ctx context.Context, email string) ([]byte, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return s.getRandomSalt(), nil
		}
		return nil, common.ErrorInternal
	}
	return user.Salt, nil
}

// Login verifies the provided verifierCandidate against the stored verifier and,
// on success, returns a new TokenPair together with the user.
func (s *UserService) Login(ctx context.Context, email string, verifierCandidate []byte) (*TokenPair, *models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}
	if !s.checkVerifier(user.Verifier, verifierCandidate) {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the given refresh token. Revoking an unknown token succeeds.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// Me returns the account identified by uid.
func (s *UserService) Me(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// SendVerificationEmail issues a fresh verification token for the user.
// Actual mail delivery is delegated to an external relay watching the log
// stream, so the token is recorded there.
func (s *UserService) SendVerificationEmail(ctx context.Context, uid string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, uid)
	if err != nil {
		return common.ErrorInternal
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.repomanager.VerificationTokens(s.db).Create(ctx, uid, token, s.verificationTokenValidityDuration); err != nil {
		return common.ErrorInternal
	}

	s.log.Info(ctx, "verification email queued", "email", user.Email, "token", token)
	return nil
}

// ConfirmEmail consumes a verification token, marking the account's email as
// verified and updating the profile document so clients observe the change.
func (s *UserService) ConfirmEmail(ctx context.Context, token string) error {
	vt, err := s.repomanager.VerificationTokens(s.db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return common.ErrorInternal
	}
	if vt.Expires.Before(time.Now()) {
		return common.ErrTokenExpired
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).MarkEmailVerified(ctx, vt.UserID); err != nil {
			return fmt.Errorf("error marking email verified: %v", err)
		}
		if err := s.repomanager.VerificationTokens(tx).Delete(ctx, token); err != nil {
			return fmt.Errorf("error deleting verification token: %v", err)
		}

		docRepo := s.repomanager.Documents(tx)
		doc, err := docRepo.Get(ctx, "users/"+vt.UserID)
		if err != nil {
			return fmt.Errorf("error loading profile document: %v", err)
		}
		doc.Fields["email_verified"] = true
		doc.Version = 0
		if _, err := docRepo.Upsert(ctx, doc); err != nil {
			return fmt.Errorf("error updating profile document: %v", err)
		}
		return nil
	})
}

// DeleteAccount destroys the account and all its data. The caller must prove
// possession of the password by supplying the stored verifier; a mismatch
// yields ErrReauthRequired.
func (s *UserService) DeleteAccount(ctx context.Context, uid string, verifierCandidate []byte) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	if !s.checkVerifier(user.Verifier, verifierCandidate) {
		return common.ErrReauthRequired
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Documents(tx).DeleteByOwner(ctx, uid); err != nil {
			return fmt.Errorf("error deleting documents: %v", err)
		}
		if err := s.repomanager.FeedItems(tx).Clear(ctx, uid); err != nil {
			return fmt.Errorf("error clearing feed: %v", err)
		}
		// Refresh and verification tokens go with the user via FK cascade.
		if err := s.repomanager.Users(tx).Delete(ctx, uid); err != nil {
			return fmt.Errorf("error deleting user: %v", err)
		}
		return nil
	})
}

// ResolveByEmail maps a registered email to its account ID.
func (s *UserService) ResolveByEmail(ctx context.Context, email string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}
	return user.ID, nil
}

// --- helpers below ---

func (s *UserService) getRandomSalt() []byte { return common.GenerateRandByteArray(32) }

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) checkVerifier(verifier []byte, candidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
