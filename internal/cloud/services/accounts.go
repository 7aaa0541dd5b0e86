// Package services implements the hosted backend consumed by the client:
// email/password accounts with JWT sessions, and the verse card tier.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/cloud/auth"
	"github.com/dailygrace/dailygrace/internal/cloud/blobs"
	"github.com/dailygrace/dailygrace/internal/cloud/models"
	"github.com/dailygrace/dailygrace/internal/cloud/repositories/repomanager"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/cryptox"
	"github.com/dailygrace/dailygrace/internal/dbx"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/dailygrace/dailygrace/internal/timex"
)

// PrefixDeleter removes every blob under a key prefix.
type PrefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

type AccountOptions struct {
	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Clock           timex.Clock
	// Blobs may be nil when no object storage is configured.
	Blobs PrefixDeleter
}

// AccountService handles sign-up, sign-in, token refresh and account
// removal. It satisfies client.AuthBackend.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	opts        AccountOptions
	log         logging.Logger
}

var _ client.AuthBackend = (*AccountService)(nil)

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger, opts AccountOptions) *AccountService {
	if opts.Clock == nil {
		opts.Clock = timex.SystemClock()
	}
	return &AccountService{db: db, repomanager: m, opts: opts, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) SignUp(ctx context.Context, email, password string) (*client.Session, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", common.ErrorValidation)
	}

	user := &models.User{Email: email, PasswordHash: cryptox.HashPassword(password, cryptox.DefaultParams)}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.newSession(ctx, u, s.db)
}

func (s *AccountService) SignIn(ctx context.Context, email, password string) (*client.Session, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidLoginPassword
		}
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(password, u.PasswordHash)
	if err != nil || !ok {
		return nil, common.ErrorInvalidLoginPassword
	}

	return s.newSession(ctx, u, s.db)
}

// Restore accepts a still valid access token as is. An empty or expired
// access token is renewed by rotating the refresh token.
func (s *AccountService) Restore(ctx context.Context, accessToken, refreshToken string) (*client.Session, error) {
	if accessToken != "" {
		uid, err := auth.GetUserIDFromToken(accessToken, s.opts.JWTSecret)
		switch {
		case err == nil:
			u, err := s.repomanager.Users(s.db).GetByID(ctx, uid)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return nil, common.ErrorUnauthorized
				}
				return nil, fmt.Errorf("error loading user: %w", err)
			}
			return &client.Session{UserID: u.ID, Email: u.Email, AccessToken: accessToken, RefreshToken: refreshToken}, nil
		case !errors.Is(err, common.ErrTokenExpired):
			return nil, err
		}
	}

	return s.refresh(ctx, refreshToken)
}

func (s *AccountService) refresh(ctx context.Context, refreshToken string) (*client.Session, error) {
	if refreshToken == "" {
		return nil, common.ErrorUnauthorized
	}

	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.opts.Clock.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	var sess *client.Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		sess, genErr = s.newSession(ctx, u, tx)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SignOut revokes refreshToken. An unknown token is not an error.
func (s *AccountService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// DeleteAccount removes the account behind accessToken. Journal rows go
// with the user row; card images are removed afterwards and a failure there
// only leaves orphaned blobs behind.
func (s *AccountService) DeleteAccount(ctx context.Context, accessToken string) error {
	uid, err := auth.GetUserIDFromToken(accessToken, s.opts.JWTSecret)
	if err != nil {
		return common.ErrorUnauthorized
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, uid); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, uid)
	})
	if err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}

	if s.opts.Blobs != nil {
		n, err := s.opts.Blobs.DeletePrefix(ctx, blobs.UserPrefix(uid))
		if err != nil {
			s.log.Warn(ctx, "card images left behind", "user", uid, "deleted", n, "error", err)
		}
	}
	return nil
}

func (s *AccountService) newSession(ctx context.Context, u *models.User, tx dbx.DBTX) (*client.Session, error) {
	now := s.opts.Clock.Now()

	access, err := auth.GenerateToken(u.ID, s.opts.JWTSecret, now, s.opts.AccessTokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, u.ID, refresh, now.Add(s.opts.RefreshTokenTTL)); err != nil {
		return nil, common.ErrorInternal
	}

	return &client.Session{UserID: u.ID, Email: u.Email, AccessToken: access, RefreshToken: refresh}, nil
}
