// Package auth stores the session tokens and resolves request credentials
// from them.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/db"
	"github.com/alexanderramin/hrdesk/internal/repository"
	"go.uber.org/zap"
)

// ErrNotLoggedIn is returned by operations that need a stored token.
var ErrNotLoggedIn = errors.New("not logged in")

// Tokens are what a login yields.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// State is the current session as read from storage.
type State struct {
	Tokens
	Claims   Claims
	LoggedIn bool
	// ClaimsErr is set when a token is stored but cannot be decoded.
	ClaimsErr error
}

// Options configure claim lookup.
type Options struct {
	TenantClaim string
	RoleClaim   string
}

// Session reads and writes tokens in the local key-value store.
type Session struct {
	conn db.DBTX
	uow  db.UnitOfWork
	opts Options
	log  *zap.Logger
}

func NewSession(conn db.DBTX, uow db.UnitOfWork, opts Options, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{conn: conn, uow: uow, opts: opts, log: log.Named("auth")}
}

// Login stores tokens. When no user id is given the token subject is used.
// All keys are written in one transaction.
func (s *Session) Login(ctx context.Context, t Tokens) (State, error) {
	if t.AccessToken == "" {
		return State{}, fmt.Errorf("login: %w", ErrMalformedToken)
	}
	claims, err := ParseClaims(t.AccessToken, s.opts.TenantClaim, s.opts.RoleClaim)
	if err != nil {
		return State{}, fmt.Errorf("login: %w", err)
	}
	if t.UserID == "" {
		t.UserID = claims.Subject
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		kv := repository.NewSQLiteKVRepo(tx)
		if err := kv.Set(ctx, repository.KeyAccessToken, t.AccessToken); err != nil {
			return err
		}
		if t.RefreshToken != "" {
			if err := kv.Set(ctx, repository.KeyRefreshToken, t.RefreshToken); err != nil {
				return err
			}
		} else if err := kv.Delete(ctx, repository.KeyRefreshToken); err != nil {
			return err
		}
		if t.UserID != "" {
			return kv.Set(ctx, repository.KeyUserID, t.UserID)
		}
		return kv.Delete(ctx, repository.KeyUserID)
	})
	if err != nil {
		return State{}, fmt.Errorf("storing session: %w", err)
	}
	s.log.Info("logged in", zap.String("user_id", t.UserID), zap.String("tenant", claims.TenantID))
	return State{Tokens: t, Claims: claims, LoggedIn: true}, nil
}

// Logout removes every session key.
func (s *Session) Logout(ctx context.Context) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteKVRepo(tx).Delete(ctx,
			repository.KeyAccessToken, repository.KeyRefreshToken, repository.KeyUserID)
	})
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	s.log.Info("logged out")
	return nil
}

// Current reads the stored session. A missing token is not an error.
func (s *Session) Current(ctx context.Context) (State, error) {
	kv := repository.NewSQLiteKVRepo(s.conn)
	var st State
	var err error
	if st.AccessToken, err = optional(kv.Get(ctx, repository.KeyAccessToken)); err != nil {
		return State{}, err
	}
	if st.RefreshToken, err = optional(kv.Get(ctx, repository.KeyRefreshToken)); err != nil {
		return State{}, err
	}
	if st.UserID, err = optional(kv.Get(ctx, repository.KeyUserID)); err != nil {
		return State{}, err
	}
	if st.AccessToken == "" {
		return st, nil
	}
	st.LoggedIn = true
	st.Claims, st.ClaimsErr = ParseClaims(st.AccessToken, s.opts.TenantClaim, s.opts.RoleClaim)
	return st, nil
}

// Credentials implements api.CredentialSource. It reads storage on every
// call so a login takes effect on the next request.
func (s *Session) Credentials(ctx context.Context) (api.Credentials, error) {
	st, err := s.Current(ctx)
	if err != nil {
		return api.Credentials{}, err
	}
	return api.Credentials{
		AccessToken:  st.AccessToken,
		RefreshToken: st.RefreshToken,
		TenantID:     st.Claims.TenantID,
	}, nil
}

// Role returns the role claim of the stored token, or "" when logged out.
func (s *Session) Role(ctx context.Context) string {
	st, err := s.Current(ctx)
	if err != nil || !st.LoggedIn {
		return ""
	}
	return st.Claims.Role
}

// HandleUnauthorized clears the session after a 401. It is wired to the
// API client only when configured.
func (s *Session) HandleUnauthorized(ctx context.Context) {
	s.log.Warn("session rejected by backend, clearing tokens")
	if err := s.Logout(ctx); err != nil {
		s.log.Error("clearing session after 401", zap.Error(err))
	}
}

func optional(v string, err error) (string, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	return v, err
}
