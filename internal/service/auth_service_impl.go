package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/auth"
	"github.com/tidwall/gjson"
)

// LoginPath is the backend's credential exchange endpoint.
const LoginPath = "/auth/login"

// ErrMissingCredentials is returned when email or password is empty.
var ErrMissingCredentials = errors.New("email and password are required")

// SessionStore persists tokens. Implemented by *auth.Session.
type SessionStore interface {
	Login(ctx context.Context, t auth.Tokens) (auth.State, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (auth.State, error)
}

var (
	accessTokenPaths  = []string{"data.accessToken", "accessToken", "data.access_token", "access_token", "data.token", "token"}
	refreshTokenPaths = []string{"data.refreshToken", "refreshToken", "data.refresh_token", "refresh_token"}
	userIDPaths       = []string{"data.user.id", "user.id", "data.userId", "userId"}
)

type authService struct {
	api      API
	session  SessionStore
	observer UseCaseObserver
}

func NewAuthService(client API, session SessionStore, observers ...UseCaseObserver) AuthService {
	return &authService{api: client, session: session, observer: useCaseObserverOrNoop(observers)}
}

func (s *authService) Login(ctx context.Context, email, password string) (st auth.State, err error) {
	done := observe(ctx, s.observer, "login", map[string]any{"email": email})
	defer func() { done(err) }()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return auth.State{}, ErrMissingCredentials
	}
	resp, err := s.api.Post(ctx, LoginPath, map[string]string{"email": email, "password": password})
	if err != nil {
		return auth.State{}, fmt.Errorf("login: %w", err)
	}
	doc := resp.JSON()
	tokens := auth.Tokens{
		AccessToken:  firstString(doc, accessTokenPaths),
		RefreshToken: firstString(doc, refreshTokenPaths),
		UserID:       firstString(doc, userIDPaths),
	}
	if tokens.AccessToken == "" {
		return auth.State{}, fmt.Errorf("login: response carried no access token")
	}
	return s.session.Login(ctx, tokens)
}

func (s *authService) LoginWithToken(ctx context.Context, t auth.Tokens) (st auth.State, err error) {
	done := observe(ctx, s.observer, "login-token", nil)
	defer func() { done(err) }()
	return s.session.Login(ctx, t)
}

func (s *authService) Logout(ctx context.Context) (err error) {
	done := observe(ctx, s.observer, "logout", nil)
	defer func() { done(err) }()
	return s.session.Logout(ctx)
}

func (s *authService) Current(ctx context.Context) (auth.State, error) {
	return s.session.Current(ctx)
}

func firstString(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		if r := doc.Get(p); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
