package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/alexanderramin/hrdesk/internal/api"
	"github.com/alexanderramin/hrdesk/internal/auth"
	"github.com/alexanderramin/hrdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *auth.Session {
	t.Helper()
	conn := testutil.NewTestDB(t)
	return auth.NewSession(conn, testutil.NewTestUoW(conn), auth.Options{TenantClaim: "tenantId", RoleClaim: "role"}, nil)
}

func TestAuthService_Login_StoresTokensUsedByNextCall(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AccessToken = testutil.Token(t, map[string]any{"sub": "u-1", "tenantId": "t-42", "role": "recruiter"})
	fake.Seed("/users", map[string]any{"id": "u-1"})

	session := newSession(t)
	client := api.NewClient(api.Config{BaseURL: fake.URL()}, session, nil)
	svc := NewAuthService(client, session)
	ctx := context.Background()

	st, err := svc.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, st.LoggedIn)
	assert.Equal(t, "t-42", st.Claims.TenantID)
	assert.Equal(t, "recruiter", st.Claims.Role)
	assert.Equal(t, "u-ana@example.com", st.UserID)
	assert.Equal(t, "refresh-ana@example.com", st.RefreshToken)

	_, err = client.Get(ctx, "/users", nil)
	require.NoError(t, err)
	last := fake.LastRequest()
	assert.Equal(t, "Bearer "+fake.AccessToken, last.Header.Get(api.HeaderAuthorization))
	assert.Equal(t, "t-42", last.Header.Get(api.HeaderTenantID))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	session := newSession(t)
	svc := NewAuthService(api.NewClient(api.Config{BaseURL: fake.URL()}, session, nil), session)

	_, err := svc.Login(context.Background(), "ana@example.com", "nope")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "invalid credentials", api.Message(err, ""))

	st, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, st.LoggedIn)
}

func TestAuthService_Login_RequiresCredentials(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	session := newSession(t)
	svc := NewAuthService(api.NewClient(api.Config{BaseURL: fake.URL()}, nil, nil), session)

	_, err := svc.Login(context.Background(), " ", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, fake.Hits(http.MethodPost, LoginPath))
}

func TestAuthService_LogoutClearsSession(t *testing.T) {
	session := newSession(t)
	svc := NewAuthService(nil, session)
	ctx := context.Background()

	_, err := svc.LoginWithToken(ctx, auth.Tokens{AccessToken: testutil.Token(t, map[string]any{"sub": "u-9"})})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	st, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.False(t, st.LoggedIn)
}
