package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func staticCreds(c Credentials) CredentialSource {
	return CredentialFunc(func(context.Context) (Credentials, error) { return c, nil })
}

func TestClient_Get_AttachesCredentialHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get(HeaderAuthorization))
		assert.Equal(t, "ref-1", r.Header.Get(HeaderRefreshToken))
		assert.Equal(t, "tenant-9", r.Header.Get(HeaderTenantID))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, staticCreds(Credentials{
		AccessToken: "tok-1", RefreshToken: "ref-1", TenantID: "tenant-9",
	}), NoopObserver{})

	resp, err := c.Get(context.Background(), "/users", map[string][]string{"page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestClient_NoAccessToken_OmitsAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[HeaderAuthorization]
		assert.False(t, present, "Authorization header must not be sent without a token")
		_, present = r.Header[http.CanonicalHeaderKey(HeaderTenantID)]
		assert.False(t, present)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, staticCreds(Credentials{}), NoopObserver{})
	_, err := c.Get(context.Background(), "/roles", nil)
	require.NoError(t, err)
}

func TestClient_CredentialsResolvedPerCall(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(HeaderAuthorization))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	token := "first"
	c := NewClient(Config{BaseURL: srv.URL}, CredentialFunc(func(context.Context) (Credentials, error) {
		return Credentials{AccessToken: token}, nil
	}), nil)

	_, err := c.Get(context.Background(), "/users/me", nil)
	require.NoError(t, err)
	token = "second"
	_, err = c.Get(context.Background(), "/users/me", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestClient_ServerError_CarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"X","code":"E_INTERNAL"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil, nil)
	_, err := c.Get(context.Background(), "/vacancy", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknown)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, "X", Message(err, "fallback"))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "E_INTERNAL", apiErr.Code)
}

func TestClient_ErrorKinds(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
		msg    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"token expired"}`, ErrUnauthorized, "token expired"},
		{"validation", http.StatusUnprocessableEntity, `{"message":["name is required","email is invalid"]}`, ErrServerValidation, "name is required; email is invalid"},
		{"not found", http.StatusNotFound, `{"error":{"message":"no such vacancy"}}`, ErrServerValidation, "no such vacancy"},
		{"plain text", http.StatusBadGateway, `upstream down`, ErrUnknown, "upstream down"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL}, nil, nil)
			_, err := c.Get(context.Background(), "/x", nil)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.msg, Message(err, ""))
		})
	}
}

func TestClient_Unavailable_IsNetworkKind(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil, nil)
	_, err := c.Get(context.Background(), "/users", nil)

	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, "fallback", Message(err, "fallback"))
}

func TestClient_CancelledContext_AbortsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{BaseURL: srv.URL}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Get(ctx, "/slow", nil)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClient_OnUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var calls atomic.Int32
	c := NewClient(Config{BaseURL: srv.URL}, nil, nil)
	c.OnUnauthorized = func(context.Context) { calls.Add(1) }

	_, err := c.Get(context.Background(), "/users", nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Post_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Analyst", body["title"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"v-1","title":"Analyst"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/"}, nil, nil)
	resp, err := c.Post(context.Background(), "vacancy", map[string]string{"title": "Analyst"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "v-1", resp.JSON().Get("data.id").String())
}

func TestClient_ObserverReceivesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	var captured CallEvent
	obs := &captureObserver{fn: func(e CallEvent) { captured = e }}
	c := NewClient(Config{BaseURL: srv.URL}, nil, obs)

	_, err := c.Delete(context.Background(), "/roles/3")
	require.Error(t, err)
	assert.Equal(t, http.MethodDelete, captured.Method)
	assert.Equal(t, "/roles/3", captured.Path)
	assert.Equal(t, http.StatusBadRequest, captured.Status)
	assert.False(t, captured.Success)
	assert.Equal(t, KindServerValidation, captured.ErrorKind)
}

func TestLogObserver_DoesNotPanic(t *testing.T) {
	obs := NewLogObserver(zaptest.NewLogger(t))
	obs.OnCallComplete(CallEvent{Method: "GET", Path: "/users", Success: true})
	obs.OnCallComplete(CallEvent{Method: "GET", Path: "/users", ErrorKind: KindNetwork})
}

type captureObserver struct {
	fn func(CallEvent)
}

func (o *captureObserver) OnCallComplete(e CallEvent) { o.fn(e) }
