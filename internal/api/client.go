package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Credentials are attached to every outgoing request. Empty fields are not
// sent.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	TenantID     string
}

// CredentialSource resolves credentials at call time, so a token stored
// after the client was built is used by the next request.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func(ctx context.Context) (Credentials, error)

func (f CredentialFunc) Credentials(ctx context.Context) (Credentials, error) { return f(ctx) }

// Header names sent by the client.
const (
	HeaderAuthorization = "Authorization"
	HeaderRefreshToken  = "refreshtoken"
	HeaderTenantID      = "x-tenant-id"
	HeaderRequestID     = "x-request-id"
)

// Config holds the client's connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Request describes one call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any // marshaled as JSON; []byte and json.RawMessage are sent verbatim
}

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Body   []byte
}

// JSON returns the body parsed for path queries.
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

// Client issues authenticated calls against the HR backend.
type Client struct {
	cfg      Config
	http     *http.Client
	creds    CredentialSource
	observer Observer

	// OnUnauthorized, when set, runs after any 401 response.
	OnUnauthorized func(ctx context.Context)
}

// NewClient creates a Client. creds may be nil for anonymous calls.
func NewClient(cfg Config, creds CredentialSource, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		creds:    creds,
		observer: observer,
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do sends req and returns the response for any 2xx status. Every other
// outcome is returned as *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	requestID := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.do(ctx, req, requestID)

	event := CallEvent{
		Method:    req.Method,
		Path:      req.Path,
		RequestID: requestID,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		event.Status = resp.Status
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		event.Status = apiErr.Status
		event.ErrorKind = apiErr.Kind
	}
	c.observer.OnCallComplete(event)

	if apiErr != nil && apiErr.Kind == KindUnauthorized && c.OnUnauthorized != nil {
		c.OnUnauthorized(context.WithoutCancel(ctx))
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, req Request, requestID string) (*Response, error) {
	fail := func(kind Kind, status int, err error) *Error {
		return &Error{Kind: kind, Status: status, Method: req.Method, Path: req.Path, Err: err}
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fail(KindUnknown, 0, fmt.Errorf("encoding request body: %w", err))
	}

	target := c.cfg.BaseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, fail(KindUnknown, 0, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(HeaderRequestID, requestID)

	if c.creds != nil {
		creds, err := c.creds.Credentials(ctx)
		if err != nil {
			return nil, fail(KindUnknown, 0, fmt.Errorf("resolving credentials: %w", err))
		}
		applyCredentials(httpReq.Header, creds)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fail(KindNetwork, 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fail(KindNetwork, httpResp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := fail(kindForStatus(httpResp.StatusCode), httpResp.StatusCode, nil)
		apiErr.Message, apiErr.Code = decodeErrorBody(respBody)
		return nil, apiErr
	}

	return &Response{Status: httpResp.StatusCode, Body: respBody}, nil
}

func applyCredentials(h http.Header, creds Credentials) {
	if creds.AccessToken != "" {
		h.Set(HeaderAuthorization, "Bearer "+creds.AccessToken)
	}
	if creds.RefreshToken != "" {
		h.Set(HeaderRefreshToken, creds.RefreshToken)
	}
	if creds.TenantID != "" {
		h.Set(HeaderTenantID, creds.TenantID)
	}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(b)
	}
}

// decodeErrorBody extracts message and code from an error payload. The
// backend sends {"message": "...", "code": "..."}; some services nest it
// under "error" or send a list of messages.
func decodeErrorBody(body []byte) (message, code string) {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body)), ""
	}
	doc := gjson.ParseBytes(body)
	msg := doc.Get("message")
	if !msg.Exists() {
		msg = doc.Get("error.message")
	}
	if msg.IsArray() {
		parts := make([]string, 0, len(msg.Array()))
		for _, m := range msg.Array() {
			parts = append(parts, m.String())
		}
		message = strings.Join(parts, "; ")
	} else {
		message = msg.String()
	}
	if message == "" && doc.Get("error").Type == gjson.String {
		message = doc.Get("error").String()
	}
	code = doc.Get("code").String()
	return message, code
}
