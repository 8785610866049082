// Package gateway is the single boundary to the REST backend. It decodes the
// backend's heterogeneous response envelopes once, attaches the bearer token,
// and maps HTTP statuses onto a small error taxonomy so callers switch on
// error kind, never on status codes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unkn0wn-root/optisync"
	"github.com/unkn0wn-root/optisync/internal/util"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the current bearer token, if any. Implemented by
// session.Manager.
type TokenSource interface {
	Token() (string, bool)
}

// Config tunes a Client. Only BaseURL is required.
type Config struct {
	// Required. e.g. "https://api.example.com/api"
	BaseURL string

	// Static-asset base, exposed for callers that build image URLs.
	AssetBaseURL string

	HTTPClient *http.Client    // nil => &http.Client{Timeout: 15s}
	Logger     optisync.Logger // nil => NopLogger

	// Optional bearer token supply.
	Token TokenSource

	// Called on a 401 outside the auth paths, once per offending response.
	// Typically wired to session teardown + redirect. A 401 on an auth path
	// never triggers it, so a failed login cannot log the user out.
	OnUnauthorized func()
}

// Client is a thin, stateless HTTP gateway. Safe for concurrent use.
type Client struct {
	base           string
	assets         string
	hc             *http.Client
	log            optisync.Logger
	token          TokenSource
	onUnauthorized func()
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base URL is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		base:           strings.TrimRight(cfg.BaseURL, "/"),
		assets:         strings.TrimRight(cfg.AssetBaseURL, "/"),
		hc:             hc,
		log:            optisync.Coalesce[optisync.Logger](cfg.Logger, optisync.NopLogger{}),
		token:          cfg.Token,
		onUnauthorized: cfg.OnUnauthorized,
	}, nil
}

// AssetURL resolves a server-relative asset path (e.g. a product image)
// against the configured static-asset base.
func (c *Client) AssetURL(path string) string {
	if c.assets == "" {
		return path
	}
	return c.assets + "/" + strings.TrimLeft(path, "/")
}

// RouteKey returns the canonical prefetch route key for a path plus query.
func (c *Client) RouteKey(path string, query url.Values) string {
	return util.CanonicalRoute(path, query)
}

// Get issues a GET and decodes the enveloped payload into out (out may be
// nil to discard).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	b, ct, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, b, ct, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	b, ct, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, b, ct, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", out)
}

// File is one multipart upload part.
type File struct {
	Field    string
	Name     string
	Contents io.Reader
}

// PostMultipart issues a POST with form fields and file parts (avatar and
// product-image uploads).
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("gateway: multipart field %q: %w", k, err)
		}
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return fmt.Errorf("gateway: multipart file %q: %w", f.Field, err)
		}
		if _, err := io.Copy(w, f.Contents); err != nil {
			return fmt.Errorf("gateway: multipart file %q: %w", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, buf.Bytes(), mw.FormDataContentType(), out)
}

func jsonBody(body any) ([]byte, string, error) {
	if body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("gateway: encode request body: %w", err)
	}
	return b, "application/json", nil
}

// authPath reports whether path belongs to the login/register flow, where a
// 401 means bad credentials rather than an expired session.
func authPath(path string) bool {
	p := "/" + strings.TrimLeft(path, "/")
	return p == "/login" || p == "/register" || strings.HasPrefix(p, "/login/") || strings.HasPrefix(p, "/register/")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string, out any) error {
	u := c.base + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		if tok, ok := c.token.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("request failed", optisync.Fields{"method": method, "url": u, "err": err})
		return &NetworkError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{URL: u, Err: err}
	}

	if err := c.checkStatus(resp.StatusCode, path, u, raw); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	payload := DecodeEnvelope(raw)
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("gateway: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) checkStatus(status int, path, u string, raw []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		if authPath(path) {
			return ErrInvalidCredentials
		}
		c.log.Info("session rejected by server", optisync.Fields{"url": u})
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusUnprocessableEntity:
		return decodeValidation(raw)
	case status >= 500:
		return &ServerError{Status: status, URL: u}
	default:
		return &StatusError{Status: status, URL: u}
	}
}

// decodeValidation parses the backend's field-error shape:
// {"message":"...","errors":{"email":["taken"]}}.
func decodeValidation(raw []byte) error {
	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return &ValidationError{Message: "validation failed"}
	}
	return &ValidationError{Message: body.Message, Fields: body.Errors}
}
