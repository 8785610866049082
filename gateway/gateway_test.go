package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bytesReader(s string) io.Reader { return strings.NewReader(s) }

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func newTestClient(t *testing.T, handler http.Handler, cfg func(*Config)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := Config{BaseURL: srv.URL}
	if cfg != nil {
		cfg(&c)
	}
	cl, err := New(c)
	require.NoError(t, err)
	return cl, srv
}

func TestGetUnwrapsEnvelopeAndSendsBearer(t *testing.T) {
	var gotAuth string
	cl, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"data":[{"id":"1","name":"Mouse"}]}`))
	}), func(c *Config) { c.Token = staticToken("tok-123") })

	var out []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, cl.Get(context.Background(), "/products", nil, &out))

	assert.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, out, 1)
	assert.Equal(t, "Mouse", out[0].Name)
}

func TestUnauthorizedOutsideAuthPathTearsDownSession(t *testing.T) {
	cl, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), nil)

	tornDown := 0
	cl.onUnauthorized = func() { tornDown++ }

	err := cl.Get(context.Background(), "/orders", nil, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, tornDown)
}

func TestUnauthorizedOnLoginIsInvalidCredentials(t *testing.T) {
	cl, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid email or password"}`))
	}), nil)

	tornDown := 0
	cl.onUnauthorized = func() { tornDown++ }

	err := cl.Post(context.Background(), "/login", map[string]string{"email": "a@b.c"}, nil)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, tornDown, "a failed login must not tear down the session")
}

func TestForbidden(t *testing.T) {
	cl, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}), nil)

	err := cl.Delete(context.Background(), "/staff/9", nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestValidationErrorsPropagateByField(t *testing.T) {
	cl, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The given data was invalid.","errors":{"email":["The email has already been taken."],"price":["The price must be a number."]}}`))
	}), nil)

	err := cl.Post(context.Background(), "/products", map[string]any{}, nil)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"The email has already been taken."}, ve.FieldErrors("email"))
	assert.Len(t, ve.Fields, 2)
	assert.Nil(t, ve.FieldErrors("name"))
}

func TestServerError(t *testing.T) {
	cl, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), nil)

	err := cl.Get(context.Background(), "/payments", nil, nil)

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
}

func TestNetworkErrorWrapped(t *testing.T) {
	cl, srv := newTestClient(t, http.NotFoundHandler(), nil)
	srv.Close() // force connection refused

	err := cl.Get(context.Background(), "/products", nil, nil)

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.NotNil(t, errors.Unwrap(ne))
}

func TestQueryEncodingAndRouteKey(t *testing.T) {
	var gotQuery url.Values
	cl, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}), nil)

	q := url.Values{"search": {"mouse"}, "page": {"2"}}
	require.NoError(t, cl.Get(context.Background(), "/products", q, nil))
	assert.Equal(t, "mouse", gotQuery.Get("search"))

	assert.Equal(t, "/products?page=2&search=mouse", cl.RouteKey("/products", q))
}

func TestPostMultipart(t *testing.T) {
	cl, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Gaming Mouse", r.FormValue("name"))
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "mouse.png", hdr.Filename)
		w.Write([]byte(`{"success":true,"data":{"id":"10"}}`))
	}), nil)

	var out struct {
		ID string `json:"id"`
	}
	err := cl.PostMultipart(context.Background(), "/products",
		map[string]string{"name": "Gaming Mouse"},
		[]File{{Field: "image", Name: "mouse.png", Contents: bytesReader("png-bytes")}},
		&out)
	require.NoError(t, err)
	assert.Equal(t, "10", out.ID)
}

func TestAssetURL(t *testing.T) {
	cl, err := New(Config{BaseURL: "http://api.local/api", AssetBaseURL: "http://api.local/storage/"})
	require.NoError(t, err)
	assert.Equal(t, "http://api.local/storage/avatars/a.png", cl.AssetURL("/avatars/a.png"))
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
