package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogapi/internal/blogservice"
	"github.com/sushihentaime/blogapi/internal/common"
	"github.com/sushihentaime/blogapi/internal/testutils"
	"github.com/sushihentaime/blogapi/internal/userservice"
)

func strptr(s string) *string {
	return &s
}

func testConfig() *Config {
	return &Config{
		Port:              ":0",
		Environment:       "testing",
		Version:           "test",
		TrustedOrigins:    []string{"http://example.com"},
		MaxBodyBytes:      10 << 20,
		JWTSecret:         "test-secret",
		JWTExpiresIn:      time.Hour,
		JWTIssuer:         "blogapi",
		RateLimitEnabled:  false,
		RateLimitRequests: 100,
		RateLimitWindow:   15 * time.Minute,
	}
}

// newTestApplication wires the services against a fresh Postgres container. The message
// producer is left out, so signups do not publish events.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	db := testutils.TestDB(t)
	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := userservice.NewTokenMaker(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.JWTIssuer)

	return &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(db, nil, common.NewCache(time.Minute, time.Minute), tokens, logger),
		blogService: blogservice.NewBlogService(db),
		limiters:    common.NewCache(cfg.RateLimitWindow, time.Minute),
	}
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// response is the decoded JSON envelope.
type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r response) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dst))
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any) (int, http.Header, response) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		switch p := payload.(type) {
		case string:
			body = bytes.NewBufferString(p)
		default:
			js, err := json.Marshal(p)
			require.NoError(t, err)
			body = bytes.NewReader(js)
		}
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env response
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)

	return res.StatusCode, res.Header, env
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, response) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) post(t *testing.T, path, token string, payload any) (int, http.Header, response) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) put(t *testing.T, path, token string, payload any) (int, http.Header, response) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, response) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

// signup registers a user through the API and returns its token and id.
func (ts *testServer) signup(t *testing.T, email string) (string, string) {
	t.Helper()

	status, _, env := ts.post(t, "/api/auth/signup", "", map[string]any{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	env.decode(t, &data)

	return data.Token, data.User.ID
}

type blogJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	State       string   `json:"state"`
	ReadCount   int      `json:"read_count"`
	ReadingTime int      `json:"reading_time"`
	Tags        []string `json:"tags"`
	Body        string   `json:"body"`
	Author      struct {
		ID        string  `json:"id"`
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		Email     string  `json:"email"`
		Bio       *string `json:"bio"`
	} `json:"author"`
}

type listJSON struct {
	Blogs       []blogJSON `json:"blogs"`
	Total       int        `json:"total"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}

// createBlog creates a blog through the API and returns it.
func (ts *testServer) createBlog(t *testing.T, token string, payload map[string]any) blogJSON {
	t.Helper()

	status, _, env := ts.post(t, "/api/blogs", token, payload)
	require.Equal(t, http.StatusCreated, status, env.Message)

	var data struct {
		Blog blogJSON `json:"blog"`
	}
	env.decode(t, &data)

	return data.Blog
}
