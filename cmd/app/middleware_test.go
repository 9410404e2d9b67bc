package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogapi/internal/common"
	"github.com/sushihentaime/blogapi/internal/userservice"
)

func newBareApplication() *application {
	cfg := testConfig()
	return &application{
		config:   cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		limiters: common.NewCache(cfg.RateLimitWindow, time.Minute),
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRecoverPanic(t *testing.T) {
	app := newBareApplication()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	app.recoverPanic(handler).ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
	assert.JSONEq(t, `{"status": "error", "message": "Something went wrong!"}`, res.Body.String())
}

func TestSecureHeaders(t *testing.T) {
	app := newBareApplication()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	app.secureHeaders(okHandler).ServeHTTP(res, req)

	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", res.Header().Get("Referrer-Policy"))
	assert.Contains(t, res.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Equal(t, "max-age=15552000; includeSubDomains", res.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "same-origin", res.Header().Get("Cross-Origin-Opener-Policy"))
	assert.Equal(t, "0", res.Header().Get("X-XSS-Protection"))
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestEnableCORS(t *testing.T) {
	app := newBareApplication()
	middleware := app.enableCORS(okHandler)

	tests := []struct {
		name                        string
		origin                      string
		method                      string
		accessControlRequestMethod  *string
		accessControlRequestHeaders *string
		expectedStatus              int
		expectedAllowOrigin         string
		expectedAllowMethods        string
		expectedAllowHeaders        string
	}{
		{
			name:                "Valid Origin and Method",
			origin:              "http://example.com",
			method:              http.MethodGet,
			expectedStatus:      http.StatusOK,
			expectedAllowOrigin: "http://example.com",
		},
		{
			name:                        "Valid Origin and Preflight Request",
			origin:                      "http://example.com",
			method:                      http.MethodOptions,
			accessControlRequestMethod:  strptr(http.MethodPut),
			accessControlRequestHeaders: strptr("authorization, content-type"),
			expectedStatus:              http.StatusOK,
			expectedAllowOrigin:         "http://example.com",
			expectedAllowMethods:        http.MethodPut,
			expectedAllowHeaders:        "Authorization, Content-Type",
		},
		{
			name:                        "Preflight With Disallowed Header",
			origin:                      "http://example.com",
			method:                      http.MethodOptions,
			accessControlRequestMethod:  strptr(http.MethodDelete),
			accessControlRequestHeaders: strptr("X-Custom"),
			expectedStatus:              http.StatusOK,
		},
		{
			name:           "Invalid Origin",
			origin:         "http://invalid.com",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
		},
		{
			name:                       "Invalid Origin Preflight Request",
			origin:                     "http://invalid.com",
			method:                     http.MethodOptions,
			accessControlRequestMethod: strptr(http.MethodDelete),
			expectedStatus:             http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.accessControlRequestMethod != nil {
				req.Header.Set("Access-Control-Request-Method", *tt.accessControlRequestMethod)
			}
			if tt.accessControlRequestHeaders != nil {
				req.Header.Set("Access-Control-Request-Headers", *tt.accessControlRequestHeaders)
			}

			res := httptest.NewRecorder()

			middleware.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
			assert.Equal(t, tt.expectedAllowOrigin, res.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedAllowMethods, res.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, tt.expectedAllowHeaders, res.Header().Get("Access-Control-Allow-Headers"))
			assert.Contains(t, res.Header().Values("Vary"), "Origin")
		})
	}
}

func TestEnableCORSWithoutTrustedOrigins(t *testing.T) {
	app := newBareApplication()
	app.config.TrustedOrigins = nil

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://example.com")
	res := httptest.NewRecorder()

	app.enableCORS(okHandler).ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, res.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name           string
		enabled        bool
		requests       int
		expectedStatus int
	}{
		{
			name:           "Within Limit",
			enabled:        true,
			requests:       4,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Over Limit",
			enabled:        true,
			requests:       6,
			expectedStatus: http.StatusTooManyRequests,
		},
		{
			name:           "Disabled",
			enabled:        false,
			requests:       10,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newBareApplication()
			app.config.RateLimitEnabled = tt.enabled
			app.config.RateLimitRequests = 4
			app.config.RateLimitWindow = time.Hour

			middleware := app.rateLimit(okHandler)

			var lastStatusCode int
			for i := 0; i < tt.requests; i++ {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.RemoteAddr = "203.0.113.7:1234"
				res := httptest.NewRecorder()

				middleware.ServeHTTP(res, req)
				lastStatusCode = res.Code
			}

			assert.Equal(t, tt.expectedStatus, lastStatusCode)
		})
	}
}

func TestRateLimitPerClient(t *testing.T) {
	app := newBareApplication()
	app.config.RateLimitEnabled = true
	app.config.RateLimitRequests = 1
	app.config.RateLimitWindow = time.Hour

	middleware := app.rateLimit(okHandler)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		res := httptest.NewRecorder()
		middleware.ServeHTTP(res, req)
		return res.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1:2000"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2:1000"))
}

func TestLimitRequestBody(t *testing.T) {
	app := newBareApplication()
	app.config.MaxBodyBytes = 16

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var dst map[string]any
		err := app.parseJSON(r, &dst)
		if err != nil {
			app.badRequestErrorResponse(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title": "this is far too long"}`))
	res := httptest.NewRecorder()

	app.limitRequestBody(handler).ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "request body must not be larger than 16 bytes")
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", extractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", extractTokenFromHeader("bearer abc"))
	assert.Equal(t, "", extractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", extractTokenFromHeader("Bearer"))
	assert.Equal(t, "", extractTokenFromHeader("abc"))
}

func TestRequireAuthUser(t *testing.T) {
	app := newBareApplication()
	handler := app.requireAuthUser(okHandler)

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = app.createUserContext(req, userservice.AnonymousUser)
		res := httptest.NewRecorder()

		handler.ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := httptest.NewRecorder()

		handler.ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = app.createUserContext(req, &userservice.User{ID: uuid.New()})
		res := httptest.NewRecorder()

		handler.ServeHTTP(res, req)
		assert.Equal(t, http.StatusOK, res.Code)
	})
}

func TestAuthenticate(t *testing.T) {
	app := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	token, _ := ts.signup(t, "auth@example.com")

	otherKey := userservice.NewTokenMaker("another-secret", time.Hour, "blogapi")
	forged, err := otherKey.Issue(uuid.New())
	require.NoError(t, err)

	ghost, err := userservice.NewTokenMaker(app.config.JWTSecret, time.Hour, app.config.JWTIssuer).Issue(uuid.New())
	require.NoError(t, err)

	expired, err := userservice.NewTokenMaker(app.config.JWTSecret, -time.Minute, app.config.JWTIssuer).Issue(uuid.New())
	require.NoError(t, err)

	var seen *userservice.User
	handler := app.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = app.getUserContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		anonymous      bool
	}{
		{name: "No Authentication Header", expectedStatus: http.StatusOK, anonymous: true},
		{name: "Wrong Scheme", header: "Basic " + token, expectedStatus: http.StatusUnauthorized},
		{name: "Malformed Token", header: "Bearer invalid-token", expectedStatus: http.StatusUnauthorized},
		{name: "Foreign Signature", header: "Bearer " + forged, expectedStatus: http.StatusUnauthorized},
		{name: "Expired Token", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "Unknown User", header: "Bearer " + ghost, expectedStatus: http.StatusUnauthorized},
		{name: "Valid Token", header: "Bearer " + token, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			res := httptest.NewRecorder()

			handler.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
			if tt.expectedStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, tt.anonymous, seen.IsAnonymous())
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}
