package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/unrolled/secure"
	"golang.org/x/time/rate"

	"github.com/sushihentaime/blogapi/internal/common"
	"github.com/sushihentaime/blogapi/internal/userservice"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			ip     = r.RemoteAddr
			method = r.Method
			proto  = r.Proto
			uri    = r.URL.RequestURI()
		)

		app.logger.Info("request from", slog.String("method", method), slog.String("uri", uri), slog.String("remote_addr", ip), slog.String("proto", proto))

		next.ServeHTTP(w, r)
	})
}

// secureHeaders sets the same response headers as helmet's defaults.
func (app *application) secureHeaders(next http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		ContentSecurityPolicy:         "default-src 'self';base-uri 'self';font-src 'self' https: data:;form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';upgrade-insecure-requests",
		CrossOriginOpenerPolicy:       "same-origin",
		CrossOriginResourcePolicy:     "same-origin",
		ReferrerPolicy:                "no-referrer",
		STSSeconds:                    15552000,
		STSIncludeSubdomains:          true,
		ForceSTSHeader:                true,
		ContentTypeNosniff:            true,
		XDNSPrefetchControl:           "off",
		CustomFrameOptionsValue:       "SAMEORIGIN",
		XPermittedCrossDomainPolicies: "none",
		CustomBrowserXssValue:         "0",
	})

	return sm.Handler(next)
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// rateLimit allows RateLimitRequests per RateLimitWindow for each client IP. Limiters of idle
// clients expire from the cache after one window.
func (app *application) rateLimit(next http.Handler) http.Handler {
	if !app.config.RateLimitEnabled || app.config.RateLimitRequests < 1 || app.config.RateLimitWindow <= 0 {
		return next
	}

	var (
		window = app.config.RateLimitWindow
		burst  = app.config.RateLimitRequests
		every  = rate.Every(window / time.Duration(burst))
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := common.CacheKeyRateLimitClient(clientIP(r))

		// Add only succeeds for the first request of a client, so concurrent first requests share one limiter.
		_ = app.limiters.Add(key, rate.NewLimiter(every, burst), window)

		value, ok := app.limiters.Get(key)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		limiter := value.(*rate.Limiter)
		app.limiters.Set(key, limiter, window)

		if !limiter.Allow() {
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// enableCORS only answers origins listed in TrustedOrigins. An empty list rejects every origin.
func (app *application) enableCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return slices.Contains(app.config.TrustedOrigins, origin)
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})(next)
}

func (app *application) limitRequestBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, app.config.MaxBodyBytes)
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves an "Authorization: Bearer <token>" header to a user. Requests without
// the header continue as the anonymous user. A header that is present but unusable is rejected.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			r = app.createUserContext(r, userservice.AnonymousUser)
			next.ServeHTTP(w, r)
			return
		}

		token := extractTokenFromHeader(authHeader)
		if token == "" {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		user, err := app.userService.GetUserByAccessToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, userservice.ErrInvalidToken):
				app.invalidAuthenticationTokenResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		r = app.createUserContext(r, user)
		next.ServeHTTP(w, r)
	})
}

func extractTokenFromHeader(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

func (app *application) requireAuthUser(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := app.getUserContext(r)
		if user.IsAnonymous() {
			app.authenticationRequiredResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
