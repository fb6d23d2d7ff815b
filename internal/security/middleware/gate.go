package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aryan0dhankhar/workshop/internal/observability/metrics"
	"github.com/aryan0dhankhar/workshop/internal/security/auth"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// protectedPrefixes guard a section and everything below it.
var protectedPrefixes = []string{
	"/dashboard",
	"/customers",
	"/vendors",
	"/mechanics",
	"/inventory",
	"/parts",
	"/orders",
	"/jobs",
	"/services",
	"/service-history",
	"/feedback",
	"/support",
	"/settings",
	"/reports",
}

// Static assets never reach the gate.
var (
	excludedPrefixes = []string{"/_next/static", "/_next/image", "/favicon.ico", "/grid.svg"}
	excludedSuffixes = []string{".png"}
)

// IsExcluded reports whether path is a public asset outside the gate's matcher.
func IsExcluded(path string) bool {
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	for _, s := range excludedSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

// IsProtected reports whether path needs a session. The root matches exactly;
// every other entry matches itself and its sub-paths. The login page and the
// API namespace are never protected.
func IsProtected(path string) bool {
	if path == LoginPath || strings.HasPrefix(path, "/api/") || IsExcluded(path) {
		return false
	}
	if path == "/" {
		return true
	}
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// GateOptions configures SessionGate.
type GateOptions struct {
	// Tokens, when set, makes the gate verify the cookie's signature and
	// expiry instead of only checking that it is present.
	Tokens *auth.TokenManager
	Logger *slog.Logger
}

// SessionGate redirects requests for protected pages that carry no session
// cookie to the login page with 307. By default only the cookie's presence is
// checked; API endpoints do the full validation.
func SessionGate(opts GateOptions) func(http.Handler) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsProtected(r.URL.Path) || hasSession(r, opts.Tokens) {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("session gate redirect", slog.String("path", r.URL.Path))
			metrics.ObserveGateRedirect()
			http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
		})
	}
}

func hasSession(r *http.Request, tokens *auth.TokenManager) bool {
	token := auth.TokenFromRequest(r)
	if token == "" {
		return false
	}
	if tokens == nil {
		return true
	}
	_, err := tokens.ValidateToken(token)
	return err == nil
}
