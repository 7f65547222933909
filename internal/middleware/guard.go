package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velora-cms/velora/internal/auth"
)

// GuardConfig describes which page paths the route guard protects.
type GuardConfig struct {
	// SkipPrefixes pass through with no evaluation at all: static
	// assets and the auth endpoints themselves.
	SkipPrefixes []string
	// ProtectedPrefixes require a valid session.
	ProtectedPrefixes []string
	// AdminPrefixes is the subset additionally restricted to admins.
	AdminPrefixes []string
	// SigninPath is where unauthenticated requests are redirected.
	SigninPath string
}

// DefaultGuardConfig returns the guard settings the application ships
// with; the protected and admin prefixes are overridden from Config.
func DefaultGuardConfig(protected, admin []string) GuardConfig {
	return GuardConfig{
		SkipPrefixes:      []string{"/static", "/auth", "/api/auth"},
		ProtectedPrefixes: protected,
		AdminPrefixes:     admin,
		SigninPath:        "/auth/signin",
	}
}

// PageGuard intercepts page requests before their handlers run and
// enforces the session and role requirements of protected prefixes.
//
// The evaluation order per request:
//  1. skip prefix        -> forward untouched
//  2. unprotected path   -> forward untouched
//  3. protected path     -> verify the access token cookie; missing,
//     invalid or expired tokens redirect to the sign-in page with the
//     original path in a `from` query parameter
//  4. admin prefix       -> a valid session whose role is not an admin
//     role is sent to the home page instead (authorization failure,
//     not an authentication one)
//
// Every ambiguous outcome collapses to the sign-in redirect; the guard
// never forwards a request it could not positively verify.
func PageGuard(cfg GuardConfig, codec *auth.TokenCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if hasPrefix(path, cfg.SkipPrefixes) {
				return next(c)
			}
			if !hasPrefix(path, cfg.ProtectedPrefixes) {
				return next(c)
			}

			session := auth.ResolveSession(c.Request(), codec)
			if session == nil {
				return redirectSignin(c, cfg, path)
			}

			if hasPrefix(path, cfg.AdminPrefixes) {
				if d := auth.Authorize(auth.AdminRoles, session); !d.Allowed() {
					return c.Redirect(http.StatusFound, "/")
				}
			}
			return next(c)
		}
	}
}

func redirectSignin(c echo.Context, cfg GuardConfig, from string) error {
	return c.Redirect(http.StatusFound,
		cfg.SigninPath+"?from="+url.QueryEscape(from))
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
