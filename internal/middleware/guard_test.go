package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora-cms/velora/internal/auth"
)

func guardTestServer(t *testing.T, codec *auth.TokenCodec) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Use(PageGuard(DefaultGuardConfig(
		[]string{"/dashboard", "/admin"},
		[]string{"/admin"},
	), codec))
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/", ok)
	e.GET("/public/x", ok)
	e.GET("/auth/signin", ok)
	e.GET("/dashboard", ok)
	e.GET("/admin/x", ok)
	return e
}

func guardCodec() *auth.TokenCodec {
	return auth.NewTokenCodec(auth.Options{
		AccessSecret:  "guard-access-secret",
		RefreshSecret: "guard-refresh-secret",
		AccessTTL:     time.Minute,
	})
}

func doGuarded(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGuardForwardsPublicPaths(t *testing.T) {
	e := guardTestServer(t, guardCodec())

	for _, path := range []string{"/", "/public/x", "/auth/signin"} {
		rec := doGuarded(e, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestGuardRedirectsWithoutCookie(t *testing.T) {
	e := guardTestServer(t, guardCodec())

	rec := doGuarded(e, "/admin/x", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("code = %d, want 302", rec.Code)
	}
	want := "/auth/signin?from=%2Fadmin%2Fx"
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("location = %q, want %q", loc, want)
	}
}

func TestGuardRedirectsInvalidAndExpiredTokens(t *testing.T) {
	codec := guardCodec()
	e := guardTestServer(t, codec)

	expiredCodec := auth.NewTokenCodec(auth.Options{
		AccessSecret:  "guard-access-secret",
		RefreshSecret: "guard-refresh-secret",
		AccessTTL:     time.Nanosecond,
	})
	expired, err := expiredCodec.CreateAccessToken(1, "u@x.com", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	foreign, err := auth.NewTokenCodec(auth.Options{
		AccessSecret:  "someone-elses-secret",
		RefreshSecret: "x",
	}).CreateAccessToken(1, "u@x.com", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	for name, token := range map[string]string{
		"garbage": "nonsense",
		"expired": expired,
		"foreign": foreign,
	} {
		rec := doGuarded(e, "/dashboard", token)
		if rec.Code != http.StatusFound {
			t.Errorf("%s: code = %d, want 302", name, rec.Code)
		}
	}
}

func TestGuardAdminRoleCheck(t *testing.T) {
	codec := guardCodec()
	e := guardTestServer(t, codec)

	userToken, err := codec.CreateAccessToken(1, "u@x.com", auth.RoleUser)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	adminToken, err := codec.CreateAccessToken(2, "a@x.com", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	// A plain user on an admin page goes home: an authorization
	// failure, not an authentication one.
	rec := doGuarded(e, "/admin/x", userToken)
	if rec.Code != http.StatusFound {
		t.Fatalf("user: code = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("user: location = %q, want %q", loc, "/")
	}

	rec = doGuarded(e, "/admin/x", adminToken)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: code = %d, want 200", rec.Code)
	}

	// The same user token is fine on a non-admin protected page.
	rec = doGuarded(e, "/dashboard", userToken)
	if rec.Code != http.StatusOK {
		t.Errorf("dashboard: code = %d, want 200", rec.Code)
	}
}
