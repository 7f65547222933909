package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/velora-cms/velora/internal/auth"
	"github.com/velora-cms/velora/internal/model"
)

// memStore is an in-memory CredentialStore with the same conditional
// rotation semantics as the SQL implementation.
type memStore struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]*model.User
}

func newMemStore() *memStore {
	return &memStore{users: map[uint64]*model.User{}}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *memStore) FindByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) Create(_ context.Context, name, email, passwordHash string, role auth.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return nil, auth.ErrEmailTaken
		}
	}
	s.seq++
	u := &model.User{
		ID:           s.seq,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role.String(),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *memStore) SetRefreshTokenHash(_ context.Context, id uint64, hash *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	if hash == nil {
		u.RefreshTokenHash = nil
		return nil
	}
	h := *hash
	u.RefreshTokenHash = &h
	return nil
}

func (s *memStore) RotateRefreshTokenHash(_ context.Context, id uint64, oldHash, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.RefreshTokenHash == nil || *u.RefreshTokenHash != oldHash {
		return auth.ErrTokenReplay
	}
	u.RefreshTokenHash = &newHash
	return nil
}

// ----- helpers -----

func testAuthHandler(store auth.CredentialStore) (*AuthHandler, *echo.Echo) {
	codec := auth.NewTokenCodec(auth.Options{
		AccessSecret:  "handler-access-secret",
		RefreshSecret: "handler-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	h := NewAuthHandler(codec, store, AuthOptions{
		BcryptCost: bcrypt.MinCost,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	e := echo.New()
	e.POST("/auth/signup", h.SignUp)
	e.POST("/auth/signin", h.SignIn)
	e.POST("/auth/refresh", h.Refresh)
	e.POST("/auth/signout", h.SignOut)
	e.GET("/auth/me", h.Me)
	return h, e
}

func postJSON(e *echo.Echo, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func responseCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	res := http.Response{Header: rec.Header()}
	return res.Cookies()
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func signIn(t *testing.T, e *echo.Echo, email, password string) []*http.Cookie {
	t.Helper()
	rec := postJSON(e, "/auth/signin", `{"email":"`+email+`","password":"`+password+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin code = %d, body = %s", rec.Code, rec.Body.String())
	}
	return responseCookies(rec)
}

// ----- tests -----

func TestSignUp(t *testing.T) {
	_, e := testAuthHandler(newMemStore())

	rec := postJSON(e, "/auth/signup", `{"email":"a@x.com","password":"Abcdef12"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(strings.ToLower(body), "password") {
		t.Errorf("response leaks password material: %s", body)
	}
	if !strings.Contains(body, `"email":"a@x.com"`) {
		t.Errorf("response missing safe user fields: %s", body)
	}

	// Second registration with the same email conflicts.
	rec = postJSON(e, "/auth/signup", `{"email":"a@x.com","password":"Abcdef12"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate code = %d, want 409", rec.Code)
	}
}

func TestSignUpValidation(t *testing.T) {
	_, e := testAuthHandler(newMemStore())

	for _, body := range []string{`{}`, `{"email":"a@x.com"}`, `{"password":"x"}`} {
		if rec := postJSON(e, "/auth/signup", body, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: code = %d, want 400", body, rec.Code)
		}
	}
}

func TestSignInSetsCookiesAndHash(t *testing.T) {
	store := newMemStore()
	_, e := testAuthHandler(store)
	postJSON(e, "/auth/signup", `{"email":"a@x.com","password":"Abcdef12"}`, nil)

	cookies := signIn(t, e, "a@x.com", "Abcdef12")

	access := cookieByName(cookies, auth.AccessCookie)
	refresh := cookieByName(cookies, auth.RefreshCookie)
	if access == nil || access.Value == "" {
		t.Fatal("access cookie not set")
	}
	if refresh == nil || refresh.Value == "" {
		t.Fatal("refresh cookie not set")
	}
	if !access.HttpOnly || !refresh.HttpOnly {
		t.Error("auth cookies must be http-only")
	}

	u, err := store.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.RefreshTokenHash == nil {
		t.Fatal("refresh hash not persisted")
	}
	if !auth.VerifyRefreshTokenHash(*u.RefreshTokenHash, refresh.Value) {
		t.Error("stored hash does not match issued refresh token")
	}
}

func TestSignInDoesNotRevealWhichCheckFailed(t *testing.T) {
	_, e := testAuthHandler(newMemStore())
	postJSON(e, "/auth/signup", `{"email":"a@x.com","password":"Abcdef12"}`, nil)

	wrongPassword := postJSON(e, "/auth/signin", `{"email":"a@x.com","password":"nope1234"}`, nil)
	unknownEmail := postJSON(e, "/auth/signin", `{"email":"b@x.com","password":"Abcdef12"}`, nil)

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("codes = %d/%d, want 401/401", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("responses differ: %q vs %q",
			wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestRefreshRotatesAndRejectsReuse(t *testing.T) {
	store := newMemStore()
	_, e := testAuthHandler(store)
	postJSON(e, "/auth/signup", `{"email":"a@x.com","password":"Abcdef12"}`, nil)
	cookies := signIn(t, e, "a@x.com", "Abcdef12")
	oldRefresh := cookieByName(cookies, auth.RefreshCookie)

	rec := postJSON(e, "/auth/refresh", "", []*http.Cookie{oldRefresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh code = %d, body = %s", rec.Code, rec.Body.String())
	}
	newRefresh := cookieByName(responseCookies(rec), auth.RefreshCookie)
	if newRefresh == nil || newRefresh.Value == oldRefresh.Value {
		t.Fatal("refresh token was not rotated")
	}

	// The rotated-out token is dead even though its expiry has not
	// elapsed.
	rec = postJSON(e, "/auth/refresh", "", []*http.Cookie{oldRefresh})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replayed refresh code = %d, want 401", rec.Code)
	}

	// The new one still works.
	rec = postJSON(e, "/auth/refresh", "", []*http.Cookie{newRefresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("rotated refresh code = %d, want 200", rec.Code)
	}
}

func TestRefreshRejectsForeignAndMissingTokens(t *testing.T) {
	_, e := testAuthHandler(newMemStore())

	if rec := postJSON(e, "/auth/refresh", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: code = %d, want 401", rec.Code)
	}

	foreign, err := auth.NewTokenCodec(auth.Options{
		AccessSecret:  "x",
		RefreshSecret: "not-the-server-secret",
	}).CreateRefreshToken(1)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	rec := postJSON(e, "/auth/refresh", "",
		[]*http.Cookie{{Name: auth.RefreshCookie, Value: foreign}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign token: code = %d, want 401", rec.Code)
	}
}

func TestSignOutIsIdempotent(t *testing.T) {
	store := newMemStore()
	_, e := testAuthHandler(store)
	postJSON(e, "/auth/signup", `{"email":"a@x.com","password":"Abcdef12"}`, nil)
	cookies := signIn(t, e, "a@x.com", "Abcdef12")
	access := cookieByName(cookies, auth.AccessCookie)

	for i := 0; i < 2; i++ {
		rec := postJSON(e, "/auth/signout", "", []*http.Cookie{access})
		if rec.Code != http.StatusOK {
			t.Fatalf("signout #%d code = %d, want 200", i+1, rec.Code)
		}
		for _, name := range []string{auth.AccessCookie, auth.RefreshCookie} {
			ck := cookieByName(responseCookies(rec), name)
			if ck == nil || ck.Value != "" || ck.MaxAge >= 0 {
				t.Errorf("signout #%d did not clear %s cookie", i+1, name)
			}
		}
	}

	u, err := store.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.RefreshTokenHash != nil {
		t.Error("refresh hash not cleared")
	}

	// No cookies at all is still a successful no-op.
	if rec := postJSON(e, "/auth/signout", "", nil); rec.Code != http.StatusOK {
		t.Errorf("anonymous signout code = %d, want 200", rec.Code)
	}
}

func TestSignOutInvalidatesRefresh(t *testing.T) {
	_, e := testAuthHandler(newMemStore())
	postJSON(e, "/auth/signup", `{"email":"a@x.com","password":"Abcdef12"}`, nil)
	cookies := signIn(t, e, "a@x.com", "Abcdef12")
	access := cookieByName(cookies, auth.AccessCookie)
	refresh := cookieByName(cookies, auth.RefreshCookie)

	postJSON(e, "/auth/signout", "", []*http.Cookie{access})

	rec := postJSON(e, "/auth/refresh", "", []*http.Cookie{refresh})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after signout code = %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	_, e := testAuthHandler(newMemStore())
	postJSON(e, "/auth/signup", `{"email":"a@x.com","password":"Abcdef12"}`, nil)
	cookies := signIn(t, e, "a@x.com", "Abcdef12")
	access := cookieByName(cookies, auth.AccessCookie)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(access)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"a@x.com"`) {
		t.Errorf("body missing user: %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous code = %d, want 401", rec.Code)
	}
}
