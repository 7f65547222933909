package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora-cms/velora/internal/auth"
	"github.com/velora-cms/velora/internal/model"
	"github.com/velora-cms/velora/internal/queue"
)

// AuthOptions carries the knobs the auth endpoints need beyond the
// token codec: hashing cost and cookie behavior.
type AuthOptions struct {
	BcryptCost    int
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SecureCookies bool
}

// AuthHandler bundles dependencies for the auth endpoints.  Publish is
// optional; when set it is called after a successful sign-up and its
// failure never affects the response.
type AuthHandler struct {
	Codec   *auth.TokenCodec
	Store   auth.CredentialStore
	Opts    AuthOptions
	Publish func(ctx context.Context, ev queue.UserSignedUpEvent) error
}

func NewAuthHandler(codec *auth.TokenCodec, store auth.CredentialStore, opts AuthOptions) *AuthHandler {
	return &AuthHandler{Codec: codec, Store: store, Opts: opts}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type signinReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userPart is the safe projection of a user returned by every auth
// endpoint. Secret columns never appear here.
type userPart struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func safeUser(u *model.User) userPart {
	return userPart{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// SignUp registers a new user. It does not sign the user in; the client
// proceeds to the sign-in endpoint afterwards.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	hash, err := auth.HashPassword(req.Password, h.Opts.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Store.Create(ctx, strings.TrimSpace(req.Name), req.Email, hash, auth.RoleUser)
	if err != nil {
		if err == auth.ErrEmailTaken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
		}
		c.Logger().Errorf("signup: create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if h.Publish != nil {
		ev := queue.UserSignedUpEvent{
			UserID:     u.ID,
			Email:      u.Email,
			Name:       u.Name,
			Role:       u.Role,
			SignedUpAt: u.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := h.Publish(c.Request().Context(), ev); err != nil {
			c.Logger().Warnf("signup: publish event: %v", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user created successfully",
		"user":    safeUser(u),
	})
}

// SignIn verifies credentials and establishes a session. A missing user
// and a wrong password produce the identical response so the endpoint
// cannot be used to probe which emails are registered.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Store.FindByEmail(ctx, req.Email)
	if err != nil {
		if err == auth.ErrUserNotFound {
			return wrongCredentials(c)
		}
		c.Logger().Errorf("signin: lookup: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign in failed"})
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return wrongCredentials(c)
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}
	role, ok := auth.ParseRole(u.Role)
	if !ok {
		c.Logger().Errorf("signin: user %d has unknown role %q", u.ID, u.Role)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign in failed"})
	}

	access, err := h.Codec.CreateAccessToken(u.ID, u.Email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign in failed"})
	}
	refresh, err := h.Codec.CreateRefreshToken(u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign in failed"})
	}
	hash, err := auth.HashRefreshToken(refresh, h.Opts.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign in failed"})
	}
	if err := h.Store.SetRefreshTokenHash(ctx, u.ID, &hash); err != nil {
		c.Logger().Errorf("signin: store refresh hash: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign in failed"})
	}

	h.setAuthCookies(c, access, refresh)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "signin successful",
		"user":    safeUser(u),
	})
}

func wrongCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "wrong credentials"})
}

// Refresh exchanges a valid refresh cookie for a new access/refresh
// pair. The stored hash is swapped conditionally, so reusing an already
// rotated token fails even when two refreshes race. Every failure mode
// is reported as the same plain 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ck, err := c.Cookie(auth.RefreshCookie)
	if err != nil || ck.Value == "" {
		return refreshUnauthorized(c)
	}
	raw := ck.Value

	claims, err := h.Codec.VerifyRefreshToken(raw)
	if err != nil {
		return refreshUnauthorized(c)
	}
	userID, err := auth.ParseUserID(claims.Subject)
	if err != nil {
		return refreshUnauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Store.FindByID(ctx, userID)
	if err != nil {
		if err == auth.ErrUserNotFound {
			return refreshUnauthorized(c)
		}
		c.Logger().Errorf("refresh: lookup: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	if u.RefreshTokenHash == nil || !auth.VerifyRefreshTokenHash(*u.RefreshTokenHash, raw) {
		c.Logger().Warnf("refresh: hash mismatch for user %d, possible token replay", u.ID)
		return refreshUnauthorized(c)
	}
	role, ok := auth.ParseRole(u.Role)
	if !ok {
		c.Logger().Errorf("refresh: user %d has unknown role %q", u.ID, u.Role)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	access, err := h.Codec.CreateAccessToken(u.ID, u.Email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	newRefresh, err := h.Codec.CreateRefreshToken(u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	newHash, err := auth.HashRefreshToken(newRefresh, h.Opts.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	if err := h.Store.RotateRefreshTokenHash(ctx, u.ID, *u.RefreshTokenHash, newHash); err != nil {
		if err == auth.ErrTokenReplay {
			// A concurrent refresh won the rotation; this token is dead.
			c.Logger().Warnf("refresh: lost rotation race for user %d", u.ID)
			return refreshUnauthorized(c)
		}
		c.Logger().Errorf("refresh: rotate hash: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	h.setAuthCookies(c, access, newRefresh)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func refreshUnauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// SignOut destroys the session. The access token is decoded without
// verification so an expired token can still be signed out. Calling it
// with no cookies at all is a successful no-op.
func (h *AuthHandler) SignOut(c echo.Context) error {
	if ck, err := c.Cookie(auth.AccessCookie); err == nil && ck.Value != "" {
		if id, ok := h.Codec.DecodeSubjectUnverified(ck.Value); ok {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			if err := h.Store.SetRefreshTokenHash(ctx, id, nil); err != nil {
				// The cookies are cleared regardless; the stale hash
				// can only be consumed by its matching token anyway.
				c.Logger().Errorf("signout: clear refresh hash for user %d: %v", id, err)
			}
		}
	}
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "signed out successfully"})
}

// Me returns the current user's safe fields, freshly loaded so role or
// status changes since token issuance are visible.
func (h *AuthHandler) Me(c echo.Context) error {
	session := auth.ResolveSession(c.Request(), h.Codec)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Store.FindByID(ctx, session.User.ID)
	if err != nil {
		if err == auth.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		c.Logger().Errorf("me: lookup: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": safeUser(u)})
}

// ----- cookies -----

func (h *AuthHandler) setAuthCookies(c echo.Context, access, refresh string) {
	c.SetCookie(h.authCookie(auth.AccessCookie, access, int(h.Opts.AccessTTL.Seconds())))
	c.SetCookie(h.authCookie(auth.RefreshCookie, refresh, int(h.Opts.RefreshTTL.Seconds())))
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	for _, name := range []string{auth.AccessCookie, auth.RefreshCookie} {
		ck := h.authCookie(name, "", -1)
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func (h *AuthHandler) authCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
