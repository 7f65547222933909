package router // package router defines how HTTP routes are registered

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/velora-cms/velora/internal/auth"
	"github.com/velora-cms/velora/internal/config"
	"github.com/velora-cms/velora/internal/handler"
	"github.com/velora-cms/velora/internal/middleware"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Cfg        config.Config
	Codec      *auth.TokenCodec
	Auth       *handler.AuthHandler
	Content    *handler.ContentHandler
	AdminUsers *handler.AdminUserHandler
	Settings   *handler.SettingsHandler
	Redis      *redis.Client // may be nil; caching and limiting degrade
}

// Register wires all routes and middleware onto the Echo instance.
func Register(e *echo.Echo, d Deps) {
	// The page guard runs on every request; it only acts on the
	// configured protected prefixes and passes everything else through.
	e.Use(middleware.PageGuard(
		middleware.DefaultGuardConfig(d.Cfg.ProtectedPrefixes, d.Cfg.AdminPrefixes),
		d.Codec,
	))

	e.GET("/healthz", handler.Health)

	registerPages(e)
	registerAuth(e, d)
	registerAPI(e, d)
}

// registerPages maps the server-rendered pages. Access control lives
// entirely in the page guard, keyed by path prefix.
func registerPages(e *echo.Echo) {
	e.GET("/", handler.Home)
	e.GET("/dashboard", handler.Dashboard)
	e.GET("/admin", handler.Admin)
	e.GET("/auth/signin", handler.SigninPage)
	e.GET("/auth/signup", handler.SignupPage)
}

// registerAuth maps the session endpoints under /auth. The group sits
// behind the Redis token bucket to throttle credential guessing.
func registerAuth(e *echo.Echo, d Deps) {
	g := e.Group("/auth")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))

	g.POST("/signup", d.Auth.SignUp)
	g.POST("/signin", d.Auth.SignIn)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/signout", d.Auth.SignOut)
	g.GET("/me", d.Auth.Me)
}

// registerAPI maps the JSON CRUD endpoints. Published content and
// settings are readable without a session; writes require one with the
// right role and answer with status codes, never redirects.
func registerAPI(e *echo.Echo, d Deps) {
	api := e.Group("/api")

	// Public published-content listing, cached in Redis.
	api.GET("/items", d.Content.List,
		middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis))

	staff := api.Group("/items",
		middleware.RequireSession(d.Codec, auth.StaffRoles...))
	staff.POST("", d.Content.Create)
	staff.PUT("/:id", d.Content.Update)
	staff.DELETE("/:id", d.Content.Delete)

	api.GET("/settings", d.Settings.List)
	api.PUT("/settings", d.Settings.Upsert,
		middleware.RequireSession(d.Codec, auth.AdminRoles...))

	admin := api.Group("/admin",
		middleware.RequireSession(d.Codec, auth.AdminRoles...))
	admin.GET("/users", d.AdminUsers.List)
	admin.POST("/users", d.AdminUsers.Create)
	admin.PUT("/users/:id", d.AdminUsers.Update)
	admin.DELETE("/users/:id", d.AdminUsers.Delete)
}
