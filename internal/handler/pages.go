package handler

// pages.go holds the server-rendered page handlers the route guard
// fronts. The markup is deliberately minimal; the pages exist so the
// guarded prefixes resolve to real targets while the UI lives in its
// own frontend.

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func page(c echo.Context, title, body string) error {
	return c.HTML(http.StatusOK,
		"<!doctype html><html><head><title>"+title+"</title></head><body><h1>"+title+"</h1><p>"+body+"</p></body></html>")
}

// Home is the public landing page and the target of the guard's
// authorization-failure redirect.
func Home(c echo.Context) error {
	return page(c, "Velora", "Welcome.")
}

// Dashboard requires a session of any role.
func Dashboard(c echo.Context) error {
	return page(c, "Dashboard", "Your dashboard.")
}

// Admin requires an admin role.
func Admin(c echo.Context) error {
	return page(c, "Admin", "Administration.")
}

// SigninPage is where the guard sends unauthenticated requests; the
// original path arrives in the `from` query parameter.
func SigninPage(c echo.Context) error {
	return page(c, "Sign in", "Sign in to continue.")
}

// SignupPage is the public registration page.
func SignupPage(c echo.Context) error {
	return page(c, "Sign up", "Create an account.")
}
