package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora-cms/velora/internal/repository"
)

// SettingsHandler serves site-wide settings. Reading is public so the
// frontend can pick up theme and similar values before sign-in; writing
// is admin-only (enforced at the route).
type SettingsHandler struct {
	Settings *repository.SettingRepo
}

func NewSettingsHandler(settings *repository.SettingRepo) *SettingsHandler {
	return &SettingsHandler{Settings: settings}
}

type upsertSettingReq struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// List returns all settings as a key/value object.
func (h *SettingsHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	settings, err := h.Settings.List(ctx)
	if err != nil {
		c.Logger().Errorf("settings: list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch settings"})
	}
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.K] = s.V
	}
	return c.JSON(http.StatusOK, out)
}

// Upsert writes one setting.
func (h *SettingsHandler) Upsert(c echo.Context) error {
	var req upsertSettingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "key is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Settings.Upsert(ctx, req.Key, req.Value); err != nil {
		c.Logger().Errorf("settings: upsert: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save setting"})
	}
	return c.JSON(http.StatusOK, echo.Map{req.Key: req.Value})
}
