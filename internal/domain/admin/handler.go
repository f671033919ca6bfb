package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the admin-only surface. Appointment and
// medical-record oversight routes live in their own packages.
func (h *Handler) RegisterRoutes(admin *echo.Group) {
	adminOnly := auth.RequireRole(auth.RoleAdmin)
	admin.GET("/users", h.ListUsers, adminOnly)
	admin.GET("/stats", h.Stats, adminOnly)
	admin.GET("/smtp-settings", h.GetSMTPSettings, adminOnly)
	admin.POST("/smtp-settings", h.SaveSMTPSettings, adminOnly)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetSMTPSettings(c echo.Context) error {
	settings, found, err := h.svc.GetSMTPSettings(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load smtp settings")
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "smtp settings not configured")
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *Handler) SaveSMTPSettings(c echo.Context) error {
	var req SMTPSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	settings, err := h.svc.SaveSMTPSettings(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, settings)
}
