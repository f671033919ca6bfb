package profile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patient-profile", h.Get)
	api.PUT("/patient-profile", h.Save)
}

func (h *Handler) Get(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	p, err := h.svc.Get(c.Request().Context(), ident.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Save(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var p PatientProfile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.UserID = ident.UserID

	saved, err := h.svc.Save(c.Request().Context(), &p)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, saved)
}
