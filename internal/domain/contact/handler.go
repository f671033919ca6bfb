package contact

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
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
	api.GET("/emergency-contacts", h.List)
	api.POST("/emergency-contacts", h.Create)
	api.PUT("/emergency-contacts/:id", h.Update)
	api.DELETE("/emergency-contacts/:id", h.Delete)
	api.POST("/emergency-contacts/:id/main", h.SetMain)
}

func caller(c echo.Context) (auth.Identity, error) {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return ident, nil
}

func (h *Handler) Create(c echo.Context) error {
	ident, err := caller(c)
	if err != nil {
		return err
	}
	var ec EmergencyContact
	if err := c.Bind(&ec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ec.UserID = ident.UserID
	if err := h.svc.Create(c.Request().Context(), &ec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ec)
}

func (h *Handler) List(c echo.Context) error {
	ident, err := caller(c)
	if err != nil {
		return err
	}
	userID := ident.UserID
	if target := c.QueryParam("user_id"); target != "" && ident.Role.Staff() {
		userID, err = uuid.Parse(target)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
	}
	items, err := h.svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	ident, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ec EmergencyContact
	if err := c.Bind(&ec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.svc.Update(c.Request().Context(), id, &ec, ident)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "emergency contact not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	ident, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, ident); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "emergency contact not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetMain(c echo.Context) error {
	ident, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ec, err := h.svc.SetMain(c.Request().Context(), id, ident)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "emergency contact not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ec)
}
