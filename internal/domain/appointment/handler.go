package appointment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
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

func (h *Handler) RegisterRoutes(api, admin *echo.Group) {
	api.GET("/appointments", h.List)
	api.POST("/appointments", h.Create)
	api.GET("/appointments/:id", h.Get)
	api.POST("/appointments/:id/cancel", h.Cancel)
	api.POST("/appointments/:id/reschedule", h.Reschedule)
	api.DELETE("/appointments/:id", h.Delete)

	staff := auth.RequireRole(auth.RoleAdmin, auth.RoleSubadmin)
	admin.GET("/appointments", h.AdminList, staff)
	admin.PUT("/appointments/:id/status", h.UpdateStatus, staff)
}

func (h *Handler) Create(c echo.Context) error {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.UserID = id.UserID

	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	caller, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	a, err := h.svc.Get(c.Request().Context(), id, caller)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

// List returns the caller's appointments. Staff may pass user_id to view
// another patient's schedule.
func (h *Handler) List(c echo.Context) error {
	caller, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	subject := caller.UserID
	if raw := c.QueryParam("user_id"); raw != "" && caller.Role.Staff() {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		subject = parsed
	}

	params := pagination.FromContext(c)
	items, total, err := h.svc.ListByUser(c.Request().Context(), subject, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uuid.UUID, caller auth.Identity) (*Appointment, error) {
		return h.svc.Cancel(c.Request().Context(), id, caller)
	})
}

func (h *Handler) Reschedule(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uuid.UUID, caller auth.Identity) (*Appointment, error) {
		var req RescheduleRequest
		if err := c.Bind(&req); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return h.svc.Reschedule(c.Request().Context(), id, req.ScheduledAt, caller)
	})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	return h.transition(c, func(c echo.Context, id uuid.UUID, caller auth.Identity) (*Appointment, error) {
		var req StatusRequest
		if err := c.Bind(&req); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return h.svc.UpdateStatus(c.Request().Context(), id, req.Status, caller)
	})
}

func (h *Handler) transition(c echo.Context, fn func(echo.Context, uuid.UUID, auth.Identity) (*Appointment, error)) error {
	caller, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	a, err := fn(c, id, caller)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	caller, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	if err := h.svc.Delete(c.Request().Context(), id, caller); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrNotCancelled):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete appointment")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminList returns all appointments, optionally filtered by ?status=.
func (h *Handler) AdminList(c echo.Context) error {
	params := pagination.FromContext(c)
	status := c.QueryParam("status")

	items, total, err := h.svc.List(c.Request().Context(), status, params.Limit, params.Offset)
	if err != nil {
		if status != "" && !ValidStatus(status) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}
