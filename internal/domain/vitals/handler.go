package vitals

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/blood-pressure", h.ListBloodPressure)
	api.POST("/blood-pressure", h.CreateBloodPressure)
	api.DELETE("/blood-pressure/:id", h.DeleteBloodPressure)

	api.GET("/blood-sugar", h.ListBloodSugar)
	api.POST("/blood-sugar", h.CreateBloodSugar)
	api.DELETE("/blood-sugar/:id", h.DeleteBloodSugar)
}

func identityAndSubject(c echo.Context) (auth.Identity, uuid.UUID, error) {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return auth.Identity{}, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if target := c.QueryParam("user_id"); target != "" && ident.Role.Staff() {
		id, err := uuid.Parse(target)
		if err != nil {
			return auth.Identity{}, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		return ident, id, nil
	}
	return ident, ident.UserID, nil
}

func (h *Handler) CreateBloodPressure(c echo.Context) error {
	ident, _, err := identityAndSubject(c)
	if err != nil {
		return err
	}
	var rec BloodPressureRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.UserID = ident.UserID
	if err := h.svc.CreateBloodPressure(c.Request().Context(), &rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListBloodPressure(c echo.Context) error {
	_, userID, err := identityAndSubject(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBloodPressure(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeleteBloodPressure(c echo.Context) error {
	ident, _, err := identityAndSubject(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBloodPressure(c.Request().Context(), id, ident); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "blood pressure record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateBloodSugar(c echo.Context) error {
	ident, _, err := identityAndSubject(c)
	if err != nil {
		return err
	}
	var rec BloodSugarRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.UserID = ident.UserID
	if err := h.svc.CreateBloodSugar(c.Request().Context(), &rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListBloodSugar(c echo.Context) error {
	_, userID, err := identityAndSubject(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBloodSugar(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeleteBloodSugar(c echo.Context) error {
	ident, _, err := identityAndSubject(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBloodSugar(c.Request().Context(), id, ident); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "blood sugar record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
