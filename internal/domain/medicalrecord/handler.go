package medicalrecord

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

// RegisterRoutes wires the owner-scoped endpoints and the staff listing.
func (h *Handler) RegisterRoutes(api, admin *echo.Group) {
	api.GET("/medical-records", h.Get)
	api.PUT("/medical-records", h.Save)
	api.GET("/medical-records/export", h.Export)

	api.GET("/disease-histories", h.ListDiseaseHistories)
	api.POST("/disease-histories", h.CreateDiseaseHistory)
	api.DELETE("/disease-histories/:id", h.DeleteDiseaseHistory)

	admin.GET("/medical-records", h.List, auth.RequireRole(auth.RoleAdmin, auth.RoleSubadmin))
}

// subjectID resolves whose data the request is about: the caller's own, or
// for staff, an explicit user_id query parameter.
func subjectID(c echo.Context) (uuid.UUID, error) {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if target := c.QueryParam("user_id"); target != "" && ident.Role.Staff() {
		id, err := uuid.Parse(target)
		if err != nil {
			return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		return id, nil
	}
	return ident.UserID, nil
}

func (h *Handler) Get(c echo.Context) error {
	userID, err := subjectID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Save(c echo.Context) error {
	userID, err := subjectID(c)
	if err != nil {
		return err
	}
	var rec MedicalRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.UserID = userID
	saved, err := h.svc.Save(c.Request().Context(), &rec)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) Export(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	// Exports are always the caller's own data, regardless of role.
	exp, err := h.svc.BuildExport(c.Request().Context(), ident.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="caretrack-export.json"`)
	return c.JSON(http.StatusOK, exp)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListDiseaseHistories(c echo.Context) error {
	userID, err := subjectID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDiseaseHistories(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateDiseaseHistory(c echo.Context) error {
	userID, err := subjectID(c)
	if err != nil {
		return err
	}
	var dh DiseaseHistory
	if err := c.Bind(&dh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dh.UserID = userID
	if err := h.svc.CreateDiseaseHistory(c.Request().Context(), &dh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, dh)
}

func (h *Handler) DeleteDiseaseHistory(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDiseaseHistory(c.Request().Context(), id, ident); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "disease history not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
