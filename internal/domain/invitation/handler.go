package invitation

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

// RegisterRoutes wires the public accept endpoints and the admin-only
// management endpoints.
func (h *Handler) RegisterRoutes(public, admin *echo.Group) {
	public.GET("/invitations/:token", h.Get)
	public.POST("/invitations/:token/accept", h.Accept)

	admin.POST("/invite", h.Create, auth.RequireRole(auth.RoleAdmin))
	admin.GET("/invitations", h.List, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Create(c echo.Context) error {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.svc.Create(c.Request().Context(), req, id.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) Get(c echo.Context) error {
	inv, err := h.svc.Get(c.Request().Context(), c.Param("token"))
	if err != nil {
		return invitationError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) Accept(c echo.Context) error {
	var req AcceptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Accept(c.Request().Context(), c.Param("token"), req)
	if err != nil {
		return invitationError(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// invitationError maps every token rejection to 400. Unknown and expired
// tokens are deliberately indistinguishable to callers.
func invitationError(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
