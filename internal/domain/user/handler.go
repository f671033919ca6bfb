package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

type Handler struct {
	svc      *Service
	sessions *auth.Sessions
}

func NewHandler(svc *Service, sessions *auth.Sessions) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes wires the public auth endpoints and the authenticated
// account endpoints.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/logout", h.Logout)

	api.GET("/me", h.Me)
	api.PUT("/me", h.UpdateMe)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.sessions.Issue(u.ID, u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "issue session")
	}
	c.SetCookie(h.sessions.Cookie(token))
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.sessions.Issue(u.ID, u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "issue session")
	}
	c.SetCookie(h.sessions.Cookie(token))
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.ClearCookie())
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	u, err := h.svc.Get(c.Request().Context(), id.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateMe(c echo.Context) error {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), id.UserID, req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}
