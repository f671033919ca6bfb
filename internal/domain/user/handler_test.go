package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _ := newTestService()
	sessions := auth.NewSessions([]byte("test-secret-0123456789abcdef0123"), time.Hour, false)
	return NewHandler(svc, sessions), echo.New()
}

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Jane Doe","email":"jane@example.com","password":"secret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var sessionCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.SessionCookie {
			sessionCookie = ck
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Error("expected session cookie on register")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaked password hash")
	}
}

func TestHandler_Register_DuplicateEmail(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Jane","email":"jane@example.com","password":"secret-password"}`

	for i, wantErr := range []bool{false, true} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Register(c)
		if wantErr {
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Errorf("attempt %d: expected 400 for duplicate email, got %v", i, err)
			}
		} else if err != nil {
			t.Errorf("attempt %d: unexpected error: %v", i, err)
		}
	}
}

func TestHandler_Login(t *testing.T) {
	h, e := newTestHandler()
	if _, err := h.svc.Register(nil, RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret-password"}); err != nil {
		t.Fatal(err)
	}

	body := `{"email":"jane@example.com","password":"secret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, e := newTestHandler()
	body := `{"email":"nobody@example.com","password":"whatever"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_Logout(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.SessionCookie && ck.MaxAge >= 0 {
			t.Error("expected expired session cookie")
		}
	}
}

func TestHandler_Me(t *testing.T) {
	h, e := newTestHandler()
	u, err := h.svc.Register(nil, RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret-password"})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ctx := auth.WithIdentity(req.Context(), auth.Identity{UserID: u.ID, Role: u.Role})
	c.SetRequest(req.WithContext(ctx))

	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "jane@example.com") {
		t.Errorf("response missing user: %s", rec.Body.String())
	}
}

func TestHandler_Me_Unauthenticated(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_UpdateMe(t *testing.T) {
	h, e := newTestHandler()
	u, err := h.svc.Register(nil, RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret-password"})
	if err != nil {
		t.Fatal(err)
	}

	body := `{"name":"Jane Q. Doe","email":"jane.doe@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ctx := auth.WithIdentity(req.Context(), auth.Identity{UserID: u.ID, Role: u.Role})
	c.SetRequest(req.WithContext(ctx))

	if err := h.UpdateMe(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "jane.doe@example.com") {
		t.Errorf("response missing updated email: %s", rec.Body.String())
	}
}
