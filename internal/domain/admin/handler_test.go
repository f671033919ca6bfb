package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(smtp *mockSMTPRepo) (*Handler, *echo.Echo) {
	svc, _ := newTestService(smtp)
	return NewHandler(svc), echo.New()
}

func TestHandler_Stats(t *testing.T) {
	h, e := newTestHandler(&mockSMTPRepo{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if err := h.Stats(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"users"`) || !strings.Contains(rec.Body.String(), `"appointments"`) {
		t.Errorf("stats body incomplete: %s", rec.Body.String())
	}
}

func TestHandler_GetSMTPSettings_NotConfigured(t *testing.T) {
	h, e := newTestHandler(&mockSMTPRepo{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	err := h.GetSMTPSettings(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_SMTPSettings_PasswordNeverSerialized(t *testing.T) {
	h, e := newTestHandler(&mockSMTPRepo{stored: &SMTPSettings{
		Host: "smtp.example.com", Port: 587, Password: "hunter2", FromAddress: "noreply@example.com",
	}})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if err := h.GetSMTPSettings(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Errorf("password leaked in response: %s", rec.Body.String())
	}
}

func TestHandler_SaveSMTPSettings(t *testing.T) {
	h, e := newTestHandler(&mockSMTPRepo{})
	body := `{"host":"smtp.example.com","port":587,"username":"mailer","password":"hunter2","from_address":"noreply@example.com","use_tls":true}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.SaveSMTPSettings(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Errorf("password leaked in response: %s", rec.Body.String())
	}
}

func TestHandler_SaveSMTPSettings_Invalid(t *testing.T) {
	h, e := newTestHandler(&mockSMTPRepo{})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"port":587}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.SaveSMTPSettings(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
