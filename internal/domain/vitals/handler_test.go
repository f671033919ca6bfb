package vitals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func authed(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, ident auth.Identity) echo.Context {
	c := e.NewContext(req, rec)
	ctx := auth.WithIdentity(req.Context(), ident)
	c.SetRequest(req.WithContext(ctx))
	return c
}

func TestHandler_CreateBloodPressure(t *testing.T) {
	h, e := newTestHandler()
	body := `{"systolic":120,"diastolic":80,"pulse":70}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authed(e, req, rec, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})

	if err := h.CreateBloodPressure(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var got BloodPressureRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if got.ID == uuid.Nil || got.MeasuredAt.IsZero() || got.CreatedAt.IsZero() {
		t.Errorf("response missing server fields: %+v", got)
	}
}

func TestHandler_CreateBloodPressure_Invalid(t *testing.T) {
	h, e := newTestHandler()
	body := `{"systolic":0,"diastolic":80,"pulse":70}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authed(e, req, rec, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})

	err := h.CreateBloodPressure(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListBloodSugar_OwnerScoped(t *testing.T) {
	h, e := newTestHandler()
	owner := uuid.New()
	if err := h.svc.CreateBloodSugar(context.Background(), &BloodSugarRecord{UserID: owner, LevelMgDl: 95}); err != nil {
		t.Fatal(err)
	}
	if err := h.svc.CreateBloodSugar(context.Background(), &BloodSugarRecord{UserID: uuid.New(), LevelMgDl: 200}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authed(e, req, rec, auth.Identity{UserID: owner, Role: auth.RoleUser})

	if err := h.ListBloodSugar(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("list not scoped to owner: %s", rec.Body.String())
	}
}

func TestHandler_DeleteBloodPressure_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := authed(e, req, rec, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.DeleteBloodPressure(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Unauthenticated(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListBloodPressure(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}
