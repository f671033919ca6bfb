package medication

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
	return NewHandler(NewService(newMockRepo())), echo.New()
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, ident auth.Identity) echo.Context {
	c := e.NewContext(req, rec)
	ctx := auth.WithIdentity(req.Context(), ident)
	c.SetRequest(req.WithContext(ctx))
	return c
}

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Lisinopril","dosage":"10mg","frequency":"daily"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var created Medication
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("create response should carry the stored timestamps")
	}
}

func TestHandler_Create_MissingName(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})

	if err := h.Create(c); err == nil {
		t.Error("expected validation error")
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_List_OwnerScoped(t *testing.T) {
	h, e := newTestHandler()
	owner := uuid.New()
	if err := h.svc.Create(context.Background(), &Medication{UserID: owner, Name: "Mine"}); err != nil {
		t.Fatal(err)
	}
	if err := h.svc.Create(context.Background(), &Medication{UserID: uuid.New(), Name: "Theirs"}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, auth.Identity{UserID: owner, Role: auth.RoleUser})

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Mine") || strings.Contains(rec.Body.String(), "Theirs") {
		t.Errorf("list not owner-scoped: %s", rec.Body.String())
	}
}

func TestHandler_List_StaffCanTargetUser(t *testing.T) {
	h, e := newTestHandler()
	owner := uuid.New()
	if err := h.svc.Create(context.Background(), &Medication{UserID: owner, Name: "Mine"}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/?user_id="+owner.String(), nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, auth.Identity{UserID: uuid.New(), Role: auth.RoleSubadmin})

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Mine") {
		t.Errorf("staff listing missing target user's rows: %s", rec.Body.String())
	}
}

func TestHandler_Delete(t *testing.T) {
	h, e := newTestHandler()
	owner := uuid.New()
	med := &Medication{UserID: owner, Name: "Mine"}
	if err := h.svc.Create(context.Background(), med); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, auth.Identity{UserID: owner, Role: auth.RoleUser})
	c.SetParamNames("id")
	c.SetParamValues(med.ID.String())

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
