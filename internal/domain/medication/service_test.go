package medication

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

type mockRepo struct {
	medications map[uuid.UUID]*Medication
}

func newMockRepo() *mockRepo {
	return &mockRepo{medications: make(map[uuid.UUID]*Medication)}
}

func (m *mockRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	m.medications[med.ID] = med
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.medications[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return med, nil
}

func (m *mockRepo) Update(_ context.Context, med *Medication) error {
	m.medications[med.ID] = med
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.medications[id]; !ok {
		return false, nil
	}
	delete(m.medications, id)
	return true, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.medications {
		if med.UserID == userID {
			result = append(result, med)
		}
	}
	return result, len(result), nil
}

func strPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	svc := NewService(newMockRepo())
	med := &Medication{UserID: uuid.New(), Name: "Lisinopril", Dosage: strPtr("10mg")}
	if err := svc.Create(context.Background(), med); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if med.ID == uuid.Nil {
		t.Error("expected assigned id")
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	start := time.Now()
	end := start.Add(-24 * time.Hour)
	cases := []struct {
		name string
		med  *Medication
	}{
		{"missing user", &Medication{Name: "Aspirin"}},
		{"missing name", &Medication{UserID: uuid.New()}},
		{"blank name", &Medication{UserID: uuid.New(), Name: "   "}},
		{"end before start", &Medication{UserID: uuid.New(), Name: "Aspirin", StartDate: &start, EndDate: &end}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Create(context.Background(), tc.med); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestService_Get_OwnershipHidesRow(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := uuid.New()
	med := &Medication{UserID: owner, Name: "Metformin"}
	if err := svc.Create(context.Background(), med); err != nil {
		t.Fatal(err)
	}

	// Owner sees it.
	if _, err := svc.Get(context.Background(), med.ID, auth.Identity{UserID: owner, Role: auth.RoleUser}); err != nil {
		t.Errorf("owner should see own medication: %v", err)
	}
	// Another plain user gets not-found, not forbidden.
	_, err := svc.Get(context.Background(), med.ID, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}
	// Staff sees everything.
	if _, err := svc.Get(context.Background(), med.ID, auth.Identity{UserID: uuid.New(), Role: auth.RoleSubadmin}); err != nil {
		t.Errorf("subadmin should see any medication: %v", err)
	}
}

func TestService_Update(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := uuid.New()
	med := &Medication{UserID: owner, Name: "Metformin"}
	if err := svc.Create(context.Background(), med); err != nil {
		t.Fatal(err)
	}

	caller := auth.Identity{UserID: owner, Role: auth.RoleUser}
	updated, err := svc.Update(context.Background(), med.ID, &Medication{Name: "Metformin XR", Dosage: strPtr("500mg")}, caller)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Metformin XR" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if updated.UserID != owner {
		t.Error("update must not reassign ownership")
	}
}

func TestService_Update_NonOwner(t *testing.T) {
	svc := NewService(newMockRepo())
	med := &Medication{UserID: uuid.New(), Name: "Metformin"}
	if err := svc.Create(context.Background(), med); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Update(context.Background(), med.ID, &Medication{Name: "Hijacked"}, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	owner := uuid.New()
	med := &Medication{UserID: owner, Name: "Metformin"}
	if err := svc.Create(context.Background(), med); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), med.ID, auth.Identity{UserID: owner, Role: auth.RoleUser}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.medications) != 0 {
		t.Error("medication not deleted")
	}
}

func TestService_ListByUser(t *testing.T) {
	svc := NewService(newMockRepo())
	owner := uuid.New()
	for i := 0; i < 3; i++ {
		if err := svc.Create(context.Background(), &Medication{UserID: owner, Name: fmt.Sprintf("Med %d", i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Create(context.Background(), &Medication{UserID: uuid.New(), Name: "Other"}); err != nil {
		t.Fatal(err)
	}

	items, total, err := svc.ListByUser(context.Background(), owner, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("expected 3 medications, got %d (total %d)", len(items), total)
	}
}
