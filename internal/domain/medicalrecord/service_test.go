package medicalrecord

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/domain/appointment"
	"github.com/caretrack/caretrack/internal/domain/medication"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

type mockRecordRepo struct {
	records map[uuid.UUID]*MedicalRecord // keyed by user id
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*MedicalRecord)}
}

func (m *mockRecordRepo) GetByUser(_ context.Context, userID uuid.UUID) (*MedicalRecord, error) {
	rec, ok := m.records[userID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return rec, nil
}

func (m *mockRecordRepo) Upsert(_ context.Context, rec *MedicalRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	m.records[rec.UserID] = rec
	return nil
}

func (m *mockRecordRepo) List(_ context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	var result []*MedicalRecord
	for _, rec := range m.records {
		result = append(result, rec)
	}
	return result, len(result), nil
}

type mockDiseaseRepo struct {
	entries map[uuid.UUID]*DiseaseHistory
}

func newMockDiseaseRepo() *mockDiseaseRepo {
	return &mockDiseaseRepo{entries: make(map[uuid.UUID]*DiseaseHistory)}
}

func (m *mockDiseaseRepo) Create(_ context.Context, dh *DiseaseHistory) error {
	dh.ID = uuid.New()
	dh.CreatedAt = time.Now()
	m.entries[dh.ID] = dh
	return nil
}

func (m *mockDiseaseRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*DiseaseHistory, int, error) {
	var result []*DiseaseHistory
	for _, dh := range m.entries {
		if dh.UserID == userID {
			result = append(result, dh)
		}
	}
	return result, len(result), nil
}

func (m *mockDiseaseRepo) DeleteOwned(_ context.Context, id, userID uuid.UUID) (bool, error) {
	dh, ok := m.entries[id]
	if !ok || dh.UserID != userID {
		return false, nil
	}
	delete(m.entries, id)
	return true, nil
}

func (m *mockDiseaseRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.entries[id]; !ok {
		return false, nil
	}
	delete(m.entries, id)
	return true, nil
}

type stubAppointments struct {
	items []*appointment.Appointment
}

func (s *stubAppointments) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*appointment.Appointment, int, error) {
	return s.items, len(s.items), nil
}

type stubMedications struct {
	items []*medication.Medication
}

func (s *stubMedications) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*medication.Medication, int, error) {
	return s.items, len(s.items), nil
}

func newTestService() (*Service, *mockRecordRepo, *mockDiseaseRepo) {
	records := newMockRecordRepo()
	diseases := newMockDiseaseRepo()
	svc := NewService(records, diseases, &stubAppointments{}, &stubMedications{})
	return svc, records, diseases
}

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

func TestService_Save_CreatesThenUpdates(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()

	first, err := svc.Save(context.Background(), &MedicalRecord{UserID: userID, HeightCm: floatPtr(172)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}

	second, err := svc.Save(context.Background(), &MedicalRecord{UserID: userID, WeightKg: floatPtr(68)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("save must update in place, got new id %s", second.ID)
	}
}

func TestService_Save_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	future := time.Now().Add(24 * time.Hour)
	cases := []struct {
		name string
		rec  *MedicalRecord
	}{
		{"missing user", &MedicalRecord{}},
		{"future dob", &MedicalRecord{UserID: uuid.New(), DateOfBirth: &future}},
		{"zero height", &MedicalRecord{UserID: uuid.New(), HeightCm: floatPtr(0)}},
		{"negative weight", &MedicalRecord{UserID: uuid.New(), WeightKg: floatPtr(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Save(context.Background(), tc.rec); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestService_Get_Missing(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_CreateDiseaseHistory(t *testing.T) {
	svc, _, _ := newTestService()
	dh := &DiseaseHistory{UserID: uuid.New(), DiseaseName: "Hypertension", DiagnosedAt: timePtr(time.Now().Add(-time.Hour))}
	if err := svc.CreateDiseaseHistory(context.Background(), dh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dh.ID == uuid.Nil {
		t.Error("expected assigned id")
	}
}

func TestService_CreateDiseaseHistory_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	cases := []struct {
		name string
		dh   *DiseaseHistory
	}{
		{"missing user", &DiseaseHistory{DiseaseName: "Asthma"}},
		{"blank name", &DiseaseHistory{UserID: uuid.New(), DiseaseName: "  "}},
		{"future diagnosis", &DiseaseHistory{UserID: uuid.New(), DiseaseName: "Asthma", DiagnosedAt: timePtr(time.Now().Add(time.Hour))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.CreateDiseaseHistory(context.Background(), tc.dh); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestService_DeleteDiseaseHistory_Ownership(t *testing.T) {
	svc, _, diseases := newTestService()
	owner := uuid.New()
	dh := &DiseaseHistory{UserID: owner, DiseaseName: "Asthma"}
	if err := svc.CreateDiseaseHistory(context.Background(), dh); err != nil {
		t.Fatal(err)
	}

	// A stranger's delete looks like a missing row.
	err := svc.DeleteDiseaseHistory(context.Background(), dh.ID, auth.Identity{UserID: uuid.New(), Role: auth.RoleUser})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}
	if len(diseases.entries) != 1 {
		t.Fatal("entry should survive a non-owner delete")
	}

	if err := svc.DeleteDiseaseHistory(context.Background(), dh.ID, auth.Identity{UserID: owner, Role: auth.RoleUser}); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}

func TestService_DeleteDiseaseHistory_StaffBypassesOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	dh := &DiseaseHistory{UserID: uuid.New(), DiseaseName: "Asthma"}
	if err := svc.CreateDiseaseHistory(context.Background(), dh); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteDiseaseHistory(context.Background(), dh.ID, auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}); err != nil {
		t.Fatalf("staff delete failed: %v", err)
	}
}

func TestService_BuildExport(t *testing.T) {
	records := newMockRecordRepo()
	diseases := newMockDiseaseRepo()
	userID := uuid.New()
	appts := &stubAppointments{items: []*appointment.Appointment{{ID: uuid.New(), UserID: userID, Status: appointment.StatusPending}}}
	meds := &stubMedications{items: []*medication.Medication{{ID: uuid.New(), UserID: userID, Name: "Metformin"}}}
	svc := NewService(records, diseases, appts, meds)

	if _, err := svc.Save(context.Background(), &MedicalRecord{UserID: userID, HeightCm: floatPtr(180)}); err != nil {
		t.Fatal(err)
	}

	exp, err := svc.BuildExport(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.PatientInfo == nil || exp.PatientInfo.UserID != userID {
		t.Error("export missing patient info")
	}
	if len(exp.Appointments) != 1 || len(exp.Medications) != 1 {
		t.Errorf("export missing related data: %d appointments, %d medications", len(exp.Appointments), len(exp.Medications))
	}
	if exp.ExportedAt.IsZero() {
		t.Error("exported_at not set")
	}
}

func TestService_BuildExport_NoRecord(t *testing.T) {
	svc, _, _ := newTestService()

	exp, err := svc.BuildExport(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.PatientInfo != nil {
		t.Error("expected nil patient_info when no record exists")
	}
}
