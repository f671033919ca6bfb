package medicalrecord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/domain/appointment"
	"github.com/caretrack/caretrack/internal/domain/medication"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

var ErrNotFound = errors.New("record not found")

// The export pulls the caller's data from the sibling services. Satisfied by
// *appointment.Service and *medication.Service.
type AppointmentSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*appointment.Appointment, int, error)
}

type MedicationSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*medication.Medication, int, error)
}

// Export is the caller's downloadable snapshot.
type Export struct {
	ExportedAt   time.Time                  `json:"exported_at"`
	PatientInfo  *MedicalRecord             `json:"patient_info"`
	Appointments []*appointment.Appointment `json:"appointments"`
	Medications  []*medication.Medication   `json:"medications"`
}

const exportPageSize = 500

type Service struct {
	records      Repository
	diseases     DiseaseHistoryRepository
	appointments AppointmentSource
	medications  MedicationSource
}

func NewService(records Repository, diseases DiseaseHistoryRepository, appointments AppointmentSource, medications MedicationSource) *Service {
	return &Service{records: records, diseases: diseases, appointments: appointments, medications: medications}
}

// Get returns the user's medical record.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.records.GetByUser(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Save creates the user's record on first save and updates it afterwards.
func (s *Service) Save(ctx context.Context, rec *MedicalRecord) (*MedicalRecord, error) {
	if rec.UserID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if rec.DateOfBirth != nil && rec.DateOfBirth.After(time.Now()) {
		return nil, fmt.Errorf("date_of_birth cannot be in the future")
	}
	if rec.HeightCm != nil && *rec.HeightCm <= 0 {
		return nil, fmt.Errorf("height_cm must be positive")
	}
	if rec.WeightKg != nil && *rec.WeightKg <= 0 {
		return nil, fmt.Errorf("weight_kg must be positive")
	}

	// Keep the existing row id so the upsert updates in place.
	if existing, err := s.records.GetByUser(ctx, rec.UserID); err == nil {
		rec.ID = existing.ID
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return s.Get(ctx, rec.UserID)
}

// List returns a page of all records, for staff dashboards.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.List(ctx, limit, offset)
}

// CreateDiseaseHistory appends a disease history entry.
func (s *Service) CreateDiseaseHistory(ctx context.Context, dh *DiseaseHistory) error {
	if dh.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(dh.DiseaseName) == "" {
		return fmt.Errorf("disease_name is required")
	}
	if dh.DiagnosedAt != nil && dh.DiagnosedAt.After(time.Now()) {
		return fmt.Errorf("diagnosed_at cannot be in the future")
	}
	return s.diseases.Create(ctx, dh)
}

// ListDiseaseHistories returns the user's disease history entries.
func (s *Service) ListDiseaseHistories(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*DiseaseHistory, int, error) {
	return s.diseases.ListByUser(ctx, userID, limit, offset)
}

// DeleteDiseaseHistory removes an entry. Non-staff callers can only delete
// their own rows; a row owned by someone else looks like a missing row.
func (s *Service) DeleteDiseaseHistory(ctx context.Context, id uuid.UUID, caller auth.Identity) error {
	var found bool
	var err error
	if caller.Role.Staff() {
		found, err = s.diseases.Delete(ctx, id)
	} else {
		found, err = s.diseases.DeleteOwned(ctx, id, caller.UserID)
	}
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// BuildExport assembles the caller's snapshot. A missing medical record is
// exported as null rather than failing the whole download.
func (s *Service) BuildExport(ctx context.Context, userID uuid.UUID) (*Export, error) {
	exp := &Export{ExportedAt: time.Now().UTC()}

	if rec, err := s.records.GetByUser(ctx, userID); err == nil {
		exp.PatientInfo = rec
	}

	appts, _, err := s.appointments.ListByUser(ctx, userID, exportPageSize, 0)
	if err != nil {
		return nil, err
	}
	exp.Appointments = appts

	meds, _, err := s.medications.ListByUser(ctx, userID, exportPageSize, 0)
	if err != nil {
		return nil, err
	}
	exp.Medications = meds

	return exp, nil
}
