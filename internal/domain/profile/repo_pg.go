package profile

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caretrack/caretrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const profileCols = `id, user_id, preferred_channel, appointment_reminders, medication_reminders, preferences, created_at, updated_at`

func (r *repoPG) GetByUser(ctx context.Context, userID uuid.UUID) (*PatientProfile, error) {
	var p PatientProfile
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+profileCols+` FROM patient_profiles WHERE user_id = $1`, userID).
		Scan(&p.ID, &p.UserID, &p.PreferredChannel, &p.AppointmentReminders, &p.MedicationReminders, &p.Preferences, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Upsert(ctx context.Context, p *PatientProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_profiles (id, user_id, preferred_channel, appointment_reminders, medication_reminders, preferences)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_channel = EXCLUDED.preferred_channel,
			appointment_reminders = EXCLUDED.appointment_reminders,
			medication_reminders = EXCLUDED.medication_reminders,
			preferences = EXCLUDED.preferences,
			updated_at = NOW()`,
		p.ID, p.UserID, p.PreferredChannel, p.AppointmentReminders, p.MedicationReminders, p.Preferences)
	return err
}
