package medicalrecord

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

// =========== Medical Record Repository ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `id, user_id, date_of_birth, gender, blood_type, height_cm, weight_kg,
	allergies, notes, created_at, updated_at`

func (r *repoPG) scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.DateOfBirth, &rec.Gender, &rec.BloodType,
		&rec.HeightCm, &rec.WeightKg, &rec.Allergies, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (r *repoPG) GetByUser(ctx context.Context, userID uuid.UUID) (*MedicalRecord, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_records WHERE user_id = $1`, userID))
}

func (r *repoPG) Upsert(ctx context.Context, rec *MedicalRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (id, user_id, date_of_birth, gender, blood_type, height_cm, weight_kg, allergies, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (user_id) DO UPDATE SET
			date_of_birth=EXCLUDED.date_of_birth, gender=EXCLUDED.gender,
			blood_type=EXCLUDED.blood_type, height_cm=EXCLUDED.height_cm,
			weight_kg=EXCLUDED.weight_kg, allergies=EXCLUDED.allergies,
			notes=EXCLUDED.notes, updated_at=NOW()`,
		rec.ID, rec.UserID, rec.DateOfBirth, rec.Gender, rec.BloodType,
		rec.HeightCm, rec.WeightKg, rec.Allergies, rec.Notes)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_records`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM medical_records ORDER BY updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, nil
}

// =========== Disease History Repository ===========

type diseaseRepoPG struct{ pool *pgxpool.Pool }

func NewDiseaseHistoryRepoPG(pool *pgxpool.Pool) DiseaseHistoryRepository {
	return &diseaseRepoPG{pool: pool}
}

func (r *diseaseRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const diseaseCols = `id, user_id, disease_name, diagnosed_at, status, notes, created_at`

func (r *diseaseRepoPG) Create(ctx context.Context, dh *DiseaseHistory) error {
	dh.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO disease_histories (id, user_id, disease_name, diagnosed_at, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		dh.ID, dh.UserID, dh.DiseaseName, dh.DiagnosedAt, dh.Status, dh.Notes).Scan(&dh.CreatedAt)
}

func (r *diseaseRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*DiseaseHistory, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM disease_histories WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+diseaseCols+` FROM disease_histories WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DiseaseHistory
	for rows.Next() {
		var dh DiseaseHistory
		if err := rows.Scan(&dh.ID, &dh.UserID, &dh.DiseaseName, &dh.DiagnosedAt, &dh.Status, &dh.Notes, &dh.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &dh)
	}
	return items, total, nil
}

func (r *diseaseRepoPG) DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM disease_histories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *diseaseRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM disease_histories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
