package vitals

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

// =========== Blood Pressure Repository ===========

type bpRepoPG struct{ pool *pgxpool.Pool }

func NewBloodPressureRepoPG(pool *pgxpool.Pool) BloodPressureRepository {
	return &bpRepoPG{pool: pool}
}

func (r *bpRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const bpCols = `id, user_id, systolic, diastolic, pulse, measured_at, notes, created_at`

func (r *bpRepoPG) Create(ctx context.Context, rec *BloodPressureRecord) error {
	rec.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO blood_pressure_records (id, user_id, systolic, diastolic, pulse, measured_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		rec.ID, rec.UserID, rec.Systolic, rec.Diastolic, rec.Pulse, rec.MeasuredAt, rec.Notes).Scan(&rec.CreatedAt)
}

func (r *bpRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*BloodPressureRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blood_pressure_records WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bpCols+` FROM blood_pressure_records WHERE user_id = $1 ORDER BY measured_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*BloodPressureRecord
	for rows.Next() {
		var rec BloodPressureRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Systolic, &rec.Diastolic, &rec.Pulse, &rec.MeasuredAt, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rec)
	}
	return items, total, nil
}

func (r *bpRepoPG) DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blood_pressure_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *bpRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blood_pressure_records WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// =========== Blood Sugar Repository ===========

type bsRepoPG struct{ pool *pgxpool.Pool }

func NewBloodSugarRepoPG(pool *pgxpool.Pool) BloodSugarRepository {
	return &bsRepoPG{pool: pool}
}

func (r *bsRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const bsCols = `id, user_id, level_mg_dl, measurement_type, measured_at, notes, created_at`

func (r *bsRepoPG) Create(ctx context.Context, rec *BloodSugarRecord) error {
	rec.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO blood_sugar_records (id, user_id, level_mg_dl, measurement_type, measured_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		rec.ID, rec.UserID, rec.LevelMgDl, rec.MeasurementType, rec.MeasuredAt, rec.Notes).Scan(&rec.CreatedAt)
}

func (r *bsRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*BloodSugarRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blood_sugar_records WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bsCols+` FROM blood_sugar_records WHERE user_id = $1 ORDER BY measured_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*BloodSugarRecord
	for rows.Next() {
		var rec BloodSugarRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.LevelMgDl, &rec.MeasurementType, &rec.MeasuredAt, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rec)
	}
	return items, total, nil
}

func (r *bsRepoPG) DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blood_sugar_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *bsRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blood_sugar_records WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
