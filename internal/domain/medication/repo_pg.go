package medication

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

const medCols = `id, user_id, name, dosage, frequency, start_date, end_date, notes, created_at, updated_at`

func (r *repoPG) scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency, &m.StartDate, &m.EndDate, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medications (id, user_id, name, dosage, frequency, start_date, end_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		m.ID, m.UserID, m.Name, m.Dosage, m.Frequency, m.StartDate, m.EndDate, m.Notes).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return r.scanMedication(r.conn(ctx).QueryRow(ctx, `SELECT `+medCols+` FROM medications WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medications SET name=$2, dosage=$3, frequency=$4, start_date=$5, end_date=$6, notes=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Dosage, m.Frequency, m.StartDate, m.EndDate, m.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+medCols+` FROM medications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := r.scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}
