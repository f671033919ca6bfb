package contact

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

const contactCols = `id, user_id, full_name, phone, relationship, is_main, created_at, updated_at`

func (r *repoPG) scanContact(row pgx.Row) (*EmergencyContact, error) {
	var ec EmergencyContact
	err := row.Scan(&ec.ID, &ec.UserID, &ec.FullName, &ec.Phone, &ec.Relationship, &ec.IsMain, &ec.CreatedAt, &ec.UpdatedAt)
	return &ec, err
}

func (r *repoPG) Create(ctx context.Context, ec *EmergencyContact) error {
	ec.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO emergency_contacts (id, user_id, full_name, phone, relationship, is_main)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		ec.ID, ec.UserID, ec.FullName, ec.Phone, ec.Relationship, ec.IsMain).Scan(&ec.CreatedAt, &ec.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*EmergencyContact, error) {
	return r.scanContact(r.conn(ctx).QueryRow(ctx, `SELECT `+contactCols+` FROM emergency_contacts WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, ec *EmergencyContact) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE emergency_contacts SET full_name=$2, phone=$3, relationship=$4, updated_at=NOW()
		WHERE id = $1`,
		ec.ID, ec.FullName, ec.Phone, ec.Relationship)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM emergency_contacts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*EmergencyContact, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+contactCols+` FROM emergency_contacts WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*EmergencyContact
	for rows.Next() {
		ec, err := r.scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ec)
	}
	return items, nil
}

func (r *repoPG) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM emergency_contacts WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *repoPG) ClearMain(ctx context.Context, userID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE emergency_contacts SET is_main=FALSE, updated_at=NOW() WHERE user_id = $1 AND is_main`, userID)
	return err
}

func (r *repoPG) SetMain(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE emergency_contacts SET is_main=TRUE, updated_at=NOW() WHERE id = $1`, id)
	return err
}
