package invitation

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

const invCols = `id, email, role, token, invited_by, expires_at, created_at`

func (r *repoPG) scanInvitation(row pgx.Row) (*Invitation, error) {
	var inv Invitation
	err := row.Scan(&inv.ID, &inv.Email, &inv.Role, &inv.Token, &inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)
	return &inv, err
}

func (r *repoPG) Create(ctx context.Context, inv *Invitation) error {
	inv.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO invitations (id, email, role, token, invited_by, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		inv.ID, inv.Email, inv.Role, inv.Token, inv.InvitedBy, inv.ExpiresAt).Scan(&inv.CreatedAt)
}

func (r *repoPG) GetByToken(ctx context.Context, token string) (*Invitation, error) {
	return r.scanInvitation(r.conn(ctx).QueryRow(ctx, `SELECT `+invCols+` FROM invitations WHERE token = $1`, token))
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Invitation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invitations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+invCols+` FROM invitations ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Invitation
	for rows.Next() {
		inv, err := r.scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, nil
}

func (r *repoPG) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM invitations WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
