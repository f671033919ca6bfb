package admin

import (
	"context"
	"errors"

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

type smtpRepoPG struct{ pool *pgxpool.Pool }

func NewSMTPRepoPG(pool *pgxpool.Pool) SMTPRepository { return &smtpRepoPG{pool: pool} }

func (r *smtpRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// The table carries a CHECK (id = 1) so there is only ever one row.
func (r *smtpRepoPG) Get(ctx context.Context) (*SMTPSettings, bool, error) {
	var s SMTPSettings
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT host, port, username, password, from_address, use_tls, updated_at
		FROM smtp_settings WHERE id = 1`).
		Scan(&s.Host, &s.Port, &s.Username, &s.Password, &s.FromAddress, &s.UseTLS, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (r *smtpRepoPG) Save(ctx context.Context, s *SMTPSettings) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO smtp_settings (id, host, port, username, password, from_address, use_tls)
		VALUES (1,$1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			host = EXCLUDED.host,
			port = EXCLUDED.port,
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			from_address = EXCLUDED.from_address,
			use_tls = EXCLUDED.use_tls,
			updated_at = NOW()`,
		s.Host, s.Port, s.Username, s.Password, s.FromAddress, s.UseTLS)
	return err
}
