package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/model"
	"video-subtitle-translator/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, qx any, u *model.User) error {
	const q = `
INSERT INTO users (
  id, username, balance_cents, is_admin, registered_at, last_active_at
) VALUES (
  $1,$2,$3,$4,$5,$6
) ON CONFLICT (id) DO UPDATE SET
  username=$2, balance_cents=$3, is_admin=$4, last_active_at=$6;
`
	ex, err := pickExec(r.pool, qx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, u.ID, u.Username, u.BalanceCents, u.IsAdmin, u.RegisteredAt, u.LastActiveAt)
	return err
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, qx any, id string) (*model.User, error) {
	return r.find(ctx, qx, id, false)
}

// FindByIDForUpdate locks the user row (SELECT ... FOR UPDATE) so the
// read-modify-write of a balance debit is serialized across transactions.
func (r *PostgresUserRepo) FindByIDForUpdate(ctx context.Context, qx any, id string) (*model.User, error) {
	return r.find(ctx, qx, id, true)
}

func (r *PostgresUserRepo) find(ctx context.Context, qx any, id string, forUpdate bool) (*model.User, error) {
	q := `
SELECT id, username, balance_cents, is_admin, registered_at, last_active_at
  FROM users WHERE id=$1`
	if forUpdate {
		q += " FOR UPDATE"
	}
	ex, err := pickExec(r.pool, qx)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := ex.QueryRow(ctx, q+";", id).Scan(&u.ID, &u.Username, &u.BalanceCents,
		&u.IsAdmin, &u.RegisteredAt, &u.LastActiveAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) UpdateBalance(ctx context.Context, qx any, id string, balanceCents int64) error {
	ex, err := pickExec(r.pool, qx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE users SET balance_cents=$2, last_active_at=NOW() WHERE id=$1;`, id, balanceCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
