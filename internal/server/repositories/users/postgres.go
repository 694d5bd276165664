package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/dbx"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
)

const userColumns = `id, phone_number, username, height, avatar_key, is_deleted, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.PhoneNumber, &u.Username, &u.Height, &u.AvatarKey,
		&u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, phone string) (*models.User, error) {
	query :=
		`INSERT INTO users (phone_number)
		 VALUES ($1)
		 ON CONFLICT (phone_number) DO UPDATE SET is_deleted = FALSE
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, phone))
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE phone_number = $1 AND NOT is_deleted`

	return scanUser(r.db.QueryRowContext(ctx, query, phone))
}

func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND NOT is_deleted)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	query :=
		`UPDATE users SET
		   username = COALESCE($2, username),
		   height = COALESCE($3, height),
		   avatar_key = COALESCE($4, avatar_key),
		   updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
		 RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, upd.Username, upd.Height, upd.AvatarKey))
	if err != nil && dbx.IsUniqueViolation(err) {
		return nil, common.ErrorAlreadyExists
	}
	return u, err
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET is_deleted = TRUE, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) DeleteByPhone(ctx context.Context, phone string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE phone_number = $1`, phone)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) PurgeDeleted(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE is_deleted`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
