package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, phone, codeHash string) (int64, error) {
	query :=
		`INSERT INTO phone_verifications (phone_number, code_hash)
		 VALUES ($1, $2)
		 RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, phone, codeHash).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// Consume locks the oldest matching row with SKIP LOCKED, so of two racing
// attempts exactly one deletes it and the other sees no match.
func (r *PostgresRepository) Consume(ctx context.Context, phone, codeHash string) (int64, error) {
	query :=
		`DELETE FROM phone_verifications
		 WHERE id = (
		   SELECT id FROM phone_verifications
		   WHERE phone_number = $1 AND code_hash = $2
		   ORDER BY id
		   LIMIT 1
		   FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, phone, codeHash).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
