package followers

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/dbx"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM followers WHERE follower_id = $1 AND followed_id = $2
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, followerID, followedID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, followerID, followedID string) (*models.FollowEdge, error) {
	query :=
		`INSERT INTO followers (follower_id, followed_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	edge := &models.FollowEdge{FollowerID: followerID, FollowedID: followedID}
	err := r.db.QueryRowContext(ctx, query, followerID, followedID).Scan(&edge.ID, &edge.CreatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		case dbx.IsForeignKeyViolation(err):
			return nil, common.ErrorNotFound
		case dbx.IsCheckViolation(err):
			return nil, common.ErrorValidation
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return edge, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, followerID, followedID string) error {
	query := `DELETE FROM followers WHERE follower_id = $1 AND followed_id = $2`

	res, err := r.db.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Followers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	query :=
		`SELECT u.id, u.username FROM followers f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.followed_id = $1 AND NOT u.is_deleted
		 ORDER BY f.id`

	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) Following(ctx context.Context, userID string) ([]models.UserSummary, error) {
	query :=
		`SELECT u.id, u.username FROM followers f
		 JOIN users u ON u.id = f.followed_id
		 WHERE f.follower_id = $1 AND NOT u.is_deleted
		 ORDER BY f.id`

	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, userID string) ([]models.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.UserSummary, 0)
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Username); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
