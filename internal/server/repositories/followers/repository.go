// Package followers declares the Follow Graph: directed follow edges between
// users.
package followers

import (
	"context"

	"github.com/dmitrijs2005/healthtracker/internal/server/models"
)

// Repository stores follow edges. At most one edge exists per ordered pair
// and a user never follows itself.
type Repository interface {
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
	// Create inserts an edge. A duplicate yields common.ErrorAlreadyExists.
	Create(ctx context.Context, followerID, followedID string) (*models.FollowEdge, error)
	// Delete removes an edge, or returns common.ErrorNotFound if none exists.
	Delete(ctx context.Context, followerID, followedID string) error
	// Followers lists users following userID, oldest edge first.
	Followers(ctx context.Context, userID string) ([]models.UserSummary, error)
	// Following lists users userID follows, oldest edge first.
	Following(ctx context.Context, userID string) ([]models.UserSummary, error)
}
