// Package users declares the User Directory: profiles keyed by phone number.
package users

import (
	"context"

	"github.com/dmitrijs2005/healthtracker/internal/server/models"
)

// Repository stores user profiles. Lookups other than Delete ignore
// soft-deleted users and report common.ErrorNotFound for them.
type Repository interface {
	// GetOrCreate returns the user owning phone, creating it on first use.
	// A soft-deleted user with that phone is restored.
	GetOrCreate(ctx context.Context, phone string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	// Update applies the non-nil fields of upd. A taken username yields
	// common.ErrorAlreadyExists.
	Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	SoftDelete(ctx context.Context, id string) error
	// DeleteByPhone removes the user row, soft-deleted or not. Measurements
	// and follow edges go with it.
	DeleteByPhone(ctx context.Context, phone string) error
	// PurgeDeleted hard-deletes every soft-deleted user and returns the count.
	PurgeDeleted(ctx context.Context) (int64, error)
}
