package rest

import (
	"context"

	"github.com/dmitrijs2005/healthtracker/internal/server/auth"
	"github.com/dmitrijs2005/healthtracker/internal/server/avatars"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/services"
)

// AuthService is implemented by *services.AuthService.
type AuthService interface {
	RequestCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) (*services.TokenPair, error)
	Refresh(ctx context.Context, user *models.User, refreshToken string) (*services.TokenPair, error)
	Resolve(ctx context.Context, token string, kind auth.Kind) (*models.User, error)
}

// ProfileService is implemented by *services.ProfileService.
type ProfileService interface {
	Get(ctx context.Context, user *models.User) (*services.Profile, error)
	Update(ctx context.Context, user *models.User, in services.ProfileInput) (*services.Profile, error)
	Delete(ctx context.Context, user *models.User) error
	StartAvatarUpload(ctx context.Context, user *models.User, contentType string) (*avatars.Upload, error)
}

// StatsService is implemented by *services.StatsService.
type StatsService interface {
	Upload(ctx context.Context, userID string, in services.StatsUpload) error
	Query(ctx context.Context, userID, kind string, p services.QueryParams) ([]models.Measurement, error)
}

// FollowService is implemented by *services.FollowService.
type FollowService interface {
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	Followers(ctx context.Context, userID string) ([]models.UserSummary, error)
	Following(ctx context.Context, userID string) ([]models.UserSummary, error)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}
