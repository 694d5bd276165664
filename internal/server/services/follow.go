package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// FollowService maintains the directed follow graph.
type FollowService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFollowService(db *sql.DB, m repomanager.RepositoryManager) *FollowService {
	return &FollowService{db: db, repomanager: m}
}

// Follow makes followerID follow targetID.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID string) (err error) {
	ctx, span := startSpan(ctx, "FollowService.Follow")
	defer endSpan(span, &err)

	target, err := parseUserID(targetID)
	if err != nil {
		return err
	}
	if target == followerID {
		return ErrSelfFollow
	}

	exists, err := s.repomanager.Users(s.db).Exists(ctx, target)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	repo := s.repomanager.Followers(s.db)
	following, err := repo.Exists(ctx, followerID, target)
	if err != nil {
		return err
	}
	if following {
		return ErrAlreadyFollowing
	}

	// The unique constraint still decides concurrent duplicates.
	if _, err := repo.Create(ctx, followerID, target); err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return ErrAlreadyFollowing
		case errors.Is(err, common.ErrorNotFound):
			return ErrUserNotFound
		case errors.Is(err, common.ErrorValidation):
			return ErrSelfFollow
		}
		return err
	}
	return nil
}

// Unfollow removes the edge followerID -> targetID.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID string) (err error) {
	ctx, span := startSpan(ctx, "FollowService.Unfollow")
	defer endSpan(span, &err)

	target, err := parseUserID(targetID)
	if err != nil {
		return err
	}
	if target == followerID {
		return ErrSelfFollow
	}

	if err := s.repomanager.Followers(s.db).Delete(ctx, followerID, target); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrNotFollowing
		}
		return err
	}
	return nil
}

// Followers lists the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return s.repomanager.Followers(s.db).Followers(ctx, userID)
}

// Following lists the users userID follows.
func (s *FollowService) Following(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return s.repomanager.Followers(s.db).Following(ctx, userID)
}

// parseUserID validates id as a UUID and returns its canonical form.
func parseUserID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: user_id must be a UUID", common.ErrorValidation)
	}
	return u.String(), nil
}
