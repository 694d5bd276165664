package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/dbx"
	"github.com/dmitrijs2005/healthtracker/internal/logging"
	"github.com/dmitrijs2005/healthtracker/internal/server/avatars"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/repomanager"
)

const (
	maxUsernameLen = 64
	maxHeight      = 300
)

// AvatarPresigner signs object-storage URLs for avatars.
type AvatarPresigner interface {
	PresignUpload(ctx context.Context, userID, contentType string) (*avatars.Upload, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Profile is a user together with the full history of each measurement kind.
type Profile struct {
	User      *models.User
	AvatarURL string
	History   map[models.MeasurementKind][]models.Measurement
}

// MeasurementInput is one data point appended alongside a profile update.
type MeasurementInput struct {
	Value      float64
	RecordedAt time.Time
}

// supplied reports whether m carries a value. Zero counts as absent, the
// same rule StatsService.Upload applies.
func (m *MeasurementInput) supplied() bool {
	return m != nil && m.Value != 0
}

// ProfileInput holds the optional fields of a profile update.
type ProfileInput struct {
	Username *string
	Height   *float64
	Weight   *MeasurementInput
	Water    *MeasurementInput
	Steps    *MeasurementInput
}

func (in ProfileInput) measurement(kind models.MeasurementKind) *MeasurementInput {
	switch kind {
	case models.KindWeight:
		return in.Weight
	case models.KindWater:
		return in.Water
	case models.KindSteps:
		return in.Steps
	}
	return nil
}

// ProfileService reads and edits user profiles.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   AvatarPresigner
	logger      logging.Logger
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, presigner AvatarPresigner, logger logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		presigner:   presigner,
		logger:      logger.With("module", "profile"),
	}
}

// Get returns the profile of user with every measurement series.
func (s *ProfileService) Get(ctx context.Context, user *models.User) (p *Profile, err error) {
	ctx, span := startSpan(ctx, "ProfileService.Get")
	defer endSpan(span, &err)

	return s.load(ctx, s.db, user)
}

// Update applies in's profile fields and appends its measurements in one
// transaction, then returns the refreshed profile.
func (s *ProfileService) Update(ctx context.Context, user *models.User, in ProfileInput) (p *Profile, err error) {
	ctx, span := startSpan(ctx, "ProfileService.Update")
	defer endSpan(span, &err)

	upd, err := validateProfileInput(in)
	if err != nil {
		return nil, err
	}

	var updated *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		updated, err = s.repomanager.Users(tx).Update(ctx, user.ID, upd)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrorAlreadyExists):
				return ErrUsernameTaken
			case errors.Is(err, common.ErrorNotFound):
				return ErrUserNotFound
			}
			return err
		}

		repo := s.repomanager.Measurements(tx)
		for _, kind := range models.MeasurementKinds {
			m := in.measurement(kind)
			if !m.supplied() {
				continue
			}
			rec := &models.Measurement{UserID: user.ID, Kind: kind, Value: m.Value, RecordedAt: m.RecordedAt}
			if err := repo.Insert(ctx, rec); err != nil {
				return fmt.Errorf("insert %s: %w", kind, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, s.db, updated)
}

// Delete soft-deletes the account. The row and everything it owns are
// removed later by the purge job.
func (s *ProfileService) Delete(ctx context.Context, user *models.User) (err error) {
	ctx, span := startSpan(ctx, "ProfileService.Delete")
	defer endSpan(span, &err)

	if err := s.repomanager.Users(s.db).SoftDelete(ctx, user.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Info(ctx, "account soft-deleted", "user_id", user.ID)
	return nil
}

// StartAvatarUpload presigns an upload for a new avatar and points the
// profile at its key.
func (s *ProfileService) StartAvatarUpload(ctx context.Context, user *models.User, contentType string) (up *avatars.Upload, err error) {
	ctx, span := startSpan(ctx, "ProfileService.StartAvatarUpload")
	defer endSpan(span, &err)

	if s.presigner == nil {
		return nil, fmt.Errorf("%w: avatar storage is not configured", common.ErrorUpstream)
	}

	up, err = s.presigner.PresignUpload(ctx, user.ID, contentType)
	if err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Users(s.db).Update(ctx, user.ID, models.ProfileUpdate{AvatarKey: &up.Key}); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return up, nil
}

func (s *ProfileService) load(ctx context.Context, db dbx.DBTX, user *models.User) (*Profile, error) {
	p := &Profile{
		User:    user,
		History: make(map[models.MeasurementKind][]models.Measurement, len(models.MeasurementKinds)),
	}

	repo := s.repomanager.Measurements(db)
	for _, kind := range models.MeasurementKinds {
		items, err := repo.History(ctx, user.ID, kind)
		if err != nil {
			return nil, fmt.Errorf("load %s history: %w", kind, err)
		}
		p.History[kind] = items
	}

	if user.AvatarKey != nil && s.presigner != nil {
		url, err := s.presigner.PresignDownload(ctx, *user.AvatarKey)
		if err != nil {
			s.logger.Warn(ctx, "avatar url unavailable", "user_id", user.ID, "error", err)
		} else {
			p.AvatarURL = url
		}
	}

	return p, nil
}

func validateProfileInput(in ProfileInput) (models.ProfileUpdate, error) {
	var upd models.ProfileUpdate

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" || utf8.RuneCountInString(name) > maxUsernameLen {
			return upd, fmt.Errorf("%w: username must be 1 to %d characters", common.ErrorValidation, maxUsernameLen)
		}
		upd.Username = &name
	}

	if in.Height != nil {
		if *in.Height <= 0 || *in.Height > maxHeight {
			return upd, fmt.Errorf("%w: height out of range", common.ErrorValidation)
		}
		upd.Height = in.Height
	}

	for _, kind := range models.MeasurementKinds {
		m := in.measurement(kind)
		if !m.supplied() {
			continue
		}
		if m.Value < 0 {
			return upd, fmt.Errorf("%w: %s must not be negative", common.ErrorValidation, kind)
		}
		if m.RecordedAt.IsZero() {
			return upd, fmt.Errorf("%w: %s recorded_at is required", common.ErrorValidation, kind)
		}
	}

	return upd, nil
}
