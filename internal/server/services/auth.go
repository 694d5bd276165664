// Package services contains server-side business logic: phone verification
// and token issuance, profiles, measurements and the follow graph.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/cryptox"
	"github.com/dmitrijs2005/healthtracker/internal/dbx"
	"github.com/dmitrijs2005/healthtracker/internal/logging"
	"github.com/dmitrijs2005/healthtracker/internal/phone"
	"github.com/dmitrijs2005/healthtracker/internal/server/auth"
	"github.com/dmitrijs2005/healthtracker/internal/server/config"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/healthtracker/internal/server/sms"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService runs the phone verification flow and resolves bearer tokens
// to users. Pending codes live in the verification store until a matching
// attempt consumes them; tokens are never persisted.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.TokenIssuer
	hasher      *cryptox.CodeHasher
	sender      sms.CodeSender
	region      string
	logger      logging.Logger
}

// NewAuthService wires an AuthService from its collaborators and config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.TokenIssuer,
	sender sms.CodeSender, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		hasher:      cryptox.NewCodeHasher(cfg.CodePepper),
		sender:      sender,
		region:      cfg.PhoneRegion,
		logger:      logger.With("module", "auth"),
	}
}

// RequestCode has the provider call rawPhone and stores the digest of the
// code it dialed with. Provider failures yield ErrDelivery.
func (s *AuthService) RequestCode(ctx context.Context, rawPhone string) (err error) {
	ctx, span := startSpan(ctx, "AuthService.RequestCode")
	defer endSpan(span, &err)

	number, err := phone.Normalize(rawPhone, s.region)
	if err != nil {
		return err
	}

	code, err := s.sender.SendCode(ctx, number)
	if err != nil {
		s.logger.Warn(ctx, "code delivery failed", "error", err)
		if errors.Is(err, ErrDelivery) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	if _, err := s.repomanager.Verifications(s.db).Create(ctx, number, s.hasher.Hash(number, code)); err != nil {
		return fmt.Errorf("store verification: %w", err)
	}

	s.logger.Debug(ctx, "verification code issued")
	return nil
}

// VerifyCode consumes the pending code matching (rawPhone, code), finds or
// creates the user and issues both tokens. A mismatch returns ErrInvalidCode
// and leaves every pending code in place.
func (s *AuthService) VerifyCode(ctx context.Context, rawPhone, code string) (pair *TokenPair, err error) {
	ctx, span := startSpan(ctx, "AuthService.VerifyCode")
	defer endSpan(span, &err)

	number, err := phone.Normalize(rawPhone, s.region)
	if err != nil {
		return nil, err
	}
	digest := s.hasher.Hash(number, code)

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Verifications(tx).Consume(ctx, number, digest); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrInvalidCode
			}
			return fmt.Errorf("consume code: %w", err)
		}

		var err error
		user, err = s.repomanager.Users(tx).GetOrCreate(ctx, number)
		if err != nil {
			return fmt.Errorf("get or create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issuePair(user.PhoneNumber)
}

// Refresh mints a new access token for user and echoes the refresh token.
func (s *AuthService) Refresh(ctx context.Context, user *models.User, refreshToken string) (*TokenPair, error) {
	access, err := s.issuer.Issue(user.PhoneNumber, auth.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Resolve validates token as the expected kind and loads its user.
// Token problems wrap common.ErrorUnauthorized; a missing or deleted user
// yields ErrUserNotFound.
func (s *AuthService) Resolve(ctx context.Context, token string, kind auth.Kind) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "AuthService.Resolve")
	defer endSpan(span, &err)

	subject, err := s.issuer.Validate(token, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	user, err = s.repomanager.Users(s.db).GetByPhone(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issuePair(subject string) (*TokenPair, error) {
	access, err := s.issuer.Issue(subject, auth.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	refresh, err := s.issuer.Issue(subject, auth.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
