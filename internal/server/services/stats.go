package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/dbx"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/repomanager"
)

const (
	MinQueryLimit = 1
	MaxQueryLimit = 100
)

// StatsUpload carries up to one value per kind, all stamped with RecordedAt.
// Nil and zero values both count as "not supplied".
type StatsUpload struct {
	Weight     *float64
	Water      *float64
	Steps      *int64
	RecordedAt time.Time
}

// QueryParams pages and bounds a measurement query. Start and End are
// inclusive and optional.
type QueryParams struct {
	Limit  int
	Offset int
	Start  *time.Time
	End    *time.Time
}

// StatsService records and queries measurement series.
type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager) *StatsService {
	return &StatsService{db: db, repomanager: m}
}

// Upload stores one record per supplied value in a single transaction.
// ErrNoData is returned when nothing was supplied.
func (s *StatsService) Upload(ctx context.Context, userID string, in StatsUpload) (err error) {
	ctx, span := startSpan(ctx, "StatsService.Upload")
	defer endSpan(span, &err)

	var records []*models.Measurement
	if in.Weight != nil && *in.Weight != 0 {
		records = append(records, &models.Measurement{Kind: models.KindWeight, Value: *in.Weight})
	}
	if in.Water != nil && *in.Water != 0 {
		records = append(records, &models.Measurement{Kind: models.KindWater, Value: *in.Water})
	}
	if in.Steps != nil && *in.Steps != 0 {
		records = append(records, &models.Measurement{Kind: models.KindSteps, Value: float64(*in.Steps)})
	}
	if len(records) == 0 {
		return ErrNoData
	}
	if in.RecordedAt.IsZero() {
		return fmt.Errorf("%w: recorded_at is required", common.ErrorValidation)
	}
	for _, r := range records {
		if r.Value < 0 {
			return fmt.Errorf("%w: %s must not be negative", common.ErrorValidation, r.Kind)
		}
		r.UserID = userID
		r.RecordedAt = in.RecordedAt
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Measurements(tx)
		for _, r := range records {
			if err := repo.Insert(ctx, r); err != nil {
				return fmt.Errorf("insert %s: %w", r.Kind, err)
			}
		}
		return nil
	})
}

// Query returns one page of the kind series in insertion order. An empty
// result is not an error.
func (s *StatsService) Query(ctx context.Context, userID, kind string, p QueryParams) (items []models.Measurement, err error) {
	ctx, span := startSpan(ctx, "StatsService.Query")
	defer endSpan(span, &err)

	k, err := models.ParseMeasurementKind(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKind, err)
	}
	if p.Limit < MinQueryLimit || p.Limit > MaxQueryLimit {
		return nil, fmt.Errorf("%w: limit must be between %d and %d", common.ErrorValidation, MinQueryLimit, MaxQueryLimit)
	}
	if p.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", common.ErrorValidation)
	}
	if p.Start != nil && p.End != nil && p.End.Before(*p.Start) {
		return nil, fmt.Errorf("%w: end_date precedes start_date", common.ErrorValidation)
	}

	return s.repomanager.Measurements(s.db).List(ctx, userID, k, models.MeasurementFilter{
		Limit:  p.Limit,
		Offset: p.Offset,
		Start:  p.Start,
		End:    p.End,
	})
}
