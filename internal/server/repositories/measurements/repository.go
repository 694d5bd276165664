// Package measurements declares the Measurement Store: per-user time series
// of weight, water intake and step counts.
package measurements

import (
	"context"

	"github.com/dmitrijs2005/healthtracker/internal/server/models"
)

// Repository appends and reads measurement records. Records are never
// updated; they disappear only when their owner is deleted.
type Repository interface {
	Insert(ctx context.Context, m *models.Measurement) error
	// List returns records of one kind in insertion order, bounded by filter.
	List(ctx context.Context, userID string, kind models.MeasurementKind, filter models.MeasurementFilter) ([]models.Measurement, error)
	// History returns every record of one kind in insertion order.
	History(ctx context.Context, userID string, kind models.MeasurementKind) ([]models.Measurement, error)
}
