package measurements

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/healthtracker/internal/dbx"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
)

var tables = map[models.MeasurementKind]string{
	models.KindWeight: "weight_records",
	models.KindWater:  "water_records",
	models.KindSteps:  "step_records",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func tableFor(kind models.MeasurementKind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown measurement kind %q", kind)
	}
	return t, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, m *models.Measurement) error {
	table, err := tableFor(m.Kind)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO ` + table + ` (user_id, value, recorded_at)
		 VALUES ($1, $2, $3)
		 RETURNING seq`

	var value any = m.Value
	if m.Kind == models.KindSteps {
		value = int64(m.Value)
	}

	if err := r.db.QueryRowContext(ctx, query, m.UserID, value, m.RecordedAt).Scan(&m.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, kind models.MeasurementKind, filter models.MeasurementFilter) ([]models.Measurement, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query :=
		`SELECT seq, value, recorded_at FROM ` + table + `
		 WHERE user_id = $1
		   AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		   AND ($3::timestamptz IS NULL OR recorded_at <= $3)
		 ORDER BY seq
		 LIMIT $4 OFFSET $5`

	return r.query(ctx, userID, kind, query, userID, filter.Start, filter.End, filter.Limit, filter.Offset)
}

func (r *PostgresRepository) History(ctx context.Context, userID string, kind models.MeasurementKind) ([]models.Measurement, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query :=
		`SELECT seq, value, recorded_at FROM ` + table + `
		 WHERE user_id = $1
		 ORDER BY seq`

	return r.query(ctx, userID, kind, query, userID)
}

func (r *PostgresRepository) query(ctx context.Context, userID string, kind models.MeasurementKind, query string, args ...any) ([]models.Measurement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Measurement, 0)
	for rows.Next() {
		m := models.Measurement{UserID: userID, Kind: kind}
		if err := rows.Scan(&m.ID, &m.Value, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
