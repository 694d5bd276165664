package models

import (
	"fmt"
	"time"
)

// MeasurementKind names one of the measurement series.
type MeasurementKind string

const (
	KindWeight MeasurementKind = "weight"
	KindWater  MeasurementKind = "water"
	KindSteps  MeasurementKind = "steps"
)

// MeasurementKinds lists every kind in a stable order.
var MeasurementKinds = []MeasurementKind{KindWeight, KindWater, KindSteps}

// ParseMeasurementKind validates s as a kind name.
func ParseMeasurementKind(s string) (MeasurementKind, error) {
	switch k := MeasurementKind(s); k {
	case KindWeight, KindWater, KindSteps:
		return k, nil
	}
	return "", fmt.Errorf("unknown measurement kind %q", s)
}

// Measurement is a single immutable data point. Steps are stored as whole
// numbers, the other kinds as decimals.
type Measurement struct {
	ID         int64
	UserID     string
	Kind       MeasurementKind
	Value      float64
	RecordedAt time.Time
}

// MeasurementFilter bounds a measurement query. Start and End are inclusive.
type MeasurementFilter struct {
	Limit  int
	Offset int
	Start  *time.Time
	End    *time.Time
}
