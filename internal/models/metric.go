package models

import (
	"encoding/json"
	"fmt"
)

// Health metric kinds.
type MetricType string

const (
	MetricSleep  MetricType = "Sleep"
	MetricWater  MetricType = "Water"
	MetricSteps  MetricType = "Steps"
	MetricWeight MetricType = "Weight"
	MetricMood   MetricType = "Mood"
)

// MetricValue is a tagged union: a numeric reading with a unit, or a
// categorical label (mood). The two cases are explicit so consumers handle
// both exhaustively instead of type-switching on an untyped field.
type MetricValue struct {
	Kind   ValueKind `json:"kind"`
	Number float64   `json:"value,omitempty"`
	Unit   string    `json:"unit,omitempty"`
	Label  string    `json:"label,omitempty"`
}

// ValueKind discriminates MetricValue cases.
type ValueKind string

const (
	ValueNumeric     ValueKind = "numeric"
	ValueCategorical ValueKind = "categorical"
)

// Numeric constructs a numeric MetricValue.
func Numeric(value float64, unit string) MetricValue {
	return MetricValue{Kind: ValueNumeric, Number: value, Unit: unit}
}

// Categorical constructs a categorical MetricValue.
func Categorical(label string) MetricValue {
	return MetricValue{Kind: ValueCategorical, Label: label}
}

// UnmarshalJSON accepts the tagged form as well as bare JSON numbers and
// strings, which older exports used for metric values.
func (v *MetricValue) UnmarshalJSON(data []byte) error {
	type tagged MetricValue
	var t tagged
	if err := json.Unmarshal(data, &t); err == nil && t.Kind != "" {
		switch t.Kind {
		case ValueNumeric, ValueCategorical:
			*v = MetricValue(t)
			return nil
		default:
			return fmt.Errorf("models: unknown metric value kind %q", t.Kind)
		}
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Numeric(n, "")
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Categorical(s)
		return nil
	}
	return fmt.Errorf("models: metric value is neither tagged, numeric, nor categorical")
}

// HealthMetric is a single health log entry.
type HealthMetric struct {
	ID        string      `json:"id"`
	Type      MetricType  `json:"type"`
	Value     MetricValue `json:"value"`
	Date      string      `json:"date"`      // YYYY-MM-DD
	Timestamp int64       `json:"timestamp"` // Unix millis
}

func (h HealthMetric) RecordID() string { return h.ID }
