package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Patch is a validated set of column updates plus an optional note.
type Patch struct {
	Columns map[string]any
	Notes   *string
}

// ParsePatch checks every field against the whitelist and converts values
// decoded from JSON to their column types.
func ParsePatch(fields map[string]any) (Patch, error) {
	if len(fields) == 0 {
		return Patch{}, ErrEmptyPatch
	}

	patch := Patch{Columns: make(map[string]any, len(fields))}
	for name, value := range fields {
		switch name {
		case FieldMaLoID, FieldMeterNumber, FieldPreviousProviderID:
			s, ok := value.(string)
			if !ok {
				return Patch{}, fieldError(name)
			}
			patch.Columns[name] = strings.TrimSpace(s)
		case FieldPreviousConsumption:
			n, ok := toInt64(value)
			if !ok || n < 0 {
				return Patch{}, fieldError(name)
			}
			patch.Columns[name] = n
		case FieldHasOwnMsb:
			b, ok := value.(bool)
			if !ok {
				return Patch{}, fieldError(name)
			}
			patch.Columns[name] = b
		case FieldNotes:
			s, ok := value.(string)
			if !ok {
				return Patch{}, fieldError(name)
			}
			s = strings.TrimSpace(s)
			patch.Notes = &s
		default:
			return Patch{}, fmt.Errorf("%w: %s", ErrFieldNotEditable, name)
		}
	}
	return patch, nil
}

func fieldError(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidFieldValue, name)
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
