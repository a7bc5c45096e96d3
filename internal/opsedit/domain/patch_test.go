package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatch(t *testing.T) {
	patch, err := ParsePatch(map[string]any{
		"malo_id":              " 50123456789 ",
		"previous_consumption": float64(3100),
		"has_own_msb":          true,
		"notes":                "customer called",
	})
	require.NoError(t, err)

	assert.Equal(t, "50123456789", patch.Columns["malo_id"])
	assert.Equal(t, int64(3100), patch.Columns["previous_consumption"])
	assert.Equal(t, true, patch.Columns["has_own_msb"])
	require.NotNil(t, patch.Notes)
	assert.Equal(t, "customer called", *patch.Notes)
	assert.NotContains(t, patch.Columns, "notes")
}

func TestParsePatch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   error
	}{
		{"empty", map[string]any{}, ErrEmptyPatch},
		{"not whitelisted", map[string]any{"draft_status": "APPROVED"}, ErrFieldNotEditable},
		{"iban is not editable here", map[string]any{"iban": "DE02120300000000202051"}, ErrFieldNotEditable},
		{"number as string", map[string]any{"previous_consumption": "3100"}, ErrInvalidFieldValue},
		{"fractional number", map[string]any{"previous_consumption": 12.5}, ErrInvalidFieldValue},
		{"negative number", map[string]any{"previous_consumption": json.Number("-1")}, ErrInvalidFieldValue},
		{"bool as string", map[string]any{"has_own_msb": "yes"}, ErrInvalidFieldValue},
		{"null string", map[string]any{"meter_number": nil}, ErrInvalidFieldValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePatch(tt.fields)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
