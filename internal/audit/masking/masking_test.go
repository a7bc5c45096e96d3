package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskIBAN(t *testing.T) {
	assert.Equal(t, "DE89****3000", MaskIBAN("DE89 3704 0044 0532 0130 00"))
	assert.Equal(t, "****", MaskIBAN("DE89"))
	assert.Equal(t, "", MaskIBAN(" "))
}

func TestMaskDetails(t *testing.T) {
	in := map[string]any{
		"iban":         "DE89370400440532013000",
		"email":        "max@example.de",
		"meter_number": "1ESY1160123456",
		"patch": map[string]any{
			"previous_iban": "DE02120300000000202051",
			"notes":         "called customer",
		},
		"count": 3,
		" ":     "dropped",
	}

	out := MaskDetails(in)

	assert.Equal(t, "DE89****3000", out["iban"])
	assert.Equal(t, "****e.de", out["email"])
	assert.Equal(t, "1ESY1160123456", out["meter_number"])
	assert.Equal(t, 3, out["count"])
	assert.NotContains(t, out, " ")

	patch := out["patch"].(map[string]any)
	assert.Equal(t, "DE02****2051", patch["previous_iban"])
	assert.Equal(t, "called customer", patch["notes"])

	assert.Nil(t, MaskDetails(nil))
}
