package tracing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributes_DropsPersonalData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("email", "a@b.de"),
		attribute.String("contract_id", "CT-1"),
		attribute.String("iban", "DE00"),
	)
	if assert.Len(t, attrs, 1) {
		assert.Equal(t, attribute.Key("contract_id"), attrs[0].Key)
	}
}

func TestSafeError(t *testing.T) {
	err := fmt.Errorf("insert contract draft: %w", errors.New("duplicate value DE8937..."))
	assert.EqualError(t, SafeError(err), "insert contract draft")
	assert.Nil(t, SafeError(nil))
}
