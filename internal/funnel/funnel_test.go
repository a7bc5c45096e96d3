package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "enfinitus-website", Normalize("enfinitus-website"))
	assert.Equal(t, "enfinitus-website", Normalize("  Enfinitus Website "))
	assert.Equal(t, "", Normalize("   "))
}
