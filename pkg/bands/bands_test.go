package bands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescription(t *testing.T) {
	assert.Equal(t, "Expert User", Description(9))
	assert.Equal(t, "Very Good User", Description(8.5))
	assert.Equal(t, "Good User", Description(7))
	assert.Equal(t, "Competent User", Description(6.5))
	assert.Equal(t, "Modest User", Description(5))
	assert.Equal(t, "Limited User", Description(4))
	assert.Equal(t, "Extremely Limited User", Description(3))
	assert.Equal(t, "Did not attempt the test", Description(0))
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#10b981", Color(9))
	assert.Equal(t, "#059669", Color(7.5))
	assert.Equal(t, "#65a30d", Color(7))
	assert.Equal(t, "#d97706", Color(6))
	assert.Equal(t, "#dc2626", Color(5))
	assert.Equal(t, "#6b7280", Color(2))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "0s", FormatDuration(-3))
	assert.Equal(t, "45s", FormatDuration(45))
	assert.Equal(t, "3m 20s", FormatDuration(200.7))
	assert.Equal(t, "1m 0s", FormatDuration(60))
}
