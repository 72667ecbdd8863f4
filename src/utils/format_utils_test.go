package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTWD(t *testing.T) {
	assert.Equal(t, "2,500,000", FormatTWD(2500000))
	assert.Equal(t, "0", FormatTWD(0))
	assert.Equal(t, "1,234", FormatTWD(1234.5), "fractional TWD is dropped")
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "42", FormatCount(42))
	assert.Equal(t, "1,000", FormatCount(1000))
}
