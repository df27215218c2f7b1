package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	t.Run("Success - US national format", func(t *testing.T) {
		normalized, err := NormalizePhone("(212) 555-0123", "US")
		require.NoError(t, err)
		assert.Equal(t, "+12125550123", normalized)
	})

	t.Run("Success - already E.164", func(t *testing.T) {
		normalized, err := NormalizePhone("+12125550123", "")
		require.NoError(t, err)
		assert.Equal(t, "+12125550123", normalized)
	})

	t.Run("Error - empty number", func(t *testing.T) {
		_, err := NormalizePhone("", "US")
		assert.Error(t, err)
	})

	t.Run("Error - invalid number", func(t *testing.T) {
		_, err := NormalizePhone("12", "US")
		assert.Error(t, err)
	})
}

func TestValidatePhone(t *testing.T) {
	result, err := ValidatePhone("212-555-0123", "US")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, "+12125550123", result.E164Format)
	assert.Equal(t, "US", result.CountryCode)
}
