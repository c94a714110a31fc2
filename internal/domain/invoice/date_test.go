package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateFromISO(t *testing.T) {
	t.Run("ValidDate", func(t *testing.T) {
		d, err := DateFromISO("2026-01-15")
		require.NoError(t, err)
		assert.Equal(t, "2026-01-15", d.ISO())
		assert.Equal(t, "20260115", d.Compact())
	})

	t.Run("NonExistentCalendarDate", func(t *testing.T) {
		_, err := DateFromISO("2026-02-30")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDate{Value: "2026-02-30"})
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, value := range []string{"", "15/01/2026", "2026-1-5", "not-a-date"} {
			_, err := DateFromISO(value)
			assert.Error(t, err, "expected error for %q", value)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		for _, value := range []string{"2024-02-29", "2026-12-31", "2000-01-01"} {
			d, err := DateFromISO(value)
			require.NoError(t, err)
			assert.Equal(t, value, d.ISO())

			back, err := DateFromCompact(d.Compact())
			require.NoError(t, err)
			assert.Equal(t, value, back.ISO())
		}
	})
}

func TestDateFromCompact(t *testing.T) {
	d, err := DateFromCompact("20260115")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", d.ISO())

	_, err = DateFromCompact("20260230")
	assert.Error(t, err)
}

func TestDate_IsZero(t *testing.T) {
	var unset Date
	assert.True(t, unset.IsZero())

	d, err := DateFromISO("2026-01-15")
	require.NoError(t, err)
	assert.False(t, d.IsZero())
}
