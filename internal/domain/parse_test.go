package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumn(t *testing.T) {
	assert.Equal(t, "category_name", NormalizeColumn(" Category Name "))
	assert.Equal(t, "item_description", NormalizeColumn("Item-Description"))
	assert.Equal(t, "county", NormalizeColumn("county"))
}

func TestParseBottles(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"12", 12},
		{" 7 ", 7},
		{"", 0},
		{"1,200", 1200},
		{"12.0", 12},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBottles(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"twelve", "1.5", "-3"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseBottles(bad)
			assert.Error(t, err)
		})
	}
}

func TestParseDollars(t *testing.T) {
	d, err := ParseDollars("$1,234.50")
	require.NoError(t, err)
	assert.Equal(t, "1234.50", d.StringFixed(2))

	d, err = ParseDollars("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDollars("abc")
	assert.Error(t, err)

	_, err = ParseDollars("-4.00")
	assert.Error(t, err)
}

func TestParseCoordinates(t *testing.T) {
	geo, ok, err := ParseCoordinates("41.59", "-93.62")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Geo{Lat: 41.59, Lon: -93.62}, geo)

	_, ok, err = ParseCoordinates("", "-93.62")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseCoordinates("north", "-93.62")
	assert.Error(t, err)

	_, _, err = ParseCoordinates("95", "-93.62")
	assert.Error(t, err)
}
