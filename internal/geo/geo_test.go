package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(19.076, 72.8777, 19.076, 72.8777))
	})

	t.Run("known distance Mumbai to Pune", func(t *testing.T) {
		d := Haversine(19.076, 72.8777, 18.5204, 73.8567)
		assert.InDelta(t, 120, d, 5)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Haversine(19.076, 72.8777, 28.7041, 77.1025)
		b := Haversine(28.7041, 77.1025, 19.076, 72.8777)
		assert.Equal(t, a, b)
	})

	t.Run("one degree of latitude is about 111 km", func(t *testing.T) {
		d := Haversine(10, 76, 11, 76)
		assert.InDelta(t, 111.19, d, 0.1)
	})
}

func TestValid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"valid city coordinates", 19.076, 72.8777, true},
		{"unset origin", 0, 0, false},
		{"latitude out of range", 91, 10, false},
		{"latitude below range", -90.5, 10, false},
		{"longitude out of range", 10, 181, false},
		{"longitude below range", 10, -180.5, false},
		{"zero latitude only", 0, 72.8, true},
		{"boundary values", 90, 180, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.lat, tc.lng))
		})
	}
}

func TestTravelMinutes(t *testing.T) {
	t.Run("rounds to nearest minute", func(t *testing.T) {
		// 5 km at 25 km/h is 12 minutes exactly.
		assert.Equal(t, 12, TravelMinutes(5, 25))
		// 4.9 km at 25 km/h is 11.76 minutes.
		assert.Equal(t, 12, TravelMinutes(4.9, 25))
		// 4.7 km at 25 km/h is 11.28 minutes.
		assert.Equal(t, 11, TravelMinutes(4.7, 25))
	})

	t.Run("never negative", func(t *testing.T) {
		assert.Equal(t, 0, TravelMinutes(-3, 25))
		assert.Equal(t, 0, TravelMinutes(3, 0))
	})
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 1.23, RoundKm(1.2345))
	assert.Equal(t, 1.24, RoundKm(1.235))
}
