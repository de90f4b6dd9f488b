package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToday(t *testing.T) {
	clock := &MockClock{}
	clock.SetNow(time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Today(clock))
}

func TestAddMonths(t *testing.T) {
	testCases := []struct {
		name   string
		date   time.Time
		months int
		want   time.Time
	}{
		{"forward", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 6, time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)},
		{"backward across year", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), -1, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)},
		{"clamps to month end", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), -1, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"clamps in leap year", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonths(tc.date, tc.months))
		})
	}
}
