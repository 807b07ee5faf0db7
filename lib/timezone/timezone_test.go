package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	cases := []struct {
		in       time.Time
		expected time.Time
	}{
		{
			in:       time.Date(2024, time.January, 10, 13, 45, 12, 0, Location),
			expected: time.Date(2024, time.January, 10, 0, 0, 0, 0, Location),
		},
		{
			in:       time.Date(2024, time.June, 1, 0, 0, 0, 0, Location),
			expected: time.Date(2024, time.June, 1, 0, 0, 0, 0, Location),
		},
		{
			// 23:30 UTC is already the next day in Rome
			in:       time.Date(2024, time.March, 4, 23, 30, 0, 0, time.UTC),
			expected: time.Date(2024, time.March, 5, 0, 0, 0, 0, Location),
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, StartOfDay(test.in))
	}
}
