package calendar

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestToday(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, date(2024, 1, 1), Today(now, time.UTC))
	assert.Equal(t, date(2024, 1, 2), Today(now, tokyo))
	assert.Equal(t, date(2024, 1, 1), Today(now, nil))
}

func TestParse(t *testing.T) {
	d, err := Parse("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), d)

	_, err = Parse("2024/02/29")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		from, to civil.Date
		want     int
	}{
		{"same day", date(2024, 1, 1), date(2024, 1, 1), 0},
		{"forward", date(2024, 1, 1), date(2024, 1, 10), 9},
		{"backward", date(2024, 1, 10), date(2024, 1, 1), -9},
		{"leap year", date(2024, 2, 28), date(2024, 3, 1), 2},
		{"year boundary", date(2023, 12, 31), date(2024, 1, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.from, tt.to))
		})
	}
}

func TestInclusiveDayCount(t *testing.T) {
	assert.Equal(t, 10, InclusiveDayCount(date(2024, 1, 1), date(2024, 1, 10)))
	assert.Equal(t, 1, InclusiveDayCount(date(2024, 1, 1), date(2024, 1, 1)))
	assert.Equal(t, 0, InclusiveDayCount(date(2024, 1, 2), date(2024, 1, 1)))
}

func TestWithin(t *testing.T) {
	start, end := date(2024, 1, 1), date(2024, 1, 10)

	assert.True(t, Within(start, start, end))
	assert.True(t, Within(end, start, end))
	assert.True(t, Within(date(2024, 1, 5), start, end))
	assert.False(t, Within(date(2023, 12, 31), start, end))
	assert.False(t, Within(date(2024, 1, 11), start, end))
}

func TestSortedDoesNotMutate(t *testing.T) {
	in := []civil.Date{date(2024, 1, 3), date(2024, 1, 1), date(2024, 1, 2)}

	out := Sorted(in)

	assert.Equal(t, []civil.Date{date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 3)}, out)
	assert.Equal(t, date(2024, 1, 3), in[0])
	assert.True(t, Contains(in, date(2024, 1, 2)))
	assert.False(t, Contains(in, date(2024, 1, 4)))
}
