package payperiod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStart string
		wantEnd   string
	}{
		{"anchor date itself", "2025-12-29", "2025-12-29", "2026-01-11"},
		{"mid first period", "2026-01-05", "2025-12-29", "2026-01-11"},
		{"last day of first period", "2026-01-11", "2025-12-29", "2026-01-11"},
		{"first day of second period", "2026-01-12", "2026-01-12", "2026-01-25"},
		{"far future", "2026-07-04", "2026-06-29", "2026-07-12"},
		{"day before anchor", "2025-12-28", "2025-12-15", "2025-12-28"},
		{"well before anchor", "2025-11-01", "2025-10-20", "2025-11-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(date(tt.input))
			assert.Equal(t, date(tt.wantStart), p.Start)
			assert.Equal(t, date(tt.wantEnd), p.End)
			assert.True(t, p.Contains(date(tt.input)))
		})
	}
}

func TestResolveLabel(t *testing.T) {
	p := Resolve(date("2026-01-05"))
	assert.Equal(t, "12/29/2025 - 1/11/2026", p.Label)
}

// Periods tile the timeline: every date over a multi-year span belongs to
// exactly one period, and consecutive periods share no days and leave no
// gaps.
func TestResolveTiling(t *testing.T) {
	d := date("2024-01-01")
	end := date("2027-12-31")
	prev := Resolve(d)
	for d.Before(end) {
		p := Resolve(d)
		require.True(t, p.Contains(d), "date %s not inside its own period", d.Format(DateLayout))
		if !p.Start.Equal(prev.Start) {
			// A new period must begin exactly one day after the old one ends.
			require.Equal(t, prev.End.AddDate(0, 0, 1), p.Start)
		}
		require.Equal(t, p.Start.AddDate(0, 0, DaysPerPeriod-1), p.End)
		prev = p
		d = d.AddDate(0, 0, 1)
	}
}

func TestNavigateRoundTrip(t *testing.T) {
	starts := []string{"2025-12-29", "2026-01-12", "2025-12-15", "2030-06-10"}
	for _, s := range starts {
		p := Resolve(date(s))
		next := Navigate(p.Start, Next)
		back := Navigate(next.Start, Prev)
		assert.Equal(t, p, back, "next then prev from %s", s)
	}
}

func TestNavigateAdjacency(t *testing.T) {
	p := Resolve(date("2026-01-05"))
	next := Navigate(p.Start, Next)
	assert.Equal(t, p.End.AddDate(0, 0, 1), next.Start)

	prev := Navigate(p.Start, Prev)
	assert.Equal(t, p.Start.AddDate(0, 0, -1), prev.End)
}

func TestWeekIndex(t *testing.T) {
	start := date("2025-12-29")
	for d := 0; d < DaysPerWeek; d++ {
		assert.Equal(t, 0, WeekIndex(start, start.AddDate(0, 0, d)))
	}
	for d := DaysPerWeek; d < DaysPerPeriod; d++ {
		assert.Equal(t, 1, WeekIndex(start, start.AddDate(0, 0, d)))
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("01/05/2026")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestMidnightStripsTimeAndZone(t *testing.T) {
	loc := time.FixedZone("behind", -8*3600)
	// 11pm local on Jan 4 is already Jan 5 in UTC; Midnight must keep the
	// civil date the caller saw, not shift it.
	stamp := time.Date(2026, time.January, 4, 23, 15, 0, 0, loc)
	assert.Equal(t, date("2026-01-04"), Midnight(stamp))
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 14, 0},
		{13, 14, 0},
		{14, 14, 1},
		{-1, 14, -1},
		{-14, 14, -1},
		{-15, 14, -2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorDiv(tt.a, tt.b), "floorDiv(%d, %d)", tt.a, tt.b)
	}
}
