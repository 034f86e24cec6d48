package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceStatusNextWrapsAfterFourTaps(t *testing.T) {
	for _, start := range AttendanceStatuses() {
		s := start
		for i := 0; i < 4; i++ {
			s = s.Next()
		}
		assert.Equal(t, start, s)
	}
	assert.Equal(t, AttendanceStatusAbsent, AttendanceStatusPresent.Next())
	assert.Equal(t, AttendanceStatusPresent, AttendanceStatusLeftEarly.Next())
	assert.Equal(t, AttendanceStatusPresent, AttendanceStatus("").Next())
	assert.Equal(t, "LEFT EARLY", AttendanceStatusLeftEarly.Label())
}

func TestParseFallbacks(t *testing.T) {
	assert.Equal(t, AttendanceStatusTardy, ParseAttendanceStatus(" tardy "))
	assert.Equal(t, AttendanceStatusPresent, ParseAttendanceStatus("LATE"))
	assert.Equal(t, PerformanceYellow, ParsePerformanceColor("yellow"))
	assert.Equal(t, PerformanceGreen, ParsePerformanceColor("BLUE"))
	assert.Equal(t, ProficiencyNP, ParseProficiencyLevel("np"))
	assert.Equal(t, ProficiencyNone, ParseProficiencyLevel("SIX"))
}

func TestRatingCycleReturnsToUnrated(t *testing.T) {
	r := Unrated()
	var seen []string
	for i := 0; i < 4; i++ {
		r = r.Next()
		seen = append(seen, r.String())
	}
	assert.Equal(t, []string{"GREEN", "YELLOW", "RED", ""}, seen)
	assert.False(t, r.Set)
}

func TestProficiencyRankOrder(t *testing.T) {
	levels := []ProficiencyLevel{ProficiencyFive, ProficiencyFour, ProficiencyThree, ProficiencyNP, ProficiencyNone}
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i-1].Rank(), levels[i].Rank())
	}
	_, ok := ProficiencyNone.Badge()
	assert.False(t, ok)
	assert.Equal(t, "ML", CategoryMLNew.Badge().Label)
	assert.False(t, CategoryFlag("gifted").Valid())
}

func TestWeekStartAndDayIndex(t *testing.T) {
	wednesday := time.Date(2025, 9, 3, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-09-01", FormatDate(WeekStart(wednesday)))
	assert.Equal(t, 2, DayIndex(wednesday))

	sunday := time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 6, DayIndex(sunday))
	assert.False(t, IsWeekday(sunday))
	assert.Equal(t, "2025-09-01", FormatDate(WeekStart(sunday)))

	parsed, err := ParseDate("2025-09-03T23:10:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-03", FormatDate(parsed))
	_, err = ParseDate("03/09/2025")
	assert.Error(t, err)
}
