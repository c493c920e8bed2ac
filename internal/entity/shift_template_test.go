package entity

import (
	"testing"

	"github.com/retailshift/scheduler/internal/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestShiftTemplate_BreakMinutes(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{"4h no break", "09:00", "13:00", 0},
		{"6h no break (boundary)", "09:00", "15:00", 0},
		{"7h short break", "09:00", "16:00", 30},
		{"9h short break (boundary)", "06:00", "15:00", 30},
		{"9.5h long break", "06:00", "15:30", 45},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tpl := &ShiftTemplate{
				ID:    AssignmentID{},
				Start: timeutil.MustParse(c.start),
				End:   timeutil.MustParse(c.end),
			}
			assert.Equal(t, c.expected, tpl.BreakMinutes())
		})
	}
}

func TestShiftTemplate_ValidateDuration(t *testing.T) {
	valid := &ShiftTemplate{Start: timeutil.MustParse("09:00"), End: timeutil.MustParse("17:00")}
	assert.NoError(t, valid.ValidateDuration())

	tooLong := &ShiftTemplate{Start: timeutil.MustParse("06:00"), End: timeutil.MustParse("18:30")}
	assert.Error(t, tooLong.ValidateDuration())

	overnight := &ShiftTemplate{Start: timeutil.MustParse("22:00"), End: timeutil.MustParse("06:00")}
	assert.NoError(t, overnight.ValidateDuration())
	assert.InDelta(t, 8.0, overnight.Duration(), 0.001)
}

func TestWeekdaySet(t *testing.T) {
	s := NewWeekdaySet(1, 3, 3, 5)
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(0))
	assert.Equal(t, []int{1, 3, 5}, s.Sorted())
}
