package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartTime(t *testing.T) {
	testData := map[string]struct {
		tSlice   TimeSlice
		expected time.Time
	}{
		"nil input for start time": {
			tSlice:   nil,
			expected: time.Time{},
		},
		"valid start time": {
			tSlice:   TimeSlice(GenerateT(3, month(1970, time.January))),
			expected: month(1970, time.January),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.tSlice.StartTime()
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestEndTime(t *testing.T) {
	testData := map[string]struct {
		tSlice   TimeSlice
		expected time.Time
	}{
		"nil input for end time": {
			tSlice:   nil,
			expected: time.Time{},
		},
		"valid end time": {
			tSlice:   TimeSlice(GenerateT(3, month(1970, time.January))),
			expected: month(1970, time.March),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := td.tSlice.EndTime()
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestMonthStart(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	testData := map[string]struct {
		input    time.Time
		expected time.Time
	}{
		"mid month":      {time.Date(2024, time.February, 29, 13, 4, 5, 6, time.UTC), month(2024, time.February)},
		"already start":  {month(2024, time.March), month(2024, time.March)},
		"local timezone": {time.Date(2024, time.April, 1, 1, 0, 0, 0, loc), month(2024, time.April)},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, MonthStart(td.input))
		})
	}
}

func TestMonthArithmetic(t *testing.T) {
	assert.Equal(t, month(2024, time.January), AddMonths(month(2023, time.November), 2))
	assert.Equal(t, month(2022, time.December), AddMonths(month(2023, time.January), -1))
	assert.Equal(t, 14, MonthsBetween(month(2022, time.November), month(2024, time.January)))
	assert.Equal(t, 0, MonthsBetween(month(2022, time.November), month(2022, time.November)))

	r := MonthRange(time.Date(2023, time.November, 20, 0, 0, 0, 0, time.UTC), time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []time.Time{
		month(2023, time.November),
		month(2023, time.December),
		month(2024, time.January),
		month(2024, time.February),
	}, r)
	assert.Nil(t, MonthRange(month(2024, time.February), month(2023, time.February)))

	h := Horizon(month(2023, time.November), 3)
	assert.Equal(t, []time.Time{
		month(2023, time.December),
		month(2024, time.January),
		month(2024, time.February),
	}, h)
	assert.Nil(t, Horizon(month(2023, time.November), 0))
}
