package timedataset

import "time"

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

// MonthStart truncates a time to the first instant of its calendar month. The month is taken in
// the location of the input and the result is expressed in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves a month start forward by n months
func AddMonths(month time.Time, n int) time.Time {
	return time.Date(month.Year(), month.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of whole months from start to end
func MonthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// MonthRange generates every month start from start to end inclusive
func MonthRange(start, end time.Time) []time.Time {
	start = MonthStart(start)
	end = MonthStart(end)
	if end.Before(start) {
		return nil
	}
	n := MonthsBetween(start, end) + 1
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, AddMonths(start, i))
	}
	return t
}

// Horizon generates n month starts directly after the given month
func Horizon(last time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	t := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		t = append(t, AddMonths(MonthStart(last), i))
	}
	return t
}
