// Package calendar provides business day calendars used to express monthly demand per workday
package calendar

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/us"
)

const (
	RegionNone = ""
	RegionNL   = "nl"
	RegionUS   = "us"
)

var ErrUnknownRegion = errors.New("unknown holiday region")

// Holiday is an observed public holiday on a given day
type Holiday struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// Calendar reports workdays and holidays for one holiday region. Weekends are never workdays.
type Calendar struct {
	region   string
	holidays []*cal.Holiday
	bc       *cal.BusinessCalendar
}

// New creates a calendar for the region. RegionNone only excludes weekends.
func New(region string) (*Calendar, error) {
	var holidays []*cal.Holiday
	switch strings.ToLower(region) {
	case RegionNone:
	case RegionNL:
		holidays = nl.Holidays
	case RegionUS:
		holidays = us.Holidays
	default:
		return nil, fmt.Errorf("%q, %w", region, ErrUnknownRegion)
	}

	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(holidays...)
	return &Calendar{
		region:   strings.ToLower(region),
		holidays: holidays,
		bc:       bc,
	}, nil
}

// Region returns the holiday region of the calendar
func (c *Calendar) Region() string {
	if c == nil {
		return RegionNone
	}
	return c.region
}

// Workdays counts the workdays in a calendar month
func (c *Calendar) Workdays(year int, month time.Month) int {
	if c == nil {
		return 0
	}
	start := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return c.bc.WorkdaysInRange(start, end)
}

// Holidays returns the holidays observed within a calendar month ordered by date
func (c *Calendar) Holidays(year int, month time.Month) []Holiday {
	if c == nil {
		return nil
	}
	var res []Holiday
	for _, hol := range c.holidays {
		_, observed := hol.Calc(year)
		if observed.IsZero() || observed.Month() != month || observed.Year() != year {
			continue
		}
		res = append(res, Holiday{
			Name: strings.ReplaceAll(fmt.Sprintf("%s_%d", hol.Name, year), " ", "_"),
			Date: time.Date(observed.Year(), observed.Month(), observed.Day(), 0, 0, 0, 0, time.UTC),
		})
	}
	slices.SortStableFunc(res, func(a, b Holiday) int {
		return a.Date.Compare(b.Date)
	})
	return res
}
