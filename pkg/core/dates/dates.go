// Package dates generates the calendar dates a team's roster displays,
// based on the team's preferred weekdays.
package dates

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultPreviousCount is how many earlier dates a backward page loads.
const DefaultPreviousCount = 5

// previousScanLimit bounds backward pagination to one year so an empty
// preferred-day set cannot scan forever.
const previousScanLimit = 366

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Upcoming returns every date from `from` through December 31 of from's
// year whose weekday is in days, ascending, formatted as "2006-01-02".
// An empty day set yields no dates.
func Upcoming(days []time.Weekday, from time.Time) ([]string, error) {
	if len(days) == 0 {
		return nil, nil
	}

	start := midnightUTC(from)
	end := time.Date(from.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)

	return between(days, start, end)
}

// ForYear returns every matching date in the given calendar year,
// ascending. Used for forward pagination into the next year.
func ForYear(days []time.Weekday, year int) ([]string, error) {
	if len(days) == 0 {
		return nil, nil
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	return between(days, start, end)
}

// Previous returns up to count matching dates strictly before the given
// date, sorted ascending so they can be prepended to the loaded list.
// The scan is bounded to one year back.
func Previous(days []time.Weekday, before time.Time, count int) []string {
	if count <= 0 {
		count = DefaultPreviousCount
	}

	matching := make(map[time.Weekday]bool, len(days))
	for _, day := range days {
		matching[day] = true
	}

	// Walk backward day by day. rrule only expands forward, and the
	// one-year bound keeps this cheap even with no matching weekdays.
	found := make([]string, 0, count)
	cursor := midnightUTC(before).AddDate(0, 0, -1)
	for i := 0; i < previousScanLimit && len(found) < count; i++ {
		if matching[cursor.Weekday()] {
			found = append(found, cursor.Format("2006-01-02"))
		}
		cursor = cursor.AddDate(0, 0, -1)
	}

	// Reverse into ascending order.
	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}

	return found
}

// between expands a weekly recurrence over [start, end] inclusive.
func between(days []time.Weekday, start, end time.Time) ([]string, error) {
	byweekday := make([]rrule.Weekday, 0, len(days))
	for _, day := range days {
		byweekday = append(byweekday, rruleWeekdays[day])
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start,
		Until:     end,
		Byweekday: byweekday,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	occurrences := rule.Between(start, end, true)
	dates := make([]string, 0, len(occurrences))
	var last string
	for _, occurrence := range occurrences {
		date := occurrence.Format("2006-01-02")
		if date == last {
			continue
		}
		dates = append(dates, date)
		last = date
	}

	return dates, nil
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
