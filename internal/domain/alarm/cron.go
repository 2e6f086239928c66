package alarm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

var (
	// errCronNotWeekly is returned for expressions restricted by day of month or month.
	errCronNotWeekly = errors.New("cron expression must use '*' for day of month and month")
	// errCronManyTimes is returned when an expression fires at more than one clock time.
	errCronManyTimes = errors.New("cron expression fires at more than one clock time")
	// errCronNoTicks is returned when an expression never fires within a week.
	errCronNoTicks = errors.New("cron expression never fires")
)

// cronReference is a Monday midnight used to enumerate one week of ticks.
//
//nolint:gochecknoglobals // Constant reference instant.
var cronReference = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// CronExpr renders a repeating alarm as a five-field cron line.
// One-shot alarms have no cron form and yield an empty string.
func CronExpr(v Value) string {
	if !v.IsRepeating() {
		return ""
	}

	days := v.DaysOfWeek.Weekdays()
	fields := make([]string, 0, len(days))

	for _, day := range days {
		fields = append(fields, strconv.Itoa(int(day)))
	}

	if v.DaysOfWeek&EveryDay == EveryDay {
		fields = []string{"*"}
	}

	return fmt.Sprintf("%d %d * * %s", v.Minute, v.Hour, strings.Join(fields, ","))
}

// ParseCron converts a weekly cron line that fires at a single clock time into
// hour, minute and repeat mask.
func ParseCron(expr string) (int, int, DaysOfWeek, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return 0, 0, 0, fmt.Errorf("%w: expected 5 fields in %q", ErrInvalidTime, expr)
	}

	if !gronx.IsValid(expr) {
		return 0, 0, 0, fmt.Errorf("%w: invalid cron expression %q", ErrInvalidTime, expr)
	}

	if fields[2] != "*" || fields[3] != "*" {
		return 0, 0, 0, fmt.Errorf("%w: %w", ErrInvalidTime, errCronNotWeekly)
	}

	var (
		hour, minute = -1, -1
		days         DaysOfWeek
		from         = cronReference
		weekEnd      = cronReference.AddDate(0, 0, 7)
		inclusive    = true
	)

	// A single-time weekly expression ticks at most seven times per week.
	// Only the first lookup may return the reference instant itself.
	for range 8 {
		tick, err := gronx.NextTickAfter(expr, from, inclusive)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("parse cron %q: %w", expr, err)
		}

		if !tick.Before(weekEnd) {
			break
		}

		if hour < 0 {
			hour, minute = tick.Hour(), tick.Minute()
		} else if tick.Hour() != hour || tick.Minute() != minute {
			return 0, 0, 0, fmt.Errorf("%w: %w", ErrInvalidTime, errCronManyTimes)
		}

		days |= DaysOf(tick.Weekday())
		from, inclusive = tick, false
	}

	if hour < 0 {
		return 0, 0, 0, fmt.Errorf("%w: %w", ErrInvalidTime, errCronNoTicks)
	}

	return hour, minute, days, nil
}
