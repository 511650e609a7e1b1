// Package shiftclock maps instants onto the 22:00-07:00 overnight shift.
// All functions are pure; callers pass the instant and location explicitly
// so behavior is deterministic under test.
package shiftclock

import "time"

const (
	// ShiftStartHour is the local hour the shift begins.
	ShiftStartHour = 22
	// ShiftEndHour is the local hour the shift ends on the following day.
	ShiftEndHour = 7
	// RolloverWindowMinutes is how long after shift end the rollover job
	// remains active.
	RolloverWindowMinutes = 10
)

// ShiftDayOf returns the shift-day a timestamp belongs to, as YYYY-MM-DD.
// Local times before 07:00 are attributed to the previous calendar date,
// since the shift that started at 22:00 is still running.
func ShiftDayOf(t time.Time, loc *time.Location) string {
	lt := t.In(loc)
	if lt.Hour() < ShiftEndHour {
		lt = lt.AddDate(0, 0, -1)
	}
	return lt.Format(time.DateOnly)
}

// ShiftStart returns the instant the shift for the given shift-day begins:
// 22:00 local time on that date.
func ShiftStart(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), ShiftStartHour, 0, 0, 0, loc), nil
}

// ShiftDayWindow returns the half-open interval of instants attributed to the
// given shift-day: [date 07:00, date+1 07:00) local time.
func ShiftDayWindow(date string, loc *time.Location) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := time.Date(d.Year(), d.Month(), d.Day(), ShiftEndHour, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1), nil
}

// PrevShiftDay returns the shift-day immediately before the given one.
func PrevShiftDay(date string) (string, error) {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -1).Format(time.DateOnly), nil
}

// Lateness compares a clock-in instant against its shift-day's 22:00 start.
// Minutes are whole elapsed minutes, floored; a clock-in is late only when
// at least one full minute has elapsed.
func Lateness(clockIn time.Time, loc *time.Location) (bool, int) {
	start, err := ShiftStart(ShiftDayOf(clockIn, loc), loc)
	if err != nil {
		return false, 0
	}
	minutes := ElapsedMinutes(start, clockIn)
	return minutes > 0, minutes
}

// ElapsedMinutes returns whole minutes between two instants, floored.
// Negative spans (clock skew, edited data) clamp to zero so usage counters
// never go backwards.
func ElapsedMinutes(from, to time.Time) int {
	secs := int(to.Sub(from) / time.Second)
	if secs <= 0 {
		return 0
	}
	return secs / 60
}

// InRolloverWindow reports whether the instant falls in the [07:00, 07:10)
// local window during which the rollover job is allowed to run.
func InRolloverWindow(t time.Time, loc *time.Location) bool {
	lt := t.In(loc)
	return lt.Hour() == ShiftEndHour && lt.Minute() < RolloverWindowMinutes
}
