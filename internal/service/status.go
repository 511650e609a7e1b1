package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/shiftclock"
)

// Resolver derives a worker's current status from the event log and the
// daily allocation store. It never mutates state beyond the first-access
// creation of a zeroed allocation record.
type Resolver struct {
	events EventLog
	allocs Allocations
	loc    *time.Location
}

func NewResolver(events EventLog, allocs Allocations, loc *time.Location) *Resolver {
	return &Resolver{events: events, allocs: allocs, loc: loc}
}

// Snapshot resolves the status of userID on the given shift-day as of now.
func (r *Resolver) Snapshot(ctx context.Context, userID, date string, now time.Time) (*model.StatusSnapshot, error) {
	alloc, err := r.allocs.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("resolve status: %w", err)
	}

	clockedIn, clockedOut, err := r.clockState(ctx, userID, date, now)
	if err != nil {
		return nil, err
	}

	snap := &model.StatusSnapshot{
		UserID:                userID,
		Date:                  date,
		IsClockedIn:           clockedIn,
		CanPerformClockAction: date == shiftclock.ShiftDayOf(now, r.loc),
		Categories:            make(map[model.Category]model.CategorySnapshot, 3),
		ActivitySince:         alloc.Activity.Since,
	}
	for _, c := range model.Categories() {
		snap.Categories[c] = model.CategorySnapshot{
			MinutesUsed:      alloc.MinutesUsed(c),
			MinutesRemaining: alloc.Remaining(c),
			MinutesExceeded:  alloc.Exceeded(c),
			Exceeded:         alloc.IsExceeded(c),
			Ongoing:          alloc.Ongoing(c),
		}
	}

	// Ongoing break/lunch outranks working; working requires an open shift;
	// a closed shift shows off_duty; otherwise idle.
	switch {
	case alloc.Ongoing(model.CategoryBreak1):
		snap.CurrentStatus = model.StatusOnBreak1
	case alloc.Ongoing(model.CategoryBreak2):
		snap.CurrentStatus = model.StatusOnBreak2
	case alloc.Ongoing(model.CategoryLunch):
		snap.CurrentStatus = model.StatusAtLunch
	case clockedIn:
		snap.CurrentStatus = model.StatusWorking
	case clockedOut:
		snap.CurrentStatus = model.StatusOffDuty
	default:
		snap.CurrentStatus = model.StatusIdle
	}
	return snap, nil
}

// History lists a user's events on one shift-day, oldest first.
func (r *Resolver) History(ctx context.Context, userID, date string) ([]*model.AttendanceEvent, error) {
	from, to, err := shiftclock.ShiftDayWindow(date, r.loc)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	events, err := r.events.ListUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return events, nil
}

// clockState reports whether the user's most recent clock event on or before
// now is an open clock_in, scanning the queried shift-day and the one before
// it so a shift still running past midnight is seen. The second result
// reports whether the scan saw a clock_out at all.
func (r *Resolver) clockState(ctx context.Context, userID, date string, now time.Time) (bool, bool, error) {
	prev, err := shiftclock.PrevShiftDay(date)
	if err != nil {
		return false, false, fmt.Errorf("resolve status: %w", err)
	}
	from, _, err := shiftclock.ShiftDayWindow(prev, r.loc)
	if err != nil {
		return false, false, fmt.Errorf("resolve status: %w", err)
	}
	_, to, err := shiftclock.ShiftDayWindow(date, r.loc)
	if err != nil {
		return false, false, fmt.Errorf("resolve status: %w", err)
	}
	// The listing bound is exclusive; nudge past now so an event stamped
	// exactly at now still counts.
	if to.After(now) {
		to = now.Add(time.Nanosecond)
	}

	events, err := r.events.ListUserClockEvents(ctx, userID, from, to)
	if err != nil {
		return false, false, fmt.Errorf("resolve status: %w", err)
	}
	if len(events) == 0 {
		return false, false, nil
	}
	var sawClockOut bool
	for _, ev := range events {
		if ev.Action == model.ActionClockOut {
			sawClockOut = true
		}
	}
	// The store returns events ordered by (timestamp, insertion order), so
	// the last element is the tie-break winner.
	last := events[len(events)-1]
	return last.Action == model.ActionClockIn, sawClockOut, nil
}
