package service

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/shiftclock"
	"github.com/rommelmars/Attendance-Tracker-Company/pkg/workerpool"
)

// RolloverService force-closes open breaks and lunches, clocks out stragglers
// and resets daily budgets at shift end. Runs are idempotent inside the
// [07:00, 07:10) window and no-ops outside it. Per-user work fans out on a
// bounded worker pool; the shared UserLocks keeps each user's writes from
// racing a concurrent user-initiated action.
type RolloverService struct {
	events  EventLog
	allocs  Allocations
	locks   *UserLocks
	loc     *time.Location
	workers int
}

func NewRolloverService(events EventLog, allocs Allocations, locks *UserLocks, loc *time.Location, workers int) *RolloverService {
	if workers < 1 {
		workers = 1
	}
	return &RolloverService{
		events:  events,
		allocs:  allocs,
		locks:   locks,
		loc:     loc,
		workers: workers,
	}
}

// userWork lists candidate work for one user, gathered by the lock-free scan.
// runUser re-reads everything behind the user's lock before mutating, so a
// user action landing between scan and work is never clobbered.
type userWork struct {
	userID     string
	closeDates []string
	checkClock bool
	resetDates []string
}

// Run executes one rollover pass as of now.
func (s *RolloverService) Run(ctx context.Context, now time.Time) (*model.RolloverSummary, error) {
	summary := &model.RolloverSummary{At: now}
	if !shiftclock.InRolloverWindow(now, s.loc) {
		return summary, nil
	}

	today := shiftclock.ShiftDayOf(now, s.loc)
	prev, err := shiftclock.PrevShiftDay(today)
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}
	summary.Ran = true
	summary.Date = today

	work := make(map[string]*userWork)
	forUser := func(userID string) *userWork {
		w, ok := work[userID]
		if !ok {
			w = &userWork{userID: userID}
			work[userID] = w
		}
		return w
	}

	// Open breaks/lunches on the shift that just ended or on the new day.
	open, err := s.allocs.ListWithActivity(ctx, []string{prev, today})
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}
	for _, alloc := range open {
		w := forUser(alloc.UserID)
		w.closeDates = append(w.closeDates, alloc.Date)
	}

	// Stragglers: whoever's last clock event since the previous shift-day
	// began is still a clock_in.
	from, _, err := shiftclock.ShiftDayWindow(prev, s.loc)
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}
	clockEvents, err := s.events.ListClockEvents(ctx, from, now.Add(time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}
	lastClock := make(map[string]model.Action)
	for _, ev := range clockEvents {
		lastClock[ev.UserID] = ev.Action
	}
	for userID, action := range lastClock {
		if action == model.ActionClockIn {
			forUser(userID).checkClock = true
		}
	}

	// Fresh budgets for the shift-day that starts tonight.
	todays, err := s.allocs.ListByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}
	for _, alloc := range todays {
		w := forUser(alloc.UserID)
		w.resetDates = append(w.resetDates, alloc.Date)
	}

	var closed, clockOuts, resets, errs atomic.Int64
	pool := workerpool.New(s.workers)
	for _, w := range work {
		w := w
		pool.Submit(func() {
			c, o, r, err := s.runUser(ctx, w, from, now)
			closed.Add(int64(c))
			clockOuts.Add(int64(o))
			resets.Add(int64(r))
			if err != nil {
				errs.Add(1)
				log.Printf("rollover: user %s: %v", w.userID, err)
			}
		})
	}
	pool.Wait()

	summary.ActivitiesClosed = int(closed.Load())
	summary.AutoClockOuts = int(clockOuts.Load())
	summary.AllocationsReset = int(resets.Load())
	summary.Errors = int(errs.Load())
	return summary, nil
}

// runUser performs one user's rollover steps in order, behind that user's
// lock. Each step re-reads current state first: the candidates in w only say
// where to look, never what was there at scan time.
func (s *RolloverService) runUser(ctx context.Context, w *userWork, from, now time.Time) (closed, clockOuts, resets int, err error) {
	unlock := s.locks.Lock(w.userID)
	defer unlock()

	for _, date := range w.closeDates {
		alloc, err := s.allocs.GetOrCreate(ctx, w.userID, date)
		if err != nil {
			return closed, clockOuts, resets, err
		}
		// The user may have ended it themselves since the scan.
		if alloc.Activity.None() {
			continue
		}
		cat := alloc.Activity.Kind
		minutes := shiftclock.ElapsedMinutes(*alloc.Activity.Since, now)
		alloc.AddMinutes(cat, minutes)
		alloc.ClearActivity()
		if err := s.allocs.Save(ctx, alloc); err != nil {
			return closed, clockOuts, resets, err
		}
		if err := s.events.Append(ctx, &model.AttendanceEvent{
			UserID:    w.userID,
			Timestamp: now.UTC(),
			Action:    cat.EndAction(),
			Note:      fmt.Sprintf("Auto-ended %s. Duration: %d minutes", cat.Label(), minutes),
		}); err != nil {
			return closed, clockOuts, resets, err
		}
		closed++
	}

	if w.checkClock {
		events, err := s.events.ListUserClockEvents(ctx, w.userID, from, now.Add(time.Nanosecond))
		if err != nil {
			return closed, clockOuts, resets, err
		}
		if n := len(events); n > 0 && events[n-1].Action == model.ActionClockIn {
			if err := s.events.Append(ctx, &model.AttendanceEvent{
				UserID:    w.userID,
				Timestamp: now.UTC(),
				Action:    model.ActionClockOut,
				Note:      "Automatic clock-out at shift end (7 AM)",
			}); err != nil {
				return closed, clockOuts, resets, err
			}
			clockOuts++
		}
	}

	for _, date := range w.resetDates {
		alloc, err := s.allocs.GetOrCreate(ctx, w.userID, date)
		if err != nil {
			return closed, clockOuts, resets, err
		}
		if alloc.Break1MinutesUsed == 0 && alloc.Break2MinutesUsed == 0 &&
			alloc.LunchMinutesUsed == 0 && alloc.Activity.None() {
			continue
		}
		alloc.Reset()
		if err := s.allocs.Save(ctx, alloc); err != nil {
			return closed, clockOuts, resets, err
		}
		resets++
	}
	return closed, clockOuts, resets, nil
}
