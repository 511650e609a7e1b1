package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/i18n"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/shiftclock"
)

// AttendanceService validates and applies attendance actions. Each submission
// is one read-validate-write cycle, serialized per user.
type AttendanceService struct {
	events   EventLog
	allocs   Allocations
	resolver *Resolver
	locks    *UserLocks
	loc      *time.Location
}

func NewAttendanceService(events EventLog, allocs Allocations, resolver *Resolver, locks *UserLocks, loc *time.Location) *AttendanceService {
	return &AttendanceService{
		events:   events,
		allocs:   allocs,
		resolver: resolver,
		locks:    locks,
		loc:      loc,
	}
}

// Submit applies one action as of the given instant. Policy rejections come
// back as *model.ValidationError and leave no trace in the stores; any other
// error is a storage failure and the whole action must be retried.
func (s *AttendanceService) Submit(ctx context.Context, userID string, action model.Action, now time.Time, clientNote string) (*model.ActionOutcome, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	date := shiftclock.ShiftDayOf(now, s.loc)

	switch action {
	case model.ActionClockIn:
		return s.clockIn(ctx, userID, now, clientNote)
	case model.ActionClockOut:
		return s.clockOut(ctx, userID, now, clientNote)
	case model.ActionStartBreak1:
		return s.startActivity(ctx, userID, date, model.CategoryBreak1, now)
	case model.ActionStartBreak2:
		return s.startActivity(ctx, userID, date, model.CategoryBreak2, now)
	case model.ActionStartLunch:
		return s.startActivity(ctx, userID, date, model.CategoryLunch, now)
	case model.ActionEndBreak1:
		return s.endActivity(ctx, userID, date, model.CategoryBreak1, now)
	case model.ActionEndBreak2:
		return s.endActivity(ctx, userID, date, model.CategoryBreak2, now)
	case model.ActionEndLunch:
		return s.endActivity(ctx, userID, date, model.CategoryLunch, now)
	}
	return nil, &model.ValidationError{
		Reason:  model.RejectUnknownAction,
		Message: i18n.T(ctx, "err.unknown_action", map[string]any{"Action": string(action)}),
	}
}

// clockIn is always allowed. A clock-in after the 22:00 shift start records a
// lateness note on the event and surfaces a warning.
func (s *AttendanceService) clockIn(ctx context.Context, userID string, now time.Time, clientNote string) (*model.ActionOutcome, error) {
	late, minutes := shiftclock.Lateness(now, s.loc)

	note := clientNote
	if late {
		note = fmt.Sprintf("Late arrival: %d minutes", minutes)
		if clientNote != "" {
			note += ". " + clientNote
		}
	}
	if err := s.events.Append(ctx, &model.AttendanceEvent{
		UserID:    userID,
		Timestamp: now.UTC(),
		Action:    model.ActionClockIn,
		Note:      note,
	}); err != nil {
		return nil, err
	}

	out := &model.ActionOutcome{
		Action:  model.ActionClockIn,
		Level:   model.OutcomeSuccess,
		Message: i18n.T(ctx, "clock_in.success"),
	}
	if late {
		out.Level = model.OutcomeWarning
		out.Late = true
		out.MinutesLate = minutes
		out.Message = i18n.T(ctx, "clock_in.late", map[string]any{"Minutes": minutes})
	}
	return out, nil
}

// clockOut is always allowed.
func (s *AttendanceService) clockOut(ctx context.Context, userID string, now time.Time, clientNote string) (*model.ActionOutcome, error) {
	if err := s.events.Append(ctx, &model.AttendanceEvent{
		UserID:    userID,
		Timestamp: now.UTC(),
		Action:    model.ActionClockOut,
		Note:      clientNote,
	}); err != nil {
		return nil, err
	}
	return &model.ActionOutcome{
		Action:  model.ActionClockOut,
		Level:   model.OutcomeSuccess,
		Message: i18n.T(ctx, "clock_out.success"),
	}, nil
}

func (s *AttendanceService) startActivity(ctx context.Context, userID, date string, cat model.Category, now time.Time) (*model.ActionOutcome, error) {
	snap, err := s.resolver.Snapshot(ctx, userID, date, now)
	if err != nil {
		return nil, err
	}
	if !snap.IsClockedIn {
		return nil, &model.ValidationError{
			Reason:  model.RejectNotClockedIn,
			Message: i18n.T(ctx, "err.not_clocked_in"),
		}
	}

	alloc, err := s.allocs.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !alloc.Activity.None() {
		return nil, &model.ValidationError{
			Reason: model.RejectAlreadyOngoing,
			Message: i18n.T(ctx, "err.already_ongoing", map[string]any{
				"Activity": alloc.Activity.Kind.Label(),
			}),
		}
	}
	if alloc.Remaining(cat) == 0 {
		return nil, &model.ValidationError{
			Reason: model.RejectAllowanceExhausted,
			Message: i18n.T(ctx, "err.allowance_exhausted", map[string]any{
				"Activity": cat.Label(),
			}),
		}
	}

	alloc.StartActivity(cat, now.UTC())
	if err := s.allocs.Save(ctx, alloc); err != nil {
		return nil, err
	}
	if err := s.events.Append(ctx, &model.AttendanceEvent{
		UserID:    userID,
		Timestamp: now.UTC(),
		Action:    cat.StartAction(),
	}); err != nil {
		return nil, err
	}

	return &model.ActionOutcome{
		Action: cat.StartAction(),
		Level:  model.OutcomeSuccess,
		Message: i18n.T(ctx, "start.success", map[string]any{
			"Activity":  cat.Label(),
			"Remaining": alloc.Remaining(cat),
		}),
	}, nil
}

func (s *AttendanceService) endActivity(ctx context.Context, userID, date string, cat model.Category, now time.Time) (*model.ActionOutcome, error) {
	alloc, err := s.allocs.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !alloc.Ongoing(cat) {
		return nil, &model.ValidationError{
			Reason: model.RejectNoActivity,
			Message: i18n.T(ctx, "err.no_activity", map[string]any{
				"Activity": cat.Label(),
			}),
		}
	}

	minutes := shiftclock.ElapsedMinutes(*alloc.Activity.Since, now)
	alloc.AddMinutes(cat, minutes)
	alloc.ClearActivity()
	if err := s.allocs.Save(ctx, alloc); err != nil {
		return nil, err
	}
	if err := s.events.Append(ctx, &model.AttendanceEvent{
		UserID:    userID,
		Timestamp: now.UTC(),
		Action:    cat.EndAction(),
		Note:      fmt.Sprintf("Duration: %d minutes", minutes),
	}); err != nil {
		return nil, err
	}

	out := &model.ActionOutcome{
		Action:      cat.EndAction(),
		Level:       model.OutcomeSuccess,
		MinutesUsed: minutes,
	}
	if alloc.IsExceeded(cat) {
		out.Level = model.OutcomeWarning
		out.Message = i18n.T(ctx, "end.exceeded", map[string]any{
			"Activity": cat.Label(),
			"Minutes":  minutes,
			"Exceeded": alloc.Exceeded(cat),
		})
	} else {
		out.Message = i18n.T(ctx, "end.success", map[string]any{
			"Activity":  cat.Label(),
			"Minutes":   minutes,
			"Remaining": alloc.Remaining(cat),
		})
	}
	return out, nil
}
