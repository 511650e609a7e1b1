package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/service"
)

// Tests run in UTC; the shift boundary rules only need a consistent location.
func newEngine() (*memEvents, *memAllocs, *service.AttendanceService) {
	events := &memEvents{}
	allocs := newMemAllocs()
	locks := service.NewUserLocks()
	resolver := service.NewResolver(events, allocs, time.UTC)
	svc := service.NewAttendanceService(events, allocs, resolver, locks, time.UTC)
	return events, allocs, svc
}

// shiftEvening is 22:00 on the test shift-day.
var shiftEvening = time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

const testUser = "u1"

func mustSubmit(t *testing.T, svc *service.AttendanceService, action model.Action, now time.Time) *model.ActionOutcome {
	t.Helper()
	out, err := svc.Submit(context.Background(), testUser, action, now, "")
	if err != nil {
		t.Fatalf("Submit(%s): %v", action, err)
	}
	return out
}

func TestClockInOnTime(t *testing.T) {
	events, _, svc := newEngine()

	out := mustSubmit(t, svc, model.ActionClockIn, shiftEvening.Add(-10*time.Minute))
	if out.Late || out.MinutesLate != 0 {
		t.Errorf("outcome = late %v (%d min), want on time", out.Late, out.MinutesLate)
	}
	if out.Level != model.OutcomeSuccess {
		t.Errorf("level = %s, want success", out.Level)
	}
	evs := events.byAction(testUser, model.ActionClockIn)
	if len(evs) != 1 {
		t.Fatalf("clock_in events = %d, want 1", len(evs))
	}
	if evs[0].Note != "" {
		t.Errorf("note = %q, want empty", evs[0].Note)
	}
}

func TestClockInLateAttachesNote(t *testing.T) {
	events, _, svc := newEngine()

	out := mustSubmit(t, svc, model.ActionClockIn, shiftEvening.Add(5*time.Minute))
	if !out.Late || out.MinutesLate != 5 {
		t.Errorf("outcome = late %v (%d min), want late by 5", out.Late, out.MinutesLate)
	}
	if out.Level != model.OutcomeWarning {
		t.Errorf("level = %s, want warning", out.Level)
	}
	evs := events.byAction(testUser, model.ActionClockIn)
	if len(evs) != 1 {
		t.Fatalf("clock_in events = %d, want 1", len(evs))
	}
	if evs[0].Note != "Late arrival: 5 minutes" {
		t.Errorf("note = %q, want %q", evs[0].Note, "Late arrival: 5 minutes")
	}
}

func TestClockInLateKeepsClientNote(t *testing.T) {
	events, _, svc := newEngine()

	_, err := svc.Submit(context.Background(), testUser, model.ActionClockIn, shiftEvening.Add(5*time.Minute), "bus delay")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	evs := events.byAction(testUser, model.ActionClockIn)
	if len(evs) != 1 {
		t.Fatalf("clock_in events = %d, want 1", len(evs))
	}
	want := "Late arrival: 5 minutes. bus delay"
	if evs[0].Note != want {
		t.Errorf("note = %q, want %q", evs[0].Note, want)
	}
}

func TestStartBreakRequiresClockIn(t *testing.T) {
	events, allocs, svc := newEngine()

	_, err := svc.Submit(context.Background(), testUser, model.ActionStartBreak1, shiftEvening, "")
	ve, ok := model.AsValidation(err)
	if !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Reason != model.RejectNotClockedIn {
		t.Errorf("reason = %s, want %s", ve.Reason, model.RejectNotClockedIn)
	}
	if len(events.byAction(testUser, model.ActionStartBreak1)) != 0 {
		t.Error("rejected action appended an event")
	}
	if a := allocs.stored(testUser, "2026-03-10"); a != nil && !a.Activity.None() {
		t.Error("rejected action mutated the allocation")
	}
}

func TestBreakRoundTrip(t *testing.T) {
	for _, k := range []int{0, 1, 14, 15, 16, 100} {
		t.Run(fmt.Sprintf("%d_minutes", k), func(t *testing.T) {
			events, allocs, svc := newEngine()
			mustSubmit(t, svc, model.ActionClockIn, shiftEvening)
			mustSubmit(t, svc, model.ActionStartBreak1, shiftEvening.Add(time.Hour))

			end := shiftEvening.Add(time.Hour + time.Duration(k)*time.Minute)
			out := mustSubmit(t, svc, model.ActionEndBreak1, end)
			if out.MinutesUsed != k {
				t.Errorf("minutes used = %d, want %d", out.MinutesUsed, k)
			}

			a := allocs.stored(testUser, "2026-03-10")
			if a.Break1MinutesUsed != k {
				t.Errorf("break1_minutes_used = %d, want %d", a.Break1MinutesUsed, k)
			}
			if !a.Activity.None() {
				t.Error("activity not cleared after end")
			}
			evs := events.byAction(testUser, model.ActionEndBreak1)
			if len(evs) != 1 {
				t.Fatalf("end_break1 events = %d, want 1", len(evs))
			}
			want := fmt.Sprintf("Duration: %d minutes", k)
			if evs[0].Note != want {
				t.Errorf("note = %q, want %q", evs[0].Note, want)
			}
		})
	}
}

func TestBreakExceededByFive(t *testing.T) {
	_, allocs, svc := newEngine()
	mustSubmit(t, svc, model.ActionClockIn, shiftEvening)
	mustSubmit(t, svc, model.ActionStartBreak1, shiftEvening.Add(time.Hour))

	out := mustSubmit(t, svc, model.ActionEndBreak1, shiftEvening.Add(time.Hour+20*time.Minute))
	if out.Level != model.OutcomeWarning {
		t.Errorf("level = %s, want warning", out.Level)
	}

	a := allocs.stored(testUser, "2026-03-10")
	if a.Break1MinutesUsed != 20 {
		t.Errorf("break1_minutes_used = %d, want 20", a.Break1MinutesUsed)
	}
	if !a.IsExceeded(model.CategoryBreak1) {
		t.Error("break1 not flagged exceeded")
	}
	if got := a.Exceeded(model.CategoryBreak1); got != 5 {
		t.Errorf("break1 exceeded = %d, want 5", got)
	}
	if got := a.Remaining(model.CategoryBreak1); got != 0 {
		t.Errorf("break1 remaining = %d, want 0", got)
	}
}

func TestStartLunchWhileOnBreakRejected(t *testing.T) {
	events, allocs, svc := newEngine()
	mustSubmit(t, svc, model.ActionClockIn, shiftEvening)
	mustSubmit(t, svc, model.ActionStartBreak1, shiftEvening.Add(time.Hour))

	_, err := svc.Submit(context.Background(), testUser, model.ActionStartLunch, shiftEvening.Add(61*time.Minute), "")
	ve, ok := model.AsValidation(err)
	if !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Reason != model.RejectAlreadyOngoing {
		t.Errorf("reason = %s, want %s", ve.Reason, model.RejectAlreadyOngoing)
	}

	a := allocs.stored(testUser, "2026-03-10")
	if a.Activity.Kind != model.CategoryBreak1 {
		t.Errorf("activity = %s, want break1 still ongoing", a.Activity.Kind)
	}
	if len(events.byAction(testUser, model.ActionStartLunch)) != 0 {
		t.Error("rejected start_lunch appended an event")
	}
}

func TestStartBreakAllowanceExhausted(t *testing.T) {
	_, allocs, svc := newEngine()
	mustSubmit(t, svc, model.ActionClockIn, shiftEvening)
	allocs.seed(&model.DailyAllocation{
		UserID: testUser, Date: "2026-03-10", Break1MinutesUsed: 15,
	})

	_, err := svc.Submit(context.Background(), testUser, model.ActionStartBreak1, shiftEvening.Add(time.Hour), "")
	ve, ok := model.AsValidation(err)
	if !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Reason != model.RejectAllowanceExhausted {
		t.Errorf("reason = %s, want %s", ve.Reason, model.RejectAllowanceExhausted)
	}
}

func TestEndWithoutActivity(t *testing.T) {
	_, _, svc := newEngine()
	mustSubmit(t, svc, model.ActionClockIn, shiftEvening)

	_, err := svc.Submit(context.Background(), testUser, model.ActionEndLunch, shiftEvening.Add(time.Hour), "")
	ve, ok := model.AsValidation(err)
	if !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if ve.Reason != model.RejectNoActivity {
		t.Errorf("reason = %s, want %s", ve.Reason, model.RejectNoActivity)
	}
}

func TestNegativeElapsedClampsToZero(t *testing.T) {
	_, allocs, svc := newEngine()
	mustSubmit(t, svc, model.ActionClockIn, shiftEvening)
	mustSubmit(t, svc, model.ActionStartLunch, shiftEvening.Add(time.Hour))

	// System clock stepped backwards between start and end.
	out := mustSubmit(t, svc, model.ActionEndLunch, shiftEvening.Add(55*time.Minute))
	if out.MinutesUsed != 0 {
		t.Errorf("minutes used = %d, want 0", out.MinutesUsed)
	}
	a := allocs.stored(testUser, "2026-03-10")
	if a.LunchMinutesUsed != 0 {
		t.Errorf("lunch_minutes_used = %d, want 0", a.LunchMinutesUsed)
	}
}

func TestBreak2IndependentOfBreak1(t *testing.T) {
	_, allocs, svc := newEngine()
	mustSubmit(t, svc, model.ActionClockIn, shiftEvening)
	mustSubmit(t, svc, model.ActionStartBreak1, shiftEvening.Add(30*time.Minute))
	mustSubmit(t, svc, model.ActionEndBreak1, shiftEvening.Add(45*time.Minute))
	mustSubmit(t, svc, model.ActionStartBreak2, shiftEvening.Add(2*time.Hour))
	mustSubmit(t, svc, model.ActionEndBreak2, shiftEvening.Add(2*time.Hour+10*time.Minute))

	a := allocs.stored(testUser, "2026-03-10")
	if a.Break1MinutesUsed != 15 || a.Break2MinutesUsed != 10 {
		t.Errorf("used = (%d, %d), want (15, 10)", a.Break1MinutesUsed, a.Break2MinutesUsed)
	}
}
