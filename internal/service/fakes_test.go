package service_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
)

// memEvents is an in-memory append-only event log. Slice order is insertion
// order; listings sort by timestamp with a stable sort so ties keep insertion
// order, matching the store's (timestamp, _id) ordering.
type memEvents struct {
	events []*model.AttendanceEvent
}

func (m *memEvents) Append(_ context.Context, ev *model.AttendanceEvent) error {
	cp := *ev
	cp.ID = bson.NewObjectID()
	ev.ID = cp.ID
	m.events = append(m.events, &cp)
	return nil
}

func (m *memEvents) list(filter func(*model.AttendanceEvent) bool) []*model.AttendanceEvent {
	var out []*model.AttendanceEvent
	for _, ev := range m.events {
		if filter(ev) {
			cp := *ev
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func isClock(a model.Action) bool {
	return a == model.ActionClockIn || a == model.ActionClockOut
}

func inRange(ev *model.AttendanceEvent, from, to time.Time) bool {
	return !ev.Timestamp.Before(from) && ev.Timestamp.Before(to)
}

func (m *memEvents) ListUser(_ context.Context, userID string, from, to time.Time) ([]*model.AttendanceEvent, error) {
	return m.list(func(ev *model.AttendanceEvent) bool {
		return ev.UserID == userID && inRange(ev, from, to)
	}), nil
}

func (m *memEvents) ListUserClockEvents(_ context.Context, userID string, from, to time.Time) ([]*model.AttendanceEvent, error) {
	return m.list(func(ev *model.AttendanceEvent) bool {
		return ev.UserID == userID && isClock(ev.Action) && inRange(ev, from, to)
	}), nil
}

func (m *memEvents) ListClockEvents(_ context.Context, from, to time.Time) ([]*model.AttendanceEvent, error) {
	return m.list(func(ev *model.AttendanceEvent) bool {
		return isClock(ev.Action) && inRange(ev, from, to)
	}), nil
}

func (m *memEvents) ListAll(_ context.Context, userID string) ([]*model.AttendanceEvent, error) {
	return m.list(func(ev *model.AttendanceEvent) bool {
		return userID == "" || ev.UserID == userID
	}), nil
}

// byUserAction counts events for assertions.
func (m *memEvents) byAction(userID string, action model.Action) []*model.AttendanceEvent {
	return m.list(func(ev *model.AttendanceEvent) bool {
		return ev.UserID == userID && ev.Action == action
	})
}

// memAllocs is an in-memory allocation store. Reads and writes copy, so a
// caller's in-flight struct never aliases stored state (same as a database).
type memAllocs struct {
	m map[string]*model.DailyAllocation
}

func newMemAllocs() *memAllocs {
	return &memAllocs{m: make(map[string]*model.DailyAllocation)}
}

func key(userID, date string) string { return userID + "|" + date }

func (m *memAllocs) GetOrCreate(_ context.Context, userID, date string) (*model.DailyAllocation, error) {
	if a, ok := m.m[key(userID, date)]; ok {
		cp := *a
		return &cp, nil
	}
	a := &model.DailyAllocation{UserID: userID, Date: date}
	m.m[key(userID, date)] = a
	cp := *a
	return &cp, nil
}

func (m *memAllocs) Save(_ context.Context, alloc *model.DailyAllocation) error {
	if _, ok := m.m[key(alloc.UserID, alloc.Date)]; !ok {
		return fmt.Errorf("save allocation: no record for %s/%s", alloc.UserID, alloc.Date)
	}
	cp := *alloc
	m.m[key(alloc.UserID, alloc.Date)] = &cp
	return nil
}

func (m *memAllocs) ListByDate(_ context.Context, date string) ([]*model.DailyAllocation, error) {
	var out []*model.DailyAllocation
	for _, a := range m.m {
		if a.Date == date {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAllocs) ListWithActivity(_ context.Context, dates []string) ([]*model.DailyAllocation, error) {
	want := make(map[string]bool, len(dates))
	for _, d := range dates {
		want[d] = true
	}
	var out []*model.DailyAllocation
	for _, a := range m.m {
		if want[a.Date] && a.Activity.Since != nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAllocs) ListAll(_ context.Context, userID string) ([]*model.DailyAllocation, error) {
	var out []*model.DailyAllocation
	for _, a := range m.m {
		if userID == "" || a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// stored returns the stored record for direct assertions.
func (m *memAllocs) stored(userID, date string) *model.DailyAllocation {
	return m.m[key(userID, date)]
}

// seed installs a record directly.
func (m *memAllocs) seed(a *model.DailyAllocation) {
	cp := *a
	m.m[key(a.UserID, a.Date)] = &cp
}
