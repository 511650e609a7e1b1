// Package service holds the attendance engine: status resolution, the action
// state machine, the shift-end rollover job, and export row derivation.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
)

// EventLog is the append-only store of attendance events the engine consumes.
type EventLog interface {
	Append(ctx context.Context, ev *model.AttendanceEvent) error
	ListUser(ctx context.Context, userID string, from, to time.Time) ([]*model.AttendanceEvent, error)
	ListUserClockEvents(ctx context.Context, userID string, from, to time.Time) ([]*model.AttendanceEvent, error)
	ListClockEvents(ctx context.Context, from, to time.Time) ([]*model.AttendanceEvent, error)
	ListAll(ctx context.Context, userID string) ([]*model.AttendanceEvent, error)
}

// Allocations is the per-(user, shift-day) budget store.
type Allocations interface {
	GetOrCreate(ctx context.Context, userID, date string) (*model.DailyAllocation, error)
	Save(ctx context.Context, alloc *model.DailyAllocation) error
	ListByDate(ctx context.Context, date string) ([]*model.DailyAllocation, error)
	ListWithActivity(ctx context.Context, dates []string) ([]*model.DailyAllocation, error)
	ListAll(ctx context.Context, userID string) ([]*model.DailyAllocation, error)
}

// UserLocks serializes writes per user. The action processor and the rollover
// job share one instance so a rollover never races a user-initiated action on
// the same allocation record.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*sync.Mutex)}
}

func (u *UserLocks) lockFor(userID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	l, ok := u.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		u.locks[userID] = l
	}
	return l
}

// Lock acquires the per-user lock and returns its unlock function.
func (u *UserLocks) Lock(userID string) func() {
	l := u.lockFor(userID)
	l.Lock()
	return l.Unlock
}
