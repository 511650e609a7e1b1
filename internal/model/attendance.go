package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Action is a discrete attendance action recorded in the event log.
type Action string

const (
	ActionClockIn     Action = "clock_in"
	ActionClockOut    Action = "clock_out"
	ActionStartBreak1 Action = "start_break1"
	ActionEndBreak1   Action = "end_break1"
	ActionStartBreak2 Action = "start_break2"
	ActionEndBreak2   Action = "end_break2"
	ActionStartLunch  Action = "start_lunch"
	ActionEndLunch    Action = "end_lunch"
)

// ParseAction validates a raw action string.
func ParseAction(raw string) (Action, bool) {
	switch a := Action(raw); a {
	case ActionClockIn, ActionClockOut,
		ActionStartBreak1, ActionEndBreak1,
		ActionStartBreak2, ActionEndBreak2,
		ActionStartLunch, ActionEndLunch:
		return a, true
	}
	return "", false
}

// AttendanceEvent is one immutable entry in the append-only event log.
// Events are ordered by timestamp; the ObjectID breaks timestamp ties in
// insertion order.
type AttendanceEvent struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string        `bson:"user_id" json:"user_id"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
	Action    Action        `bson:"action" json:"action"`
	Note      string        `bson:"note,omitempty" json:"note,omitempty"`
}

// Category is a time-budget pool: two 15-minute breaks and a 60-minute lunch.
type Category string

const (
	CategoryBreak1 Category = "break1"
	CategoryBreak2 Category = "break2"
	CategoryLunch  Category = "lunch"
)

// Cap returns the daily minute budget for the category.
func (c Category) Cap() int {
	switch c {
	case CategoryBreak1, CategoryBreak2:
		return 15
	case CategoryLunch:
		return 60
	}
	return 0
}

// StartAction returns the action that opens this category.
func (c Category) StartAction() Action {
	switch c {
	case CategoryBreak1:
		return ActionStartBreak1
	case CategoryBreak2:
		return ActionStartBreak2
	case CategoryLunch:
		return ActionStartLunch
	}
	return ""
}

// EndAction returns the action that closes this category.
func (c Category) EndAction() Action {
	switch c {
	case CategoryBreak1:
		return ActionEndBreak1
	case CategoryBreak2:
		return ActionEndBreak2
	case CategoryLunch:
		return ActionEndLunch
	}
	return ""
}

// Label is the human-readable category name used in notes and messages.
func (c Category) Label() string {
	switch c {
	case CategoryBreak1:
		return "break 1"
	case CategoryBreak2:
		return "break 2"
	case CategoryLunch:
		return "lunch"
	}
	return string(c)
}

// Categories lists all pools in display order.
func Categories() []Category {
	return []Category{CategoryBreak1, CategoryBreak2, CategoryLunch}
}

// Activity is the tagged in-progress state for a shift-day. An empty Kind
// means no break or lunch is running; otherwise Since records when it
// started. A single tagged field makes the mutual exclusion of concurrent
// breaks/lunches structural rather than convention-enforced.
type Activity struct {
	Kind  Category   `bson:"kind,omitempty" json:"kind,omitempty"`
	Since *time.Time `bson:"since,omitempty" json:"since,omitempty"`
}

// None reports whether no activity is in progress.
func (a Activity) None() bool { return a.Kind == "" }

// DailyAllocation tracks consumed break/lunch minutes for one user on one
// shift-day. Unique per (user_id, date); created zeroed on first access.
type DailyAllocation struct {
	ID                bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            string        `bson:"user_id" json:"user_id"`
	Date              string        `bson:"date" json:"date"` // shift-day, YYYY-MM-DD
	Break1MinutesUsed int           `bson:"break1_minutes_used" json:"break1_minutes_used"`
	Break2MinutesUsed int           `bson:"break2_minutes_used" json:"break2_minutes_used"`
	LunchMinutesUsed  int           `bson:"lunch_minutes_used" json:"lunch_minutes_used"`
	Activity          Activity      `bson:"activity,omitempty" json:"activity,omitempty"`
	CreatedAt         time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at" json:"updated_at"`
}

// MinutesUsed returns the consumed minutes for a category.
func (d *DailyAllocation) MinutesUsed(c Category) int {
	switch c {
	case CategoryBreak1:
		return d.Break1MinutesUsed
	case CategoryBreak2:
		return d.Break2MinutesUsed
	case CategoryLunch:
		return d.LunchMinutesUsed
	}
	return 0
}

// AddMinutes increments the consumed minutes for a category.
func (d *DailyAllocation) AddMinutes(c Category, minutes int) {
	switch c {
	case CategoryBreak1:
		d.Break1MinutesUsed += minutes
	case CategoryBreak2:
		d.Break2MinutesUsed += minutes
	case CategoryLunch:
		d.LunchMinutesUsed += minutes
	}
}

// Remaining returns the minutes left in the category's budget, never negative.
func (d *DailyAllocation) Remaining(c Category) int {
	if r := c.Cap() - d.MinutesUsed(c); r > 0 {
		return r
	}
	return 0
}

// Exceeded returns the minutes used beyond the category's budget, never negative.
func (d *DailyAllocation) Exceeded(c Category) int {
	if e := d.MinutesUsed(c) - c.Cap(); e > 0 {
		return e
	}
	return 0
}

// IsExceeded reports whether the category's budget has been overrun.
func (d *DailyAllocation) IsExceeded(c Category) bool {
	return d.MinutesUsed(c) > c.Cap()
}

// Ongoing reports whether the given category is currently in progress.
func (d *DailyAllocation) Ongoing(c Category) bool {
	return d.Activity.Kind == c && d.Activity.Since != nil
}

// StartActivity opens a category at the given instant.
func (d *DailyAllocation) StartActivity(c Category, at time.Time) {
	d.Activity = Activity{Kind: c, Since: &at}
}

// ClearActivity closes whatever activity is in progress.
func (d *DailyAllocation) ClearActivity() {
	d.Activity = Activity{}
}

// Reset zeroes all consumed minutes and clears any in-progress activity.
// Only the rollover job calls this.
func (d *DailyAllocation) Reset() {
	d.Break1MinutesUsed = 0
	d.Break2MinutesUsed = 0
	d.LunchMinutesUsed = 0
	d.Activity = Activity{}
}
