package model

import "time"

// Status is the derived current state of a worker.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusWorking  Status = "working"
	StatusOnBreak1 Status = "on_break1"
	StatusOnBreak2 Status = "on_break2"
	StatusAtLunch  Status = "at_lunch"
	StatusOffDuty  Status = "off_duty"
)

// CategorySnapshot carries the derived budget figures for one category.
type CategorySnapshot struct {
	MinutesUsed      int  `json:"minutes_used"`
	MinutesRemaining int  `json:"minutes_remaining"`
	MinutesExceeded  int  `json:"minutes_exceeded"`
	Exceeded         bool `json:"exceeded"`
	Ongoing          bool `json:"ongoing"`
}

// StatusSnapshot is the read-only view of a worker on one shift-day.
type StatusSnapshot struct {
	UserID                string                        `json:"user_id"`
	Date                  string                        `json:"date"` // shift-day, YYYY-MM-DD
	CurrentStatus         Status                        `json:"current_status"`
	IsClockedIn           bool                          `json:"is_clocked_in"`
	CanPerformClockAction bool                          `json:"can_perform_clock_actions"`
	Categories            map[Category]CategorySnapshot `json:"categories"`
	ActivitySince         *time.Time                    `json:"activity_since,omitempty"`
}

// Ongoing reports whether the snapshot shows the category in progress.
func (s *StatusSnapshot) Ongoing(c Category) bool {
	return s.Categories[c].Ongoing
}

// OutcomeLevel classifies an accepted action's feedback.
type OutcomeLevel string

const (
	OutcomeSuccess OutcomeLevel = "success"
	OutcomeWarning OutcomeLevel = "warning"
)

// ActionOutcome is the result of a successfully applied action.
type ActionOutcome struct {
	Action      Action       `json:"action"`
	Level       OutcomeLevel `json:"level"`
	Message     string       `json:"message"`
	Late        bool         `json:"late,omitempty"`
	MinutesLate int          `json:"minutes_late,omitempty"`
	MinutesUsed int          `json:"minutes_used,omitempty"`
}

// RolloverSummary reports what one rollover run did.
type RolloverSummary struct {
	Ran              bool      `json:"ran"`
	At               time.Time `json:"at"`
	Date             string    `json:"date"` // shift-day the run opened, YYYY-MM-DD
	ActivitiesClosed int       `json:"activities_closed"`
	AutoClockOuts    int       `json:"auto_clock_outs"`
	AllocationsReset int       `json:"allocations_reset"`
	Errors           int       `json:"errors"`
}
