package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/shiftclock"
)

// ExportRow is one event enriched with the budget figures as they stood right
// after that event, recomputed with the same formulas the engine applies.
type ExportRow struct {
	UserID    string
	Date      string // shift-day
	Timestamp time.Time
	LocalTime string // hh:mm AM/PM in the configured timezone
	Action    model.Action
	Note      string
	Remaining map[model.Category]int
	Exceeded  map[model.Category]int
}

// Exporter produces read-only rows for CSV/report collaborators. It replays
// the event log per user so exported figures can never drift from the
// engine's accounting.
type Exporter struct {
	events EventLog
	loc    *time.Location
}

func NewExporter(events EventLog, loc *time.Location) *Exporter {
	return &Exporter{events: events, loc: loc}
}

// Rows returns export rows ordered by timestamp. An empty userID exports
// every user.
func (e *Exporter) Rows(ctx context.Context, userID string) ([]ExportRow, error) {
	events, err := e.events.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	type replay struct {
		date string
		used map[model.Category]int
		open map[model.Category]time.Time
	}
	state := make(map[string]*replay)

	rows := make([]ExportRow, 0, len(events))
	for _, ev := range events {
		day := shiftclock.ShiftDayOf(ev.Timestamp, e.loc)

		st, ok := state[ev.UserID]
		if !ok || st.date != day {
			st = &replay{
				date: day,
				used: make(map[model.Category]int),
				open: make(map[model.Category]time.Time),
			}
			state[ev.UserID] = st
		}

		switch ev.Action {
		case model.ActionStartBreak1:
			st.open[model.CategoryBreak1] = ev.Timestamp
		case model.ActionStartBreak2:
			st.open[model.CategoryBreak2] = ev.Timestamp
		case model.ActionStartLunch:
			st.open[model.CategoryLunch] = ev.Timestamp
		case model.ActionEndBreak1:
			closeCategory(st.used, st.open, model.CategoryBreak1, ev.Timestamp)
		case model.ActionEndBreak2:
			closeCategory(st.used, st.open, model.CategoryBreak2, ev.Timestamp)
		case model.ActionEndLunch:
			closeCategory(st.used, st.open, model.CategoryLunch, ev.Timestamp)
		}

		row := ExportRow{
			UserID:    ev.UserID,
			Date:      day,
			Timestamp: ev.Timestamp,
			LocalTime: ev.Timestamp.In(e.loc).Format("03:04 PM"),
			Action:    ev.Action,
			Note:      ev.Note,
			Remaining: make(map[model.Category]int, 3),
			Exceeded:  make(map[model.Category]int, 3),
		}
		for _, c := range model.Categories() {
			row.Remaining[c] = remaining(c, st.used[c])
			row.Exceeded[c] = exceeded(c, st.used[c])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func closeCategory(used map[model.Category]int, open map[model.Category]time.Time, c model.Category, at time.Time) {
	start, ok := open[c]
	if !ok {
		return
	}
	used[c] += shiftclock.ElapsedMinutes(start, at)
	delete(open, c)
}

func remaining(c model.Category, used int) int {
	if r := c.Cap() - used; r > 0 {
		return r
	}
	return 0
}

func exceeded(c model.Category, used int) int {
	if e := used - c.Cap(); e > 0 {
		return e
	}
	return 0
}
