package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
)

// eventSort orders events by timestamp, ties broken by insertion order
// (ObjectIDs are monotonic per inserting process).
var eventSort = bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}

// EventStore is the append-only attendance event log. No update or delete is
// exposed; administrative purges happen outside the core.
type EventStore struct {
	events *mongo.Collection
}

func NewEventStore(ctx context.Context, db *MongoDB) (*EventStore, error) {
	events := db.Collection("attendance_events")

	if _, err := events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create event indexes: %w", err)
	}

	return &EventStore{events: events}, nil
}

// Append inserts a new event and sets the generated ID on the struct.
func (s *EventStore) Append(ctx context.Context, ev *model.AttendanceEvent) error {
	res, err := s.events.InsertOne(ctx, ev)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	ev.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// ListUser returns a user's events with timestamps in [from, to), ascending.
func (s *EventStore) ListUser(ctx context.Context, userID string, from, to time.Time) ([]*model.AttendanceEvent, error) {
	return s.list(ctx, bson.M{
		"user_id":   userID,
		"timestamp": bson.M{"$gte": from, "$lt": to},
	})
}

// ListUserClockEvents returns only clock_in/clock_out events for a user in
// [from, to), ascending. The status resolver uses this to decide whether a
// shift is still open.
func (s *EventStore) ListUserClockEvents(ctx context.Context, userID string, from, to time.Time) ([]*model.AttendanceEvent, error) {
	return s.list(ctx, bson.M{
		"user_id":   userID,
		"timestamp": bson.M{"$gte": from, "$lt": to},
		"action":    bson.M{"$in": []model.Action{model.ActionClockIn, model.ActionClockOut}},
	})
}

// ListClockEvents returns clock_in/clock_out events for all users in
// [from, to), ascending. The rollover job uses this to find open shifts.
func (s *EventStore) ListClockEvents(ctx context.Context, from, to time.Time) ([]*model.AttendanceEvent, error) {
	return s.list(ctx, bson.M{
		"timestamp": bson.M{"$gte": from, "$lt": to},
		"action":    bson.M{"$in": []model.Action{model.ActionClockIn, model.ActionClockOut}},
	})
}

// ListAll returns every event, optionally filtered by user, ascending.
// Export collaborators consume this.
func (s *EventStore) ListAll(ctx context.Context, userID string) ([]*model.AttendanceEvent, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	return s.list(ctx, filter)
}

func (s *EventStore) list(ctx context.Context, filter bson.M) ([]*model.AttendanceEvent, error) {
	cursor, err := s.events.Find(ctx, filter, options.Find().SetSort(eventSort))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	var results []*model.AttendanceEvent
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return results, nil
}
