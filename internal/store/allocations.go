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

// AllocationStore holds the one mutable DailyAllocation record per
// (user, shift-day). Writes are last-write-wins full replacements.
type AllocationStore struct {
	allocations *mongo.Collection
}

func NewAllocationStore(ctx context.Context, db *MongoDB) (*AllocationStore, error) {
	allocations := db.Collection("daily_allocations")

	if _, err := allocations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create allocation indexes: %w", err)
	}

	return &AllocationStore{allocations: allocations}, nil
}

// GetOrCreate returns the allocation for (userID, date), inserting a zeroed
// record if none exists. The upsert plus the unique index guarantees
// concurrent creators cannot produce duplicate records for the same key.
func (s *AllocationStore) GetOrCreate(ctx context.Context, userID, date string) (*model.DailyAllocation, error) {
	now := time.Now().UTC()
	filter := bson.M{"user_id": userID, "date": date}
	update := bson.M{"$setOnInsert": bson.M{
		"user_id":             userID,
		"date":                date,
		"break1_minutes_used": 0,
		"break2_minutes_used": 0,
		"lunch_minutes_used":  0,
		"created_at":          now,
		"updated_at":          now,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var alloc model.DailyAllocation
	if err := s.allocations.FindOneAndUpdate(ctx, filter, update, opts).Decode(&alloc); err != nil {
		return nil, fmt.Errorf("get or create allocation: %w", err)
	}
	return &alloc, nil
}

// Save replaces the allocation's mutable fields, last write wins.
func (s *AllocationStore) Save(ctx context.Context, alloc *model.DailyAllocation) error {
	alloc.UpdatedAt = time.Now().UTC()
	_, err := s.allocations.ReplaceOne(ctx,
		bson.M{"user_id": alloc.UserID, "date": alloc.Date}, alloc)
	if err != nil {
		return fmt.Errorf("save allocation: %w", err)
	}
	return nil
}

// ListByDate returns all allocations for one shift-day.
func (s *AllocationStore) ListByDate(ctx context.Context, date string) ([]*model.DailyAllocation, error) {
	return s.list(ctx, bson.M{"date": date})
}

// ListWithActivity returns allocations on the given shift-days that have a
// break or lunch still in progress.
func (s *AllocationStore) ListWithActivity(ctx context.Context, dates []string) ([]*model.DailyAllocation, error) {
	return s.list(ctx, bson.M{
		"date":           bson.M{"$in": dates},
		"activity.since": bson.M{"$ne": nil},
	})
}

// ListAll returns every allocation, optionally filtered by user, for export.
func (s *AllocationStore) ListAll(ctx context.Context, userID string) ([]*model.DailyAllocation, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	return s.list(ctx, filter)
}

func (s *AllocationStore) list(ctx context.Context, filter bson.M) ([]*model.DailyAllocation, error) {
	sort := bson.D{{Key: "date", Value: 1}, {Key: "user_id", Value: 1}}
	cursor, err := s.allocations.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find allocations: %w", err)
	}
	var results []*model.DailyAllocation
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode allocations: %w", err)
	}
	return results, nil
}
