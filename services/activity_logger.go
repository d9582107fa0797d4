package services

import (
	"context"
	"fmt"
	"time"

	"hostel-complaint-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ActionComplaintCreated  = "complaint.created"
	ActionComplaintStatus   = "complaint.status_changed"
	ActionComplaintRejected = "complaint.rejected"
)

// ActivityLogger keeps an audit trail of lifecycle actions outside the main database.
type ActivityLogger interface {
	Record(ctx context.Context, entry models.ActivityLog) error
	ForComplaint(ctx context.Context, complaintID string) ([]models.ActivityLog, error)
}

type MongoActivityLogger struct {
	collection *mongo.Collection
}

func NewMongoActivityLogger(db *mongo.Database) *MongoActivityLogger {
	return &MongoActivityLogger{collection: db.Collection("complaint_activity")}
}

// EnsureIndexes creates the lookup index used by ForComplaint.
func (l *MongoActivityLogger) EnsureIndexes(ctx context.Context) error {
	_, err := l.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "complaint_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create activity index: %w", err)
	}
	return nil
}

func (l *MongoActivityLogger) Record(ctx context.Context, entry models.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := l.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

func (l *MongoActivityLogger) ForComplaint(ctx context.Context, complaintID string) ([]models.ActivityLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := l.collection.Find(ctx, bson.M{"complaint_id": complaintID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.ActivityLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode activity logs: %w", err)
	}
	return entries, nil
}

// NopActivityLogger discards entries when MongoDB is not configured.
type NopActivityLogger struct{}

func (NopActivityLogger) Record(context.Context, models.ActivityLog) error { return nil }

func (NopActivityLogger) ForComplaint(context.Context, string) ([]models.ActivityLog, error) {
	return nil, nil
}
