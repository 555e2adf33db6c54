package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"leadflow/internal/database"
	"leadflow/internal/models"
)

// ActivityService handles the per-lead audit trail with MongoDB
type ActivityService struct {
	db         *database.MongoDB
	collection *mongo.Collection
}

// NewActivityService creates a new activity service
func NewActivityService(db *database.MongoDB) *ActivityService {
	return &ActivityService{
		db:         db,
		collection: db.Collection(database.CollectionActivities),
	}
}

// Append records a new activity for a lead
func (s *ActivityService) Append(ctx context.Context, leadID primitive.ObjectID, activityType, action string, grokGenerated bool, details bson.M) (*models.Activity, error) {
	activity := &models.Activity{
		LeadID:        leadID,
		Type:          activityType,
		Action:        action,
		GrokGenerated: grokGenerated,
		Details:       details,
		CreatedAt:     time.Now(),
	}

	result, err := s.collection.InsertOne(ctx, activity)
	if err != nil {
		return nil, fmt.Errorf("failed to append activity: %w", err)
	}
	activity.ID = result.InsertedID.(primitive.ObjectID)

	return activity, nil
}

// ListByLead returns a lead's activities, most recent first
func (s *ActivityService) ListByLead(ctx context.Context, leadID primitive.ObjectID) ([]models.Activity, error) {
	return s.list(ctx, bson.M{"leadId": leadID}, 0)
}

// ListMessages returns a lead's model-generated outreach messages, most recent first
func (s *ActivityService) ListMessages(ctx context.Context, leadID primitive.ObjectID) ([]models.Activity, error) {
	filter := bson.M{
		"leadId":        leadID,
		"type":          models.ActivityTypeNotification,
		"grokGenerated": true,
	}
	return s.list(ctx, filter, 0)
}

// ListRecent returns the newest activities across all leads
func (s *ActivityService) ListRecent(ctx context.Context, limit int64) ([]models.Activity, error) {
	return s.list(ctx, bson.M{}, limit)
}

func (s *ActivityService) list(ctx context.Context, filter bson.M, limit int64) ([]models.Activity, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer cursor.Close(ctx)

	activities := []models.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

// DeleteByLead removes all activities belonging to a lead. Called when the
// lead itself is deleted so the trail cascades with it.
func (s *ActivityService) DeleteByLead(ctx context.Context, leadID primitive.ObjectID) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"leadId": leadID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete activities: %w", err)
	}
	return result.DeletedCount, nil
}

// Count returns the number of activities matching the filter
func (s *ActivityService) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}
