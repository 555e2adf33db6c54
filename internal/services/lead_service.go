package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"leadflow/internal/database"
	"leadflow/internal/models"
)

// ErrLeadNotFound is returned when a lead ID matches no document
var ErrLeadNotFound = errors.New("lead not found")

// LeadService handles lead persistence with MongoDB
type LeadService struct {
	db         *database.MongoDB
	collection *mongo.Collection
}

// NewLeadService creates a new lead service
func NewLeadService(db *database.MongoDB) *LeadService {
	return &LeadService{
		db:         db,
		collection: db.Collection(database.CollectionLeads),
	}
}

// Create inserts a new lead with pipeline defaults applied
func (s *LeadService) Create(ctx context.Context, req *models.CreateLeadRequest) (*models.Lead, error) {
	now := time.Now()
	lead := &models.Lead{
		Company:   req.Company,
		Contact:   req.Contact,
		Email:     req.Email,
		Value:     req.Value,
		Phone:     req.Phone,
		Industry:  req.Industry,
		Employees: req.Employees,
		Website:   req.Website,
		Location:  req.Location,
		JobTitle:  req.JobTitle,
		LinkedIn:  req.LinkedIn,
		Notes:     req.Notes,
		Tags:      req.Tags,
		Stage:     models.StageNew,
		Score:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.collection.InsertOne(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	lead.ID = result.InsertedID.(primitive.ObjectID)

	return lead, nil
}

// GetByID retrieves a lead by its hex ID
func (s *LeadService) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrLeadNotFound
	}

	var lead models.Lead
	err = s.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&lead)
	if err == mongo.ErrNoDocuments {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// List returns leads sorted by most recently updated, optionally filtered by stage
func (s *LeadService) List(ctx context.Context, stage models.Stage) ([]*models.Lead, error) {
	filter := bson.M{}
	if stage != "" {
		filter["stage"] = stage
	}

	opts := options.Find().SetSort(bson.M{"updatedAt": -1})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer cursor.Close(ctx)

	leads := []*models.Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	return leads, nil
}

// Update applies a partial update and returns the updated lead
func (s *LeadService) Update(ctx context.Context, id string, req *models.UpdateLeadRequest) (*models.Lead, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrLeadNotFound
	}

	updateFields := bson.M{"updatedAt": time.Now()}
	if req.Company != nil {
		updateFields["company"] = *req.Company
	}
	if req.Contact != nil {
		updateFields["contact"] = *req.Contact
	}
	if req.Email != nil {
		updateFields["email"] = *req.Email
	}
	if req.Value != nil {
		updateFields["value"] = *req.Value
	}
	if req.Phone != nil {
		updateFields["phone"] = *req.Phone
	}
	if req.Industry != nil {
		updateFields["industry"] = *req.Industry
	}
	if req.Employees != nil {
		updateFields["employees"] = *req.Employees
	}
	if req.Website != nil {
		updateFields["website"] = *req.Website
	}
	if req.Location != nil {
		updateFields["location"] = *req.Location
	}
	if req.JobTitle != nil {
		updateFields["jobTitle"] = *req.JobTitle
	}
	if req.LinkedIn != nil {
		updateFields["linkedin"] = *req.LinkedIn
	}
	if req.Notes != nil {
		updateFields["notes"] = *req.Notes
	}
	if req.Tags != nil {
		updateFields["tags"] = *req.Tags
	}
	if req.Stage != nil {
		updateFields["stage"] = *req.Stage
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var lead models.Lead
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": updateFields}, opts).Decode(&lead)
	if err == mongo.ErrNoDocuments {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return &lead, nil
}

// Delete removes a lead. Activity cascade is the caller's responsibility
// (Mongo has no foreign keys).
func (s *LeadService) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrLeadNotFound
	}

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// ApplyQualification overwrites score, stage, and insights with a successful
// verdict. Failed verdicts must never reach this method; the prior values
// stay authoritative until a new success lands.
func (s *LeadService) ApplyQualification(ctx context.Context, id primitive.ObjectID, score int, stage models.Stage, insights []string) error {
	update := bson.M{
		"$set": bson.M{
			"score":     score,
			"stage":     stage,
			"insights":  insights,
			"updatedAt": time.Now(),
		},
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to apply qualification: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// MarkNotificationSent flags a lead as having an outreach message drafted
func (s *LeadService) MarkNotificationSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"notificationSent": true,
			"lastContact":      now,
			"updatedAt":        now,
		},
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// MarkResponseReceived records an inbound reply: the lead moves to the
// engaged stage and responseReceived is set.
func (s *LeadService) MarkResponseReceived(ctx context.Context, id string) (*models.Lead, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrLeadNotFound
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"responseReceived": true,
			"stage":            models.StageEngaged,
			"lastContact":      now,
			"updatedAt":        now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var lead models.Lead
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&lead)
	if err == mongo.ErrNoDocuments {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark response received: %w", err)
	}
	return &lead, nil
}

// ListStale returns unscored leads that have not been touched since the cutoff
func (s *LeadService) ListStale(ctx context.Context, cutoff time.Time, limit int64) ([]*models.Lead, error) {
	filter := bson.M{
		"score":     0,
		"updatedAt": bson.M{"$lt": cutoff},
	}

	opts := options.Find().SetSort(bson.M{"updatedAt": 1}).SetLimit(limit)
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale leads: %w", err)
	}
	defer cursor.Close(ctx)

	leads := []*models.Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode stale leads: %w", err)
	}
	return leads, nil
}

// Count returns the number of leads matching the filter
func (s *LeadService) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

// Collection returns the underlying MongoDB collection for direct operations
func (s *LeadService) Collection() *mongo.Collection {
	return s.collection
}
