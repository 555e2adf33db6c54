package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity types. The field is free-form by design; these are the values the
// server itself writes.
const (
	ActivityTypeEmail        = "email"
	ActivityTypeMessage      = "message"
	ActivityTypeCall         = "call"
	ActivityTypeMeeting      = "meeting"
	ActivityTypeAnalysis     = "analysis"
	ActivityTypeNotification = "notification"
	ActivityTypeResponse     = "response"
)

// Activity is a timestamped audit-log entry attached to a lead
type Activity struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LeadID        primitive.ObjectID `bson:"leadId" json:"lead_id"`
	Type          string             `bson:"type" json:"type"`
	Action        string             `bson:"action" json:"action"`
	GrokGenerated bool               `bson:"grokGenerated" json:"grok_generated"`
	Details       bson.M             `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}
