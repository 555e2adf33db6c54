package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stage represents a lead's position in the sales pipeline
type Stage string

const (
	StageNew          Stage = "new"
	StageContacted    Stage = "contacted"
	StageQualified    Stage = "qualified"
	StageEngaged      Stage = "engaged"
	StageProposal     Stage = "proposal"
	StageClosed       Stage = "closed"
	StageDisqualified Stage = "disqualified"
	StageNeedsReview  Stage = "needs_review"
	StageError        Stage = "error"
)

// Lead represents a prospective customer tracked through the pipeline
type Lead struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Company   string             `bson:"company" json:"company"`
	Contact   string             `bson:"contact" json:"contact"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Value     string             `bson:"value" json:"value"` // Free-form, e.g. "$45,000"
	Industry  string             `bson:"industry,omitempty" json:"industry,omitempty"`
	Employees string             `bson:"employees,omitempty" json:"employees,omitempty"`
	Website   string             `bson:"website,omitempty" json:"website,omitempty"`
	Location  string             `bson:"location,omitempty" json:"location,omitempty"`
	JobTitle  string             `bson:"jobTitle,omitempty" json:"job_title,omitempty"`
	LinkedIn  string             `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Tags      []string           `bson:"tags,omitempty" json:"tags,omitempty"`

	// Qualification output. Authoritative only after at least one successful
	// qualification run; a failed re-qualification leaves prior values in place.
	Stage    Stage    `bson:"stage" json:"stage"`
	Score    int      `bson:"score" json:"score"` // 0-100
	Insights []string `bson:"insights,omitempty" json:"insights,omitempty"`

	NotificationSent bool `bson:"notificationSent" json:"notification_sent"`
	ResponseReceived bool `bson:"responseReceived" json:"response_received"`

	LastContact *time.Time `bson:"lastContact,omitempty" json:"last_contact,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updated_at"`
}

// QualificationAttributes returns the attribute map sent to the model for scoring.
// Empty optional fields are omitted so the prompt stays compact.
func (l *Lead) QualificationAttributes() map[string]interface{} {
	attrs := map[string]interface{}{
		"company": l.Company,
		"contact": l.Contact,
		"email":   l.Email,
		"value":   l.Value,
	}
	if l.Industry != "" {
		attrs["industry"] = l.Industry
	}
	if l.Employees != "" {
		attrs["employees"] = l.Employees
	}
	if l.Website != "" {
		attrs["website"] = l.Website
	}
	if l.Location != "" {
		attrs["location"] = l.Location
	}
	if l.JobTitle != "" {
		attrs["job_title"] = l.JobTitle
	}
	if l.Notes != "" {
		attrs["notes"] = l.Notes
	}
	if len(l.Tags) > 0 {
		attrs["tags"] = l.Tags
	}
	return attrs
}

// CreateLeadRequest is the request body for creating a lead
type CreateLeadRequest struct {
	Company   string   `json:"company"`
	Contact   string   `json:"contact"`
	Email     string   `json:"email"`
	Value     string   `json:"value"`
	Phone     string   `json:"phone,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	Employees string   `json:"employees,omitempty"`
	Website   string   `json:"website,omitempty"`
	Location  string   `json:"location,omitempty"`
	JobTitle  string   `json:"job_title,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// UpdateLeadRequest is the request body for partially updating a lead.
// Pointer fields distinguish "not provided" from "set to empty".
type UpdateLeadRequest struct {
	Company   *string   `json:"company,omitempty"`
	Contact   *string   `json:"contact,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Value     *string   `json:"value,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Industry  *string   `json:"industry,omitempty"`
	Employees *string   `json:"employees,omitempty"`
	Website   *string   `json:"website,omitempty"`
	Location  *string   `json:"location,omitempty"`
	JobTitle  *string   `json:"job_title,omitempty"`
	LinkedIn  *string   `json:"linkedin,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Stage     *Stage    `json:"stage,omitempty"`
}

// TriggersQualification reports whether the update changes an attribute that
// feeds qualification (company, industry, or employee count) relative to the
// lead's prior values. Restating an identical value does not re-run it.
func (r *UpdateLeadRequest) TriggersQualification(prev *Lead) bool {
	if r.Company != nil && *r.Company != prev.Company {
		return true
	}
	if r.Industry != nil && *r.Industry != prev.Industry {
		return true
	}
	if r.Employees != nil && *r.Employees != prev.Employees {
		return true
	}
	return false
}

// NotifyLeadsRequest is the request body for batch outreach drafting
type NotifyLeadsRequest struct {
	LeadIDs []string `json:"lead_ids"`
	Tone    string   `json:"tone,omitempty"`
	Goal    string   `json:"goal,omitempty"`
	Model   string   `json:"model,omitempty"`
}

// NotifyLeadsResponse reports what the notify call scheduled
type NotifyLeadsResponse struct {
	Scheduled  int      `json:"scheduled"`
	SkippedIDs []string `json:"skipped_ids,omitempty"`
}

// GenerateMessageRequest is the request body for a synchronous message draft
type GenerateMessageRequest struct {
	LeadID string `json:"lead_id"`
	Tone   string `json:"tone,omitempty"`
	Goal   string `json:"goal,omitempty"`
	Model  string `json:"model,omitempty"`
}
