package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"leadflow/internal/models"
)

type appliedVerdict struct {
	id       primitive.ObjectID
	score    int
	stage    models.Stage
	insights []string
}

type fakeWorkflowStore struct {
	applied    []appliedVerdict
	notified   []primitive.ObjectID
	responded  *models.Lead
	respondErr error
}

func (f *fakeWorkflowStore) ApplyQualification(ctx context.Context, id primitive.ObjectID, score int, stage models.Stage, insights []string) error {
	f.applied = append(f.applied, appliedVerdict{id, score, stage, insights})
	return nil
}

func (f *fakeWorkflowStore) MarkNotificationSent(ctx context.Context, id primitive.ObjectID) error {
	f.notified = append(f.notified, id)
	return nil
}

func (f *fakeWorkflowStore) MarkResponseReceived(ctx context.Context, id string) (*models.Lead, error) {
	if f.respondErr != nil {
		return nil, f.respondErr
	}
	return f.responded, nil
}

type appendedActivity struct {
	leadID        primitive.ObjectID
	activityType  string
	grokGenerated bool
	details       bson.M
}

type fakeTrail struct {
	appended []appendedActivity
}

func (f *fakeTrail) Append(ctx context.Context, leadID primitive.ObjectID, activityType, action string, grokGenerated bool, details bson.M) (*models.Activity, error) {
	f.appended = append(f.appended, appendedActivity{leadID, activityType, grokGenerated, details})
	return &models.Activity{ID: primitive.NewObjectID(), LeadID: leadID, Type: activityType, Action: action, GrokGenerated: grokGenerated}, nil
}

type fakeModelEngine struct {
	qualification QualificationResult
	draft         MessageDraft
}

func (f *fakeModelEngine) Qualify(ctx context.Context, attrs map[string]interface{}, model string) QualificationResult {
	return f.qualification
}

func (f *fakeModelEngine) DraftMessage(ctx context.Context, attrs map[string]interface{}, tone, goal, model string) MessageDraft {
	return f.draft
}

func newTestWorkflow(store *fakeWorkflowStore, trail *fakeTrail, engine *fakeModelEngine) *WorkflowService {
	return &WorkflowService{leads: store, activities: trail, grok: engine}
}

func TestMarkResponseReceived_EngagesLeadWithOneHumanActivity(t *testing.T) {
	id := primitive.NewObjectID()
	store := &fakeWorkflowStore{
		responded: &models.Lead{
			ID:               id,
			Company:          "Acme Corporation",
			Contact:          "John Smith",
			Stage:            models.StageEngaged,
			ResponseReceived: true,
		},
	}
	trail := &fakeTrail{}
	svc := newTestWorkflow(store, trail, &fakeModelEngine{})

	lead, err := svc.MarkResponseReceived(context.Background(), id.Hex())
	if err != nil {
		t.Fatalf("MarkResponseReceived() error = %v", err)
	}
	if lead.Stage != models.StageEngaged {
		t.Errorf("Expected stage %s, got %s", models.StageEngaged, lead.Stage)
	}
	if !lead.ResponseReceived {
		t.Error("Expected response_received to be set")
	}

	if len(trail.appended) != 1 {
		t.Fatalf("Expected exactly 1 activity, got %d", len(trail.appended))
	}
	activity := trail.appended[0]
	if activity.activityType != models.ActivityTypeResponse {
		t.Errorf("Expected %s activity, got %s", models.ActivityTypeResponse, activity.activityType)
	}
	if activity.grokGenerated {
		t.Error("Response activities are human-authored, grok_generated must be false")
	}
	if activity.leadID != id {
		t.Errorf("Activity attached to wrong lead: %s", activity.leadID.Hex())
	}
}

func TestMarkResponseReceived_NotFound(t *testing.T) {
	store := &fakeWorkflowStore{respondErr: ErrLeadNotFound}
	trail := &fakeTrail{}
	svc := newTestWorkflow(store, trail, &fakeModelEngine{})

	if _, err := svc.MarkResponseReceived(context.Background(), primitive.NewObjectID().Hex()); err == nil {
		t.Fatal("Expected error for missing lead")
	}
	if len(trail.appended) != 0 {
		t.Errorf("Expected no activity for missing lead, got %d", len(trail.appended))
	}
}

func TestRunQualification_SuccessPersistsVerdictAndActivity(t *testing.T) {
	store := &fakeWorkflowStore{}
	trail := &fakeTrail{}
	engine := &fakeModelEngine{
		qualification: QualificationResult{
			Status:            StatusSuccess,
			Score:             85,
			Stage:             models.StageQualified,
			Reasoning:         "Strong fit",
			RecommendedAction: "Schedule a demo",
		},
	}
	svc := newTestWorkflow(store, trail, engine)

	lead := &models.Lead{ID: primitive.NewObjectID(), Company: "Acme Corporation"}
	svc.runQualification(context.Background(), lead, "")

	if len(store.applied) != 1 {
		t.Fatalf("Expected 1 applied verdict, got %d", len(store.applied))
	}
	verdict := store.applied[0]
	if verdict.score != 85 || verdict.stage != models.StageQualified {
		t.Errorf("Applied verdict = (%d, %s), want (85, qualified)", verdict.score, verdict.stage)
	}
	if len(verdict.insights) != 2 {
		t.Errorf("Expected 2 insights, got %v", verdict.insights)
	}

	if len(trail.appended) != 1 {
		t.Fatalf("Expected 1 activity, got %d", len(trail.appended))
	}
	if trail.appended[0].activityType != models.ActivityTypeAnalysis {
		t.Errorf("Expected analysis activity, got %s", trail.appended[0].activityType)
	}
	if !trail.appended[0].grokGenerated {
		t.Error("Analysis activities are model-generated, grok_generated must be true")
	}
}

func TestRunQualification_ClampsOutOfRangeScore(t *testing.T) {
	store := &fakeWorkflowStore{}
	engine := &fakeModelEngine{
		qualification: QualificationResult{
			Status: StatusSuccess,
			Score:  140,
			Stage:  models.StageQualified,
		},
	}
	svc := newTestWorkflow(store, &fakeTrail{}, engine)

	svc.runQualification(context.Background(), &models.Lead{ID: primitive.NewObjectID()}, "")

	if len(store.applied) != 1 {
		t.Fatalf("Expected 1 applied verdict, got %d", len(store.applied))
	}
	if store.applied[0].score != 100 {
		t.Errorf("Expected score clamped to 100, got %d", store.applied[0].score)
	}
}

func TestRunQualification_FailureLeavesLeadUntouched(t *testing.T) {
	store := &fakeWorkflowStore{}
	trail := &fakeTrail{}
	engine := &fakeModelEngine{
		qualification: QualificationResult{Status: StatusFailure, Error: "API error 503"},
	}
	svc := newTestWorkflow(store, trail, engine)

	svc.runQualification(context.Background(), &models.Lead{ID: primitive.NewObjectID()}, "")

	if len(store.applied) != 0 {
		t.Errorf("Failed qualification must not write a verdict, got %d", len(store.applied))
	}
	if len(trail.appended) != 0 {
		t.Errorf("Failed qualification must not append an activity, got %d", len(trail.appended))
	}
}

func TestRunNotification_SuccessMarksSentAndLogsMessage(t *testing.T) {
	store := &fakeWorkflowStore{}
	trail := &fakeTrail{}
	engine := &fakeModelEngine{
		draft: MessageDraft{Status: StatusSuccess, Subject: "Quick question", Body: "Hi John"},
	}
	svc := newTestWorkflow(store, trail, engine)

	lead := &models.Lead{ID: primitive.NewObjectID(), Stage: models.StageQualified}
	svc.runNotification(context.Background(), lead, "professional", "book a demo", "")

	if len(store.notified) != 1 || store.notified[0] != lead.ID {
		t.Fatalf("Expected notification_sent marked for lead, got %v", store.notified)
	}
	if len(trail.appended) != 1 {
		t.Fatalf("Expected 1 activity, got %d", len(trail.appended))
	}
	activity := trail.appended[0]
	if activity.activityType != models.ActivityTypeNotification {
		t.Errorf("Expected notification activity, got %s", activity.activityType)
	}
	if !activity.grokGenerated {
		t.Error("Drafted messages are model-generated, grok_generated must be true")
	}
	if activity.details["subject"] != "Quick question" {
		t.Errorf("Expected subject in details, got %v", activity.details["subject"])
	}
}

func TestRunNotification_FailureDoesNotMarkSent(t *testing.T) {
	store := &fakeWorkflowStore{}
	trail := &fakeTrail{}
	engine := &fakeModelEngine{
		draft: MessageDraft{Status: StatusFailure, Error: "request failed"},
	}
	svc := newTestWorkflow(store, trail, engine)

	svc.runNotification(context.Background(), &models.Lead{ID: primitive.NewObjectID()}, "", "", "")

	if len(store.notified) != 0 {
		t.Errorf("Failed draft must not mark notification_sent, got %v", store.notified)
	}
	if len(trail.appended) != 0 {
		t.Errorf("Failed draft must not append an activity, got %d", len(trail.appended))
	}
}
