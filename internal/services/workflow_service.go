package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"leadflow/internal/logging"
	"leadflow/internal/models"
	"leadflow/internal/tasks"
)

// workflowLeadStore is the slice of the lead store the workflows write through.
// Satisfied by *LeadService; tests substitute in-memory fakes.
type workflowLeadStore interface {
	ApplyQualification(ctx context.Context, id primitive.ObjectID, score int, stage models.Stage, insights []string) error
	MarkNotificationSent(ctx context.Context, id primitive.ObjectID) error
	MarkResponseReceived(ctx context.Context, id string) (*models.Lead, error)
}

// activityTrail appends to the per-lead audit trail. Satisfied by *ActivityService.
type activityTrail interface {
	Append(ctx context.Context, leadID primitive.ObjectID, activityType, action string, grokGenerated bool, details bson.M) (*models.Activity, error)
}

// modelEngine is the model-call dependency of the workflows. Satisfied by *GrokService.
type modelEngine interface {
	Qualify(ctx context.Context, attrs map[string]interface{}, model string) QualificationResult
	DraftMessage(ctx context.Context, attrs map[string]interface{}, tone, goal, model string) MessageDraft
}

// WorkflowService orchestrates the asynchronous qualification and
// notification pipelines: call the model, persist the result, append an
// activity record. Steps within one task run strictly in order; tasks for
// different leads may interleave freely.
type WorkflowService struct {
	leads      workflowLeadStore
	activities activityTrail
	grok       modelEngine
	runner     *tasks.Runner
	dashboard  *DashboardService
}

// NewWorkflowService creates a new workflow service.
// dashboard can be nil; when set, its cache is invalidated after task writes.
func NewWorkflowService(leads *LeadService, activities *ActivityService, grok *GrokService, runner *tasks.Runner, dashboard *DashboardService) *WorkflowService {
	return &WorkflowService{
		leads:      leads,
		activities: activities,
		grok:       grok,
		runner:     runner,
		dashboard:  dashboard,
	}
}

// ScheduleQualification queues a qualification run for a lead. Returns
// immediately; the verdict lands via the background task.
func (s *WorkflowService) ScheduleQualification(lead *models.Lead, model string) {
	s.runner.Go("qualify_lead", func(ctx context.Context) {
		s.runQualification(ctx, lead, model)
	})
}

// runQualification is the qualification task body: score → persist → log
// activity. A failed engine call leaves the lead untouched and appends no
// activity, so stale score/stage values remain authoritative.
func (s *WorkflowService) runQualification(ctx context.Context, lead *models.Lead, model string) {
	logger := logging.WithTask("qualify_lead", lead.ID.Hex())

	result := s.grok.Qualify(ctx, lead.QualificationAttributes(), model)
	if result.Status == StatusFailure {
		logger.Error("qualification failed, lead left unchanged", "error", result.Error)
		return
	}

	score := clampScore(result.Score)
	insights := buildInsights(result)

	if err := s.leads.ApplyQualification(ctx, lead.ID, score, result.Stage, insights); err != nil {
		logger.Error("failed to persist qualification verdict", "error", err)
		return
	}

	action := fmt.Sprintf("Lead qualified by Grok: score %d, stage %s", score, result.Stage)
	details := bson.M{
		"score":              score,
		"stage":              string(result.Stage),
		"reasoning":          result.Reasoning,
		"recommended_action": result.RecommendedAction,
		"latency":            result.Latency,
		"model":              model,
	}
	if _, err := s.activities.Append(ctx, lead.ID, models.ActivityTypeAnalysis, action, true, details); err != nil {
		// Verdict is already persisted; the trail just misses this entry.
		logger.Error("failed to append qualification activity", "error", err)
		return
	}

	s.invalidateDashboard()
	logger.Info("lead qualified", "score", score, "stage", result.Stage, "latency", result.Latency)
}

// ScheduleNotification queues outreach drafting for a lead. The caller has
// already verified the stage precondition at dispatch time.
func (s *WorkflowService) ScheduleNotification(lead *models.Lead, tone, goal, model string) {
	s.runner.Go("notify_lead", func(ctx context.Context) {
		s.runNotification(ctx, lead, tone, goal, model)
	})
}

// runNotification is the notification task body: draft → mark sent → log
// activity. On failure notificationSent stays false so a later notify call
// can retry the lead.
func (s *WorkflowService) runNotification(ctx context.Context, lead *models.Lead, tone, goal, model string) {
	logger := logging.WithTask("notify_lead", lead.ID.Hex())

	draft := s.grok.DraftMessage(ctx, lead.QualificationAttributes(), tone, goal, model)
	if draft.Status == StatusFailure {
		logger.Error("message drafting failed, notification not sent", "error", draft.Error)
		return
	}

	if err := s.leads.MarkNotificationSent(ctx, lead.ID); err != nil {
		logger.Error("failed to mark notification sent", "error", err)
		return
	}

	action := fmt.Sprintf("Outreach message drafted: %s", draft.Subject)
	details := bson.M{
		"subject":   draft.Subject,
		"body":      draft.Body,
		"reasoning": draft.Reasoning,
		"tone":      tone,
		"goal":      goal,
		"model":     model,
		"latency":   draft.Latency,
	}
	if _, err := s.activities.Append(ctx, lead.ID, models.ActivityTypeNotification, action, true, details); err != nil {
		logger.Error("failed to append notification activity", "error", err)
		return
	}

	s.invalidateDashboard()
	logger.Info("outreach message drafted", "subject", draft.Subject)
}

// MarkResponseReceived handles the synchronous respond action: the lead moves
// to engaged and exactly one human-authored response activity is appended.
func (s *WorkflowService) MarkResponseReceived(ctx context.Context, leadID string) (*models.Lead, error) {
	lead, err := s.leads.MarkResponseReceived(ctx, leadID)
	if err != nil {
		return nil, err
	}

	action := fmt.Sprintf("Response received from %s", lead.Contact)
	if _, err := s.activities.Append(ctx, lead.ID, models.ActivityTypeResponse, action, false, nil); err != nil {
		return nil, fmt.Errorf("failed to append response activity: %w", err)
	}

	s.invalidateDashboard()
	logging.WithLead(lead.ID.Hex(), lead.Company).Info("response received, lead engaged")
	return lead, nil
}

func (s *WorkflowService) invalidateDashboard() {
	if s.dashboard != nil {
		s.dashboard.Invalidate()
	}
}

// clampScore keeps a verdict's score inside [0,100] even when the model
// misbehaves.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// buildInsights turns a verdict into the insight strings shown on the lead
func buildInsights(result QualificationResult) []string {
	insights := []string{}
	if result.Reasoning != "" {
		insights = append(insights, result.Reasoning)
	}
	if result.RecommendedAction != "" {
		insights = append(insights, "Recommended: "+result.RecommendedAction)
	}
	return insights
}
