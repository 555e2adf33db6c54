package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadflow/internal/models"
)

// Result statuses shared by every model call. A "failure" means the call or
// parsing itself broke; a model verdict of "disqualified" is still a success.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

const qualificationSystemPrompt = "You are an expert sales SDR assistant. You output only valid JSON."

const draftSystemPrompt = "You are an expert sales copywriter. You output only valid JSON."

// Low temperature biases the model toward reproducible structured output.
const samplingTemperature = 0.1

// QualificationResult is the uniform envelope returned by every Qualify call
type QualificationResult struct {
	Status  string  `json:"status"`
	Latency float64 `json:"latency"` // seconds
	Error   string  `json:"error,omitempty"`

	Score             int          `json:"score"`
	Stage             models.Stage `json:"stage"`
	Reasoning         string       `json:"reasoning"`
	RecommendedAction string       `json:"recommended_action"`
}

// MessageDraft is the envelope returned by every DraftMessage call
type MessageDraft struct {
	Status  string  `json:"status"`
	Latency float64 `json:"latency"`
	Error   string  `json:"error,omitempty"`

	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Reasoning string `json:"reasoning"`
}

// GrokService wraps the xAI chat-completions endpoint for lead qualification
// and outreach drafting
type GrokService struct {
	baseURL      string
	apiKey       string
	defaultModel string
	client       *http.Client
	metrics      *Metrics
}

// NewGrokService creates a new Grok service.
// metrics can be nil (e.g. in tests).
func NewGrokService(baseURL, apiKey, defaultModel string, timeout time.Duration, metrics *Metrics) *GrokService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GrokService{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: timeout},
		metrics:      metrics,
	}
}

// DefaultModel returns the configured default model identifier
func (s *GrokService) DefaultModel() string {
	return s.defaultModel
}

// Qualify scores a lead's attributes with the given model. Every outcome is
// returned inside the result envelope; errors are never propagated so the
// caller can always log an activity describing what happened.
func (s *GrokService) Qualify(ctx context.Context, attrs map[string]interface{}, model string) QualificationResult {
	if model == "" {
		model = s.defaultModel
	}

	leadJSON, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return qualificationFailure(0, fmt.Errorf("failed to encode lead attributes: %w", err))
	}

	prompt := fmt.Sprintf(`Analyze this sales lead and provide a qualification assessment.

Lead Data:
%s

Return valid JSON only with this structure:
{
    "score": <integer 0-100>,
    "stage": <"qualified" | "disqualified" | "needs_review">,
    "reasoning": <string explanation>,
    "recommended_action": <string>
}`, leadJSON)

	content, latency, err := s.chatCompletion(ctx, model, qualificationSystemPrompt, prompt)
	if err != nil {
		s.recordQualification(StatusFailure, latency)
		return qualificationFailure(latency, err)
	}

	var verdict struct {
		Score             int    `json:"score"`
		Stage             string `json:"stage"`
		Reasoning         string `json:"reasoning"`
		RecommendedAction string `json:"recommended_action"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &verdict); err != nil {
		s.recordQualification(StatusFailure, latency)
		return qualificationFailure(latency, fmt.Errorf("failed to parse model output: %w", err))
	}

	s.recordQualification(StatusSuccess, latency)
	return QualificationResult{
		Status:            StatusSuccess,
		Latency:           latency,
		Score:             verdict.Score,
		Stage:             models.Stage(verdict.Stage),
		Reasoning:         verdict.Reasoning,
		RecommendedAction: verdict.RecommendedAction,
	}
}

// DraftMessage produces an outreach message tailored to a lead. Same envelope
// semantics as Qualify.
func (s *GrokService) DraftMessage(ctx context.Context, attrs map[string]interface{}, tone, goal, model string) MessageDraft {
	if model == "" {
		model = s.defaultModel
	}
	if tone == "" {
		tone = "professional"
	}
	if goal == "" {
		goal = "schedule an introductory call"
	}

	leadJSON, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return draftFailure(0, fmt.Errorf("failed to encode lead attributes: %w", err))
	}

	prompt := fmt.Sprintf(`Write a short outreach email for this sales lead.

Lead Data:
%s

Tone: %s
Goal: %s

Return valid JSON only with this structure:
{
    "subject": <string>,
    "body": <string>,
    "reasoning": <string explanation of the approach>
}`, leadJSON, tone, goal)

	content, latency, err := s.chatCompletion(ctx, model, draftSystemPrompt, prompt)
	if err != nil {
		s.recordDraft(StatusFailure)
		return draftFailure(latency, err)
	}

	var draft struct {
		Subject   string `json:"subject"`
		Body      string `json:"body"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &draft); err != nil {
		s.recordDraft(StatusFailure)
		return draftFailure(latency, fmt.Errorf("failed to parse model output: %w", err))
	}

	s.recordDraft(StatusSuccess)
	return MessageDraft{
		Status:    StatusSuccess,
		Latency:   latency,
		Subject:   draft.Subject,
		Body:      draft.Body,
		Reasoning: draft.Reasoning,
	}
}

// chatCompletion POSTs a two-message prompt to the chat-completions endpoint
// and returns the raw assistant text plus wall-clock latency in seconds.
func (s *GrokService) chatCompletion(ctx context.Context, model, systemPrompt, userPrompt string) (string, float64, error) {
	chatReq := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": samplingTemperature,
		"stream":      false,
	}

	reqBody, err := json.Marshal(chatReq)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start).Seconds()
	if err != nil {
		return "", latency, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", latency, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", latency, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", latency, fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), latency, nil
}

// stripCodeFence removes a triple-backtick wrapper (with optional language
// tag) from model output before JSON parsing.
func stripCodeFence(content string) string {
	if !strings.Contains(content, "```") {
		return content
	}
	parts := strings.Split(content, "```")
	if len(parts) < 2 {
		return content
	}
	inner := strings.TrimSpace(parts[1])
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

func qualificationFailure(latency float64, err error) QualificationResult {
	return QualificationResult{
		Status:    StatusFailure,
		Latency:   latency,
		Error:     err.Error(),
		Score:     0,
		Stage:     models.StageError,
		Reasoning: err.Error(),
	}
}

func draftFailure(latency float64, err error) MessageDraft {
	return MessageDraft{
		Status:  StatusFailure,
		Latency: latency,
		Error:   err.Error(),
	}
}

func (s *GrokService) recordQualification(status string, latency float64) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordQualification(status)
	if status == StatusSuccess {
		s.metrics.RecordModelLatency(latency)
	}
}

func (s *GrokService) recordDraft(status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordDraft(status)
}
