package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"leadflow/internal/models"
)

// QualificationEngine is the model-call dependency of the harness. Satisfied
// by *GrokService; tests substitute deterministic fakes.
type QualificationEngine interface {
	Qualify(ctx context.Context, attrs map[string]interface{}, model string) QualificationResult
}

// EvaluationService measures qualification accuracy, failure rate, and
// latency across candidate models
type EvaluationService struct {
	engine QualificationEngine
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(engine QualificationEngine) *EvaluationService {
	return &EvaluationService{engine: engine}
}

// LoadDataset reads a labeled dataset file: a JSON array of
// {input, expected_output: {qualification}} objects.
func LoadDataset(path string) ([]models.EvaluationCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var cases []models.EvaluationCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	return cases, nil
}

// Evaluate runs every case through each model sequentially and aggregates
// per-model metrics. A model producing 100% failures does not abort the
// evaluation of subsequent models.
func (s *EvaluationService) Evaluate(ctx context.Context, cases []models.EvaluationCase, modelIDs []string) models.EvaluationResult {
	results := make(map[string]models.ModelMetrics, len(modelIDs))

	for _, model := range modelIDs {
		slog.Info("evaluating model", "model", model, "cases", len(cases))

		var correct, failures int
		var totalLatency float64

		for _, c := range cases {
			prediction := s.engine.Qualify(ctx, c.Input, model)

			if prediction.Status == StatusFailure {
				failures++
				continue
			}

			totalLatency += prediction.Latency

			if string(prediction.Stage) == c.ExpectedOutput.Qualification {
				correct++
			}
		}

		total := len(cases)
		succeeded := total - failures

		metrics := models.ModelMetrics{
			TotalCases: total,
			Correct:    correct,
			Failures:   failures,
		}
		if total > 0 {
			metrics.Accuracy = float64(correct) / float64(total) * 100
			metrics.FailureRate = float64(failures) / float64(total) * 100
		}
		if succeeded > 0 {
			metrics.AvgLatency = totalLatency / float64(succeeded)
		}

		results[model] = metrics
		slog.Info("model evaluated",
			"model", model,
			"accuracy", metrics.Accuracy,
			"failure_rate", metrics.FailureRate,
			"avg_latency", metrics.AvgLatency,
		)
	}

	return models.EvaluationResult{
		RunID:   uuid.NewString(),
		Results: results,
	}
}
