package models

// EvaluationCase is one labeled example: lead attributes plus the stage the
// model is expected to return.
type EvaluationCase struct {
	Input          map[string]interface{} `json:"input"`
	ExpectedOutput ExpectedOutput         `json:"expected_output"`
}

// ExpectedOutput holds the labeled qualification stage for a case
type ExpectedOutput struct {
	Qualification string `json:"qualification"`
}

// ModelMetrics aggregates one model's run over the dataset
type ModelMetrics struct {
	Accuracy    float64 `json:"accuracy"`     // percent
	FailureRate float64 `json:"failure_rate"` // percent
	AvgLatency  float64 `json:"avg_latency"`  // seconds, over non-failed calls
	TotalCases  int     `json:"total_cases"`
	Correct     int     `json:"correct"`
	Failures    int     `json:"failures"`
}

// EvaluationRequest is the request body for POST /evaluate
type EvaluationRequest struct {
	Models  []string         `json:"models,omitempty"`
	Dataset []EvaluationCase `json:"dataset,omitempty"`
}

// EvaluationResult is the response for a full evaluation run
type EvaluationResult struct {
	RunID   string                  `json:"run_id"`
	Results map[string]ModelMetrics `json:"results"`
}
