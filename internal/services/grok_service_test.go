package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadflow/internal/models"
)

// newFakeModelServer returns a chat-completions server that always responds
// with the given assistant content.
func newFakeModelServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Temperature != 0.1 {
			t.Errorf("Expected temperature 0.1, got %v", req.Temperature)
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func testAttrs() map[string]interface{} {
	return map[string]interface{}{
		"company":  "Acme Corporation",
		"industry": "Technology",
	}
}

func TestQualify_Success(t *testing.T) {
	server := newFakeModelServer(t, `{"score":80,"stage":"qualified","reasoning":"ok","recommended_action":"call"}`)
	defer server.Close()

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)
	result := grok.Qualify(context.Background(), testAttrs(), "")

	if result.Status != StatusSuccess {
		t.Fatalf("Expected success, got %s (%s)", result.Status, result.Error)
	}
	if result.Score != 80 {
		t.Errorf("Expected score 80, got %d", result.Score)
	}
	if result.Stage != models.StageQualified {
		t.Errorf("Expected stage qualified, got %s", result.Stage)
	}
	if result.Reasoning != "ok" {
		t.Errorf("Expected reasoning 'ok', got %q", result.Reasoning)
	}
	if result.RecommendedAction != "call" {
		t.Errorf("Expected recommended action 'call', got %q", result.RecommendedAction)
	}
	if result.Latency <= 0 {
		t.Errorf("Expected positive latency, got %v", result.Latency)
	}
}

func TestQualify_FencedJSON(t *testing.T) {
	content := "```json\n{\"score\":80,\"stage\":\"qualified\",\"reasoning\":\"ok\",\"recommended_action\":\"call\"}\n```"
	server := newFakeModelServer(t, content)
	defer server.Close()

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)
	result := grok.Qualify(context.Background(), testAttrs(), "grok-beta")

	if result.Status != StatusSuccess {
		t.Fatalf("Expected success for fenced JSON, got %s (%s)", result.Status, result.Error)
	}
	if result.Score != 80 || result.Stage != models.StageQualified {
		t.Errorf("Expected score 80 / stage qualified, got %d / %s", result.Score, result.Stage)
	}
}

func TestQualify_MalformedOutput(t *testing.T) {
	server := newFakeModelServer(t, "not json at all")
	defer server.Close()

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)
	result := grok.Qualify(context.Background(), testAttrs(), "")

	if result.Status != StatusFailure {
		t.Fatalf("Expected failure for malformed output, got %s", result.Status)
	}
	if result.Score != 0 {
		t.Errorf("Expected score 0 on failure, got %d", result.Score)
	}
	if result.Stage != models.StageError {
		t.Errorf("Expected stage error on failure, got %s", result.Stage)
	}
	if result.Error == "" {
		t.Error("Expected error description on failure")
	}
}

func TestQualify_MissingFieldsDefaultToZero(t *testing.T) {
	server := newFakeModelServer(t, `{"stage":"qualified"}`)
	defer server.Close()

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)
	result := grok.Qualify(context.Background(), testAttrs(), "")

	if result.Status != StatusSuccess {
		t.Fatalf("Expected success, got %s", result.Status)
	}
	if result.Score != 0 {
		t.Errorf("Expected missing score to default to 0, got %d", result.Score)
	}
	if result.Reasoning != "" {
		t.Errorf("Expected missing reasoning to default to empty, got %q", result.Reasoning)
	}
}

func TestQualify_TransportError(t *testing.T) {
	server := newFakeModelServer(t, "unused")
	server.Close() // immediately closed: every call fails at the transport

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)
	result := grok.Qualify(context.Background(), testAttrs(), "")

	if result.Status != StatusFailure {
		t.Fatalf("Expected failure for transport error, got %s", result.Status)
	}
	if result.Stage != models.StageError {
		t.Errorf("Expected stage error, got %s", result.Stage)
	}
}

func TestQualify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)
	result := grok.Qualify(context.Background(), testAttrs(), "")

	if result.Status != StatusFailure {
		t.Fatalf("Expected failure for non-2xx response, got %s", result.Status)
	}
}

func TestQualify_Idempotent(t *testing.T) {
	server := newFakeModelServer(t, `{"score":75,"stage":"needs_review","reasoning":"thin data","recommended_action":"research"}`)
	defer server.Close()

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)

	first := grok.Qualify(context.Background(), testAttrs(), "")
	second := grok.Qualify(context.Background(), testAttrs(), "")

	if first.Score != second.Score || first.Stage != second.Stage || first.Reasoning != second.Reasoning {
		t.Errorf("Expected identical verdicts for identical input, got %+v vs %+v", first, second)
	}
}

func TestDraftMessage_Success(t *testing.T) {
	server := newFakeModelServer(t, "```json\n{\"subject\":\"Quick intro\",\"body\":\"Hi John\",\"reasoning\":\"warm opener\"}\n```")
	defer server.Close()

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)
	draft := grok.DraftMessage(context.Background(), testAttrs(), "friendly", "book a demo", "")

	if draft.Status != StatusSuccess {
		t.Fatalf("Expected success, got %s (%s)", draft.Status, draft.Error)
	}
	if draft.Subject != "Quick intro" {
		t.Errorf("Expected subject 'Quick intro', got %q", draft.Subject)
	}
	if draft.Body != "Hi John" {
		t.Errorf("Expected body 'Hi John', got %q", draft.Body)
	}
}

func TestDraftMessage_Failure(t *testing.T) {
	server := newFakeModelServer(t, "sorry, I can't help with that")
	defer server.Close()

	grok := NewGrokService(server.URL, "test-key", "grok-beta", 5*time.Second, nil)
	draft := grok.DraftMessage(context.Background(), testAttrs(), "", "", "")

	if draft.Status != StatusFailure {
		t.Fatalf("Expected failure for non-JSON output, got %s", draft.Status)
	}
	if draft.Error == "" {
		t.Error("Expected error description on failure")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no fence", `{"score":1}`, `{"score":1}`},
		{"fence with json tag", "```json\n{\"score\":1}\n```", `{"score":1}`},
		{"fence without tag", "```\n{\"score\":1}\n```", `{"score":1}`},
		{"fence with preamble", "Here you go:\n```json\n{\"score\":1}\n```", `{"score":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.content); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
