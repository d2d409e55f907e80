package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string) *GeminiClient {
	t.Helper()
	client, err := NewGeminiClient(GeminiConfig{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "gemini-test",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RetryDelay: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	return client
}

var testTools = []FunctionDeclaration{{
	Name:        "searchFiles",
	Description: "Search indexed files by name",
	Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}}}`),
}}

func Test_NewGeminiClient_Defaults(t *testing.T) {
	client, err := NewGeminiClient(GeminiConfig{APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	if client.Name() != DefaultModel {
		t.Errorf("Name() = %s, want %s", client.Name(), DefaultModel)
	}
	if client.httpClient.Timeout != 120*time.Second {
		t.Errorf("timeout = %v, want 120s", client.httpClient.Timeout)
	}
}

func Test_GeminiClient_FunctionCall(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[
			{"functionCall":{"name":"searchFiles","args":{"query":"report"}}}
		]}}]}`))
	}))
	defer server.Close()

	decision, err := newTestClient(t, server.URL).Decide(context.Background(), "find my report", testTools)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if !strings.HasSuffix(gotPath, "/models/gemini-test:generateContent") {
		t.Errorf("path = %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	tools, _ := gotBody["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected one tools entry in request, got %v", gotBody["tools"])
	}
	decls := tools[0].(map[string]any)["functionDeclarations"].([]any)
	if decls[0].(map[string]any)["name"] != "searchFiles" {
		t.Errorf("unexpected declaration %v", decls[0])
	}

	if decision.Call == nil {
		t.Fatalf("expected a function call, got text %q", decision.Text)
	}
	if decision.Call.Name != "searchFiles" {
		t.Errorf("call name = %s", decision.Call.Name)
	}
	var args map[string]string
	if err := json.Unmarshal(decision.Call.Args, &args); err != nil || args["query"] != "report" {
		t.Errorf("args = %s (%v)", decision.Call.Args, err)
	}
}

func Test_GeminiClient_FunctionCallWithoutArgs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"functionCall":{"name":"searchFiles"}}]}}]}`))
	}))
	defer server.Close()

	decision, err := newTestClient(t, server.URL).Decide(context.Background(), "list", testTools)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Call == nil || string(decision.Call.Args) != "{}" {
		t.Errorf("expected empty object args, got %+v", decision.Call)
	}
}

func Test_GeminiClient_TextAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello, "},{"text":"there."}]}}]}`))
	}))
	defer server.Close()

	decision, err := newTestClient(t, server.URL).Decide(context.Background(), "hi", testTools)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Call != nil {
		t.Errorf("unexpected call %+v", decision.Call)
	}
	if decision.Text != "Hello, there." {
		t.Errorf("Text = %q", decision.Text)
	}
}

func Test_GeminiClient_NoCandidates(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Decide(context.Background(), "hi", nil)
	if err == nil || !strings.Contains(err.Error(), ErrNoCandidates.Error()) {
		t.Errorf("expected no-candidates error, got %v", err)
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Errorf("should not retry an empty response, got %d attempts", attempts)
	}
}

func Test_GeminiClient_RetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	decision, err := newTestClient(t, server.URL).Decide(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decision.Text != "ok" {
		t.Errorf("Text = %q", decision.Text)
	}
	if atomic.LoadInt32(&attempts) < 2 {
		t.Errorf("should have retried, got %d attempts", attempts)
	}
}

func Test_GeminiClient_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Decide(context.Background(), "hi", nil)
	if err == nil {
		t.Fatal("expected an error for a 400 response")
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("error should carry the response body, got %v", err)
	}
	if atomic.LoadInt32(&attempts) > 1 {
		t.Errorf("should not retry on 4xx, got %d attempts", attempts)
	}
}
