package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/fileassistant/agent"
	"github.com/lexandro/fileassistant/fileops"
	"github.com/lexandro/fileassistant/index"
	"github.com/lexandro/fileassistant/llm"
	"github.com/lexandro/fileassistant/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// deleteModel always asks to delete the path named in the prompt; a prompt
// of the form "yes <path>" confirms.
type deleteModel struct{}

func (deleteModel) Name() string { return "fake" }

func (deleteModel) Decide(_ context.Context, prompt string, _ []llm.FunctionDeclaration) (llm.Decision, error) {
	if prompt == "hello" {
		return llm.Decision{Text: "Hi there"}, nil
	}
	args := map[string]any{"file_path": prompt}
	if path, ok := strings.CutPrefix(prompt, "yes "); ok {
		args = map[string]any{"file_path": path, "confirm": "yes"}
	}
	raw, _ := json.Marshal(args)
	return llm.Decision{Call: &llm.FunctionCall{Name: agent.ToolDeleteFile, Args: raw}}, nil
}

func newTestAgent(t *testing.T) (*agent.Agent, string) {
	t.Helper()
	home := t.TempDir()
	roots := []string{filepath.Join(home, "Downloads"), filepath.Join(home, "Desktop")}
	for _, root := range roots {
		if err := os.MkdirAll(root, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := agent.New(agent.Options{
		Model: deleteModel{},
		Files: fileops.New(fileops.NewResolver(fileops.DefaultSymbolicRoots(home))),
		Indexer: &index.Indexer{
			Roots:    roots,
			SavePath: filepath.Join(t.TempDir(), "file_index.json"),
			Logger:   logger,
		},
		HomeDir: home,
		Logger:  logger,
	})
	return a, home
}

func postChat(t *testing.T, handler http.Handler, message string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(ChatRequest{Message: message})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) any {
	t.Helper()
	var resp ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp.Response
}

func Test_HTTPServer_ChatText(t *testing.T) {
	a, _ := newTestAgent(t)
	handler := NewHTTPServer(a, nil, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler()

	rec := postChat(t, handler, "hello", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeResponse(t, rec); got != "Hi there" {
		t.Errorf("response = %v", got)
	}
	if len(rec.Result().Cookies()) != 1 || rec.Result().Cookies()[0].Name != SessionCookie {
		t.Error("expected a session cookie to be issued")
	}
}

func Test_HTTPServer_ChatBadJSON(t *testing.T) {
	a, _ := newTestAgent(t)
	handler := NewHTTPServer(a, nil, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func Test_HTTPServer_PendingDeletionPerCookie(t *testing.T) {
	a, home := newTestAgent(t)
	srv := NewHTTPServer(a, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := srv.Handler()
	path := filepath.Join(home, "Desktop", "old.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	first := postChat(t, handler, path, nil)
	got, _ := decodeResponse(t, first).(string)
	if !strings.HasPrefix(got, "Are you sure you want to delete") {
		t.Fatalf("response = %q", got)
	}
	cookies := first.Result().Cookies()

	session := srv.sessions.Get(cookies[0].Value)
	if pending, ok := session.Pending(); !ok || pending != path {
		t.Errorf("pending = %q, %v", pending, ok)
	}

	// A different browser has nothing pending.
	other := postChat(t, handler, "hello", nil)
	otherSession := srv.sessions.Get(other.Result().Cookies()[0].Value)
	if _, ok := otherSession.Pending(); ok {
		t.Error("sessions must not share pending deletions")
	}

	confirm := postChat(t, handler, "yes "+path, cookies)
	if got := decodeResponse(t, confirm); got != "Deleted "+path {
		t.Errorf("confirm response = %v", got)
	}
	if _, ok := session.Pending(); ok {
		t.Error("pending deletion should be cleared")
	}
}

func Test_HTTPServer_StatusAndReindex(t *testing.T) {
	a, home := newTestAgent(t)
	handler := NewHTTPServer(a, []string{home}, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler()
	if err := os.WriteFile(filepath.Join(home, "Downloads", "a.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reindex", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("reindex status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	var status statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if status.Files != 1 {
		t.Errorf("files = %d, want 1", status.Files)
	}
	if status.LastRebuild.IsZero() {
		t.Error("last_rebuild should be set after a reindex")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "fileassist_http_requests_total") {
		t.Error("metrics endpoint should expose request counters")
	}
}

func Test_SetupMCP_ListsAndCallsTools(t *testing.T) {
	a, home := newTestAgent(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mcpServer := SetupMCP(
		&tools.Handler{Agent: a, Session: agent.NewSession("mcp"), Logger: logger},
		&tools.StatusHandler{Index: a.Index(), StartTime: time.Now(), Logger: logger},
		&tools.ReindexHandler{DoReindex: a.Reindex, Logger: logger},
	)

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer clientSession.Close()

	listed, err := clientSession.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(listed.Tools) != len(agent.Catalog())+2 {
		t.Errorf("listed %d tools, want %d", len(listed.Tools), len(agent.Catalog())+2)
	}

	result, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      agent.ToolCreateEmptyFile,
		Arguments: map[string]any{"file_path": "Desktop/new.txt"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	text := result.Content[0].(*mcp.TextContent).Text
	if want := "Created empty file at: " + filepath.Join(home, "Desktop", "new.txt"); text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}
