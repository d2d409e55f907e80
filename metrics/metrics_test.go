package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics handler returned %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func Test_Metrics_RecordedValuesAreExported(t *testing.T) {
	ObserveToolCall("searchFiles", 5*time.Millisecond)
	ObserveModelCall("gemini-test", nil, time.Millisecond)
	ObserveModelCall("gemini-test", errors.New("boom"), time.Millisecond)
	ObserveRebuild(42, 10*time.Millisecond)

	body := scrape(t)
	for _, want := range []string{
		`fileassist_tool_calls_total{tool="searchFiles"}`,
		`fileassist_model_calls_total{model="gemini-test",status="success"}`,
		`fileassist_model_calls_total{model="gemini-test",status="error"}`,
		`fileassist_index_size 42`,
		`fileassist_index_rebuild_duration_seconds_count`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func Test_Middleware_RecordsStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := Middleware(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}

	body := scrape(t)
	if !strings.Contains(body, `fileassist_http_requests_total{method="GET",path="/teapot",status="418"}`) {
		t.Error("middleware did not record the request")
	}
}

func Test_Middleware_LabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/{name}", func(w http.ResponseWriter, r *http.Request) {})
	handler := Middleware(mux)

	for _, target := range []string{"/files/a.pdf", "/files/b.pdf", "/random-1", "/random-2"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	body := scrape(t)
	for _, want := range []string{
		`fileassist_http_requests_total{method="GET",path="/files/{name}",status="200"} 2`,
		`fileassist_http_requests_total{method="GET",path="unmatched",status="404"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
	for _, leaked := range []string{`path="/files/a.pdf"`, `path="/random-1"`} {
		if strings.Contains(body, leaked) {
			t.Errorf("raw request path leaked into labels: %s", leaked)
		}
	}
}
