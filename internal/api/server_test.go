package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tessnode/internal/api/models"
	"tessnode/internal/config"
	"tessnode/internal/events"
	"tessnode/internal/logging"
	"tessnode/internal/supervisor"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	sup := supervisor.New(supervisor.Config{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		CountSamples: func(string) int { return 0 },
	})
	jm := config.NewJobManager(filepath.Join(t.TempDir(), "jobs.toml"))
	if err := jm.Load(); err != nil {
		t.Fatalf("load jobs: %v", err)
	}

	server := NewServer(&Options{
		AuthUsername: "test",
		AuthPassword: "test",
		Supervisor:   sup,
		JobManager:   jm,
		EventBus:     events.New(),
	})
	ts := httptest.NewServer(server.mux)
	t.Cleanup(ts.Close)
	return server, ts
}

func authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte("test:test"))
}

func doRequest(t *testing.T, method, url, body string, authed bool) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", authHeader())
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthEndpointNoAuth(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/health", "", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	health := decodeBody[models.HealthData](t, resp)
	if health.Status != "ok" {
		t.Errorf("health status = %q, want ok", health.Status)
	}
}

func TestVersionEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/version", "", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	ver := decodeBody[models.VersionData](t, resp)
	if ver.Version == "" || ver.GoVersion == "" {
		t.Errorf("incomplete version payload: %+v", ver)
	}
}

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/training/status", "", false)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}
	if got := resp.Header.Get("WWW-Authenticate"); !strings.Contains(got, "Basic") {
		t.Errorf("WWW-Authenticate = %q", got)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/training/status", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", resp.StatusCode)
	}
	status := decodeBody[models.TrainingStatusData](t, resp)
	if status.Status != "idle" {
		t.Errorf("training status = %q, want idle", status.Status)
	}
}

func TestStopWhenIdleReturnsIdle(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/training/stop",
		`{"grace_period_seconds": 1}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	status := decodeBody[models.TrainingStatusData](t, resp)
	if status.Status != "idle" {
		t.Errorf("status = %q, want idle", status.Status)
	}
}

func TestResetWhenIdleConflicts(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/training/reset", "", true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestDatasetEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	dir := t.TempDir()
	for _, name := range []string{"a.tif", "a.gt.txt", "b.tif"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/dataset?path="+dir, "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data := decodeBody[models.DatasetData](t, resp)
	if data.ImageCount != 2 || data.PairCount != 1 || data.UnpairedTifs != 1 {
		t.Errorf("unexpected dataset summary: %+v", data)
	}
	if !data.Valid {
		t.Error("dataset with one pair should be valid")
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/dataset?path=/nonexistent", "", true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing dir status = %d, want 400", resp.StatusCode)
	}
}

func TestArtifactWithoutRun(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/training/artifact", "", true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestJobPresetCRUD(t *testing.T) {
	_, ts := newTestServer(t)

	preset := `{
		"name": "urdu-finetune",
		"model_name": "urd_custom",
		"start_model": "urd",
		"tessdata_dir": "/data/tessdata",
		"ground_truth_dir": "/data/gt",
		"max_iterations": 10000,
		"work_dir": "/data/tesstrain"
	}`

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/jobs", preset, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d, want 200", resp.StatusCode)
	}
	created := decodeBody[models.JobData](t, resp)
	if created.Name != "urdu-finetune" || created.CreatedAt == "" {
		t.Errorf("unexpected created preset: %+v", created)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/jobs", "", true)
	list := decodeBody[models.JobListData](t, resp)
	if len(list.Jobs) != 1 || list.Jobs[0].ModelName != "urd_custom" {
		t.Errorf("unexpected list: %+v", list)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/jobs/urdu-finetune", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, http.MethodDelete, ts.URL+"/api/jobs/urdu-finetune", "", true)
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/jobs/urdu-finetune", "", true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestCreateJobInvalid(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/jobs",
		`{"name": "broken"}`, true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRecentLogsEndpoint(t *testing.T) {
	logging.Initialize(logging.Config{Level: "info", Format: "text"})
	logging.GetLogger("api").Info("request handled")

	_, ts := newTestServer(t)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/logs?limit=10", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data := decodeBody[models.LogLinesData](t, resp)
	if data.Count != len(data.Lines) || data.Count == 0 {
		t.Fatalf("count = %d with %d lines", data.Count, len(data.Lines))
	}
	found := false
	for _, line := range data.Lines {
		if strings.Contains(line, "[api] request handled") {
			found = true
		}
	}
	if !found {
		t.Errorf("formatted log line not in response: %v", data.Lines)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/training/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS headers: %v", resp.Header)
	}
}
