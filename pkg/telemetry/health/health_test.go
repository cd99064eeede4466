package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cmmc/validator/pkg/resolver"
	"cmmc/validator/pkg/vocabulary"
)

type fakeVocabulary struct {
	set *vocabulary.Set
}

func (f fakeVocabulary) Get() (*vocabulary.Set, error) {
	if f.set == nil {
		return nil, vocabulary.ErrNotLoaded
	}
	return f.set, nil
}

type fakeService struct {
	name   string
	health resolver.Health
}

func (f fakeService) Name() string               { return f.name }
func (f fakeService) GetHealth() resolver.Health { return f.health }

func loadedVocabulary(t *testing.T) fakeVocabulary {
	t.Helper()
	set, err := vocabulary.New([]string{"input_source"}, [][]string{{"Isolated"}})
	if err != nil {
		t.Fatalf("failed to build vocabulary: %v", err)
	}
	return fakeVocabulary{set: set}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{name: "default timeout", timeout: 0, expectedTimeout: 5 * time.Second},
		{name: "custom timeout", timeout: 10 * time.Second, expectedTimeout: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)

			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if checker.CheckCount() != 0 {
				t.Errorf("expected 0 checks, got %d", checker.CheckCount())
			}
		})
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("vocabulary", func(ctx context.Context) error { return nil })
	checker.RegisterOptionalCheck("identifier", func(ctx context.Context) error { return nil })

	names := checker.ListChecks()
	if len(names) != 2 || names[0] != "identifier" || names[1] != "vocabulary" {
		t.Errorf("unexpected checks %v", names)
	}

	checker.UnregisterCheck("identifier")
	if checker.CheckCount() != 1 {
		t.Errorf("expected 1 check after unregister, got %d", checker.CheckCount())
	}
}

func TestCheckReadiness(t *testing.T) {
	failing := func(ctx context.Context) error { return errors.New("down") }
	passing := func(ctx context.Context) error { return nil }

	tests := []struct {
		name     string
		critical CheckFunc
		optional CheckFunc
		want     string
		ready    bool
	}{
		{"all passing", passing, passing, StatusReady, true},
		{"optional failing", passing, failing, StatusDegraded, true},
		{"critical failing", failing, passing, StatusUnavailable, false},
		{"both failing", failing, failing, StatusUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			checker.RegisterCheck("vocabulary", tt.critical)
			checker.RegisterOptionalCheck("structure", tt.optional)

			status := checker.CheckReadiness(context.Background())

			if status.Status != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, status.Status)
			}
			if status.Ready() != tt.ready {
				t.Errorf("expected ready=%v", tt.ready)
			}
			if !status.Checks["vocabulary"].Critical || status.Checks["structure"].Critical {
				t.Errorf("criticality not reported: %+v", status.Checks)
			}
		})
	}
}

func TestCheckReadiness_NoChecks(t *testing.T) {
	status := New(time.Second).CheckReadiness(context.Background())
	if status.Status != StatusReady {
		t.Errorf("expected ready with no checks, got %q", status.Status)
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())

	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("expected timeout result, got %+v", result)
	}
}

func TestVocabularyCheck(t *testing.T) {
	if err := VocabularyCheck(fakeVocabulary{})(context.Background()); !errors.Is(err, vocabulary.ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
	if err := VocabularyCheck(loadedVocabulary(t))(context.Background()); err != nil {
		t.Errorf("expected loaded vocabulary to pass, got %v", err)
	}
}

func TestServiceCheck(t *testing.T) {
	healthy := fakeService{name: "identifier", health: resolver.Health{IsHealthy: true}}
	if err := ServiceCheck(healthy)(context.Background()); err != nil {
		t.Errorf("expected healthy service to pass, got %v", err)
	}

	cause := errors.New("status 502")
	down := fakeService{name: "identifier", health: resolver.Health{ConsecutiveFailures: 3, LastError: cause}}
	err := ServiceCheck(down)(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "3 consecutive failures") {
		t.Errorf("expected failure count in message, got %q", err)
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("vocabulary", VocabularyCheck(fakeVocabulary{}))

	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("liveness must not depend on checks, got %d", rec.Code)
	}

	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Status != StatusOK {
		t.Errorf("expected status ok, got %q", status.Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		vocab      fakeVocabulary
		service    fakeService
		wantCode   int
		wantStatus string
	}{
		{
			name:       "ready",
			vocab:      loadedVocabulary(t),
			service:    fakeService{name: "structure", health: resolver.Health{IsHealthy: true}},
			wantCode:   http.StatusOK,
			wantStatus: StatusReady,
		},
		{
			name:       "degraded service",
			vocab:      loadedVocabulary(t),
			service:    fakeService{name: "structure"},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name:       "no vocabulary",
			vocab:      fakeVocabulary{},
			service:    fakeService{name: "structure", health: resolver.Health{IsHealthy: true}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			checker.RegisterCheck("vocabulary", VocabularyCheck(tt.vocab))
			checker.RegisterOptionalCheck("structure", ServiceCheck(tt.service))

			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, rec.Code)
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, status.Status)
			}
		})
	}
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	checker := New(time.Second)

	rec := httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodPost, "/health/ready", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandlers_HeadHasNoBody(t *testing.T) {
	checker := New(time.Second)

	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodHead, "/health/live", nil))

	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("expected empty 200, got %d with %d bytes", rec.Code, rec.Body.Len())
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler(NewVersionInfo("1.2.0", "abc123", "2026-01-01"))(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.Version != "1.2.0" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("unexpected version info %+v", info)
	}
}
