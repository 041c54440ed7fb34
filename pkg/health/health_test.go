package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func upCheck(ctx context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusUp}
}

func TestRunAggregatesWorstStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all up", []Status{StatusUp, StatusUp}, StatusUp},
		{"one degraded", []Status{StatusUp, StatusDegraded}, StatusDegraded},
		{"one down", []Status{StatusUp, StatusDegraded, StatusDown}, StatusDown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checker := NewChecker()
			for i, status := range tc.statuses {
				checker.Register(string(rune('a'+i)), func(ctx context.Context) ComponentHealth {
					return ComponentHealth{Status: status}
				})
			}
			report := checker.Run(context.Background())
			if report.Status != tc.want {
				t.Errorf("overall status = %q, want %q", report.Status, tc.want)
			}
		})
	}
}

// Two checks that each wait for the other to start can only complete if
// Run executes them in parallel.
func TestRunExecutesChecksConcurrently(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	check := func(ctx context.Context) ComponentHealth {
		barrier.Done()
		barrier.Wait()
		return ComponentHealth{Status: StatusUp}
	}

	checker := NewChecker()
	checker.Register("first", check)
	checker.Register("second", check)

	done := make(chan Report, 1)
	go func() {
		done <- checker.Run(context.Background())
	}()
	select {
	case report := <-done:
		if report.Status != StatusUp {
			t.Errorf("status = %q, want %q", report.Status, StatusUp)
		}
		if len(report.Components) != 2 {
			t.Errorf("got %d components, want 2", len(report.Components))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish; checks appear to run sequentially")
	}
}

func TestRunRecordsLatency(t *testing.T) {
	checker := NewChecker()
	checker.Register("index", upCheck)
	report := checker.Run(context.Background())
	if report.Components["index"].Latency == "" {
		t.Error("component latency not recorded")
	}
}

func TestReadyHandler(t *testing.T) {
	checker := NewChecker()
	checker.Register("index", upCheck)
	checker.Register("redis", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDegraded, Message: "connection refused"}
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	checker.ReadyHandler()(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when a component is degraded", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Status != StatusDegraded {
		t.Errorf("report status = %q, want %q", report.Status, StatusDegraded)
	}
}
