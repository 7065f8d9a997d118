package metricsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

const examplePayload = `{
	"factory": {"totalProduction": 160, "avgUtilization": 72, "activeWorkers": 18},
	"workers": [{"id": "w1", "name": "Ann", "utilization": 85, "units": 40, "uph": 5}],
	"stations": [{"station_id": "s1", "name": "Press A", "status": "working", "units": 60}]
}`

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{URL: srv.URL + "/api/metrics", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestClient_Fetch_Success(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/metrics" {
			t.Errorf("expected /api/metrics, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(examplePayload))
	})

	snap, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Factory.TotalProduction != 160 {
		t.Errorf("expected totalProduction 160, got %d", snap.Factory.TotalProduction)
	}
	if len(snap.Workers) != 1 || snap.Workers[0].Name != "Ann" {
		t.Errorf("unexpected workers: %+v", snap.Workers)
	}
	if len(snap.Stations) != 1 || !snap.Stations[0].Status.IsWorking() {
		t.Errorf("unexpected stations: %+v", snap.Stations)
	}
}

func TestClient_Fetch_NonSuccessStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})

	_, err := c.Fetch(context.Background())
	var statusErr *domain.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *domain.StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", statusErr.Code)
	}
}

func TestClient_Fetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{URL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Fetch(context.Background())
	if !errors.Is(err, domain.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if domain.Outcome(err) != "transport_error" {
		t.Errorf("expected transport_error outcome, got %s", domain.Outcome(err))
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Fetch(context.Background())
	if !errors.Is(err, domain.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable on timeout, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid payload",
			body: examplePayload,
		},
		{
			name: "numeric ids",
			body: `{"factory":{"totalProduction":1,"avgUtilization":1,"activeWorkers":1},
				"workers":[{"id":7,"name":"N","utilization":1,"units":1,"uph":1}],
				"stations":[{"station_id":3,"name":"S","status":"idle","units":0}]}`,
		},
		{
			name:    "not json",
			body:    `<html>`,
			wantErr: "decoding response",
		},
		{
			name:    "missing factory",
			body:    `{"workers":[],"stations":[]}`,
			wantErr: "factory is missing",
		},
		{
			name:    "missing stations",
			body:    `{"factory":{"totalProduction":1,"avgUtilization":1,"activeWorkers":1},"workers":[]}`,
			wantErr: "stations is missing",
		},
		{
			name: "missing worker field",
			body: `{"factory":{"totalProduction":1,"avgUtilization":1,"activeWorkers":1},
				"workers":[{"id":"w1","name":"N","units":1,"uph":1}],"stations":[]}`,
			wantErr: "workers[0].utilization is missing",
		},
		{
			name: "bool id",
			body: `{"factory":{"totalProduction":1,"avgUtilization":1,"activeWorkers":1},
				"workers":[{"id":true,"name":"N","utilization":1,"units":1,"uph":1}],"stations":[]}`,
			wantErr: "decoding response",
		},
		{
			name: "out of range utilization",
			body: `{"factory":{"totalProduction":1,"avgUtilization":101,"activeWorkers":1},
				"workers":[],"stations":[]}`,
			wantErr: "factory.avgUtilization out of range",
		},
		{
			name: "fractional production",
			body: `{"factory":{"totalProduction":161.9,"avgUtilization":1,"activeWorkers":1},
				"workers":[],"stations":[]}`,
			wantErr: "factory.totalProduction is not an integer",
		},
		{
			name: "fractional worker units",
			body: `{"factory":{"totalProduction":1,"avgUtilization":1,"activeWorkers":1},
				"workers":[{"id":"w1","name":"N","utilization":1,"units":40.7,"uph":1}],"stations":[]}`,
			wantErr: "workers[0].units is not an integer",
		},
		{
			name: "production beyond int64",
			body: `{"factory":{"totalProduction":1e19,"avgUtilization":1,"activeWorkers":1},
				"workers":[],"stations":[]}`,
			wantErr: "factory.totalProduction exceeds the integer range",
		},
		{
			name: "integral float accepted",
			body: `{"factory":{"totalProduction":160.0,"avgUtilization":1,"activeWorkers":1},
				"workers":[],"stations":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Decode([]byte(tt.body))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if snap == nil {
					t.Fatal("expected snapshot")
				}
				return
			}

			var schemaErr *domain.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *domain.SchemaError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestDecode_NumericIDsKeepText(t *testing.T) {
	snap, err := Decode([]byte(`{"factory":{"totalProduction":0,"avgUtilization":0,"activeWorkers":0},
		"workers":[{"id":12,"name":"N","utilization":1,"units":1,"uph":1}],"stations":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Workers[0].ID != "12" {
		t.Errorf("expected id 12, got %q", snap.Workers[0].ID)
	}
}
