package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetSubscriptionStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      SubscriptionStatus
		wantLevel logrus.Level
	}{
		{name: "active", status: 200, body: `{"subscription_status":"active"}`, want: StatusActive},
		{name: "expired", status: 200, body: `{"subscription_status":"expired"}`, want: StatusExpired},
		{name: "other 2xx", status: 203, body: `{"subscription_status":"active"}`, want: StatusActive},
		{name: "not found", status: 404, body: `{"error":"no such user"}`, want: StatusNotFound, wantLevel: logrus.InfoLevel},
		{name: "server error", status: 500, body: `boom`, want: StatusUnknown, wantLevel: logrus.ErrorLevel},
		{name: "unauthorized", status: 401, body: `{}`, want: StatusUnknown, wantLevel: logrus.ErrorLevel},
		{name: "malformed json", status: 200, body: `{not json`, want: StatusUnknown, wantLevel: logrus.ErrorLevel},
		{name: "missing field", status: 200, body: `{}`, want: StatusUnknown, wantLevel: logrus.ErrorLevel},
		{name: "null field", status: 200, body: `{"subscription_status":null}`, want: StatusUnknown, wantLevel: logrus.ErrorLevel},
		{name: "unrecognised value", status: 200, body: `{"subscription_status":"trial"}`, want: StatusUnknown, wantLevel: logrus.ErrorLevel},
		{name: "case mismatch", status: 200, body: `{"subscription_status":"ACTIVE"}`, want: StatusUnknown, wantLevel: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			logger, hook := logtest.NewNullLogger()
			c := New(srv.URL, "key", time.Second, time.Second, logger)

			got := c.GetSubscriptionStatus(context.Background(), 42)
			if got != tt.want {
				t.Errorf("GetSubscriptionStatus() = %q, want %q", got, tt.want)
			}

			entry := hook.LastEntry()
			if tt.wantLevel == 0 {
				if entry != nil {
					t.Errorf("unexpected log entry: %s", entry.Message)
				}
				return
			}
			if entry == nil {
				t.Fatalf("no log entry, want level %v", tt.wantLevel)
			}
			if entry.Level != tt.wantLevel {
				t.Errorf("log level = %v, want %v", entry.Level, tt.wantLevel)
			}
			if entry.Data["user_id"] != int64(42) {
				t.Errorf("log user_id = %v, want 42", entry.Data["user_id"])
			}
		})
	}
}

func TestGetSubscriptionStatus_Request(t *testing.T) {
	var gotPath, gotAuth, gotType, gotMethod string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"subscription_status":"active"}`))
	})

	c := New(srv.URL+"/", "secret-key", 0, 0, nil)
	if got := c.GetSubscriptionStatus(context.Background(), 7); got != StatusActive {
		t.Fatalf("GetSubscriptionStatus() = %q", got)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %s, want GET", gotMethod)
	}
	if gotPath != "/users/7/billing" {
		t.Errorf("path = %q, want /users/7/billing", gotPath)
	}
	if gotAuth != "secret-key" {
		t.Errorf("Authorization = %q, want the raw api key", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
}

func TestGetSubscriptionStatus_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	logger, hook := logtest.NewNullLogger()
	c := New(srv.URL, "key", 50*time.Millisecond, 50*time.Millisecond, logger)

	start := time.Now()
	got := c.GetSubscriptionStatus(context.Background(), 1)
	if got != StatusUnknown {
		t.Errorf("GetSubscriptionStatus() = %q, want unknown", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("call took %v, want it bounded by the timeout", elapsed)
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.ErrorLevel {
		t.Errorf("want an error log entry, got %+v", e)
	}
}

func TestGetSubscriptionStatus_CanceledContext(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"subscription_status":"active"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, "key", time.Second, time.Second, nil)
	if got := c.GetSubscriptionStatus(ctx, 1); got != StatusUnknown {
		t.Errorf("GetSubscriptionStatus() = %q, want unknown", got)
	}
}

func TestGetSubscriptionStatus_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	logger, hook := logtest.NewNullLogger()
	c := New(addr, "key", time.Second, time.Second, logger)
	if got := c.GetSubscriptionStatus(context.Background(), 1); got != StatusUnknown {
		t.Errorf("GetSubscriptionStatus() = %q, want unknown", got)
	}
	e := hook.LastEntry()
	if e == nil || !strings.Contains(e.Message, "billing request failed") {
		t.Errorf("want transport failure logged, got %+v", e)
	}
}
