package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMailgunSend_UsesAPIBase(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	m := NewMailgun("mg.example.com", "key-test", "Game API <noreply@example.com>").WithAPIBase(srv.URL)
	if err := m.Send(context.Background(), "player@example.com", "Welcome", "hi", "<p>hi</p>"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if !strings.HasSuffix(gotPath, "/mg.example.com/messages") {
		t.Errorf("path = %s", gotPath)
	}
}

func TestMailgunSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewMailgun("mg.example.com", "key-test", "noreply@example.com").WithAPIBase(srv.URL)
	if err := m.Send(context.Background(), "player@example.com", "Welcome", "hi", ""); err == nil {
		t.Fatal("Send() error = nil, want error")
	}
}
