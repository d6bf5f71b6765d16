package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/CTAG07/Verbena/pkg/render"
	"github.com/CTAG07/Verbena/pkg/stats"
)

var testViews = fstest.MapFS{
	"index.html":  {Data: []byte(`<h1>{{ .title }}</h1><p>{{ .path }} {{ .site.name }}</p>`)},
	"about.html":  {Data: []byte(`about {{ .year }}`)},
	"broken.html": {Data: []byte(`{{ .missing }}`)},
	"layout.html": {Data: []byte(`<html>{{ .body }}</html>`)},
	"error.html":  {Data: []byte(`E{{ .status }}`)},
}

func newTestServer(t *testing.T, views fstest.MapFS, token string) (*Server, chan string) {
	t.Helper()

	db, err := initDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err = stats.SetupSchema(db); err != nil {
		t.Fatalf("failed to setup stats schema: %v", err)
	}

	config := &Config{Server: DefaultServerConfig(), Render: render.DefaultConfig()}
	config.Server.ApiToken = token
	actionChan := make(chan string, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	server, err := NewServer(config, logger, db, actionChan, render.WithFS(views))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, actionChan
}

func doRequest(h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestViewForPath(t *testing.T) {
	tests := []struct {
		path string
		view string
		ok   bool
	}{
		{"/", "index.html", true},
		{"/about", "about.html", true},
		{"/about.html", "about.html", true},
		{"/docs/", "docs/index.html", true},
		{"/../etc/passwd", "etc/passwd.html", true},
		{"/error", "", false},
	}
	for _, tt := range tests {
		view, ok := viewForPath(tt.path)
		if view != tt.view || ok != tt.ok {
			t.Errorf("viewForPath(%q) = (%q, %v), want (%q, %v)", tt.path, view, ok, tt.view, tt.ok)
		}
	}
}

func TestSite(t *testing.T) {
	s, _ := newTestServer(t, testViews, "")
	h := s.SiteHandler()

	tests := []struct {
		name   string
		method string
		target string
		status int
		body   string
	}{
		{"Index", http.MethodGet, "/", http.StatusOK, "<html><h1>index</h1><p>/ Verbena</p></html>"},
		{"NotFound", http.MethodGet, "/nope", http.StatusNotFound, "E404"},
		{"RenderFailure", http.MethodGet, "/broken", http.StatusInternalServerError, "E500"},
		{"ErrorViewIsNotRoutable", http.MethodGet, "/error", http.StatusNotFound, "E404"},
		{"Favicon", http.MethodGet, "/favicon.ico", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, tt.method, tt.target, "")
			if rec.Code != tt.status || rec.Body.String() != tt.body {
				t.Errorf("expected (%d, %q), got (%d, %q)", tt.status, tt.body, rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("MethodNotAllowed", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/", "")
		if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != "GET, HEAD" {
			t.Errorf("unexpected response %d %v", rec.Code, rec.Header())
		}
	})

	t.Run("Year", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/about", "")
		want := "<html>about " + time.Now().Format("2006") + "</html>"
		if rec.Body.String() != want {
			t.Errorf("expected %q, got %q", want, rec.Body.String())
		}
	})
}

func TestSite_ErrorViewFallback(t *testing.T) {
	views := fstest.MapFS{"layout.html": testViews["layout.html"]}
	s, _ := newTestServer(t, views, "")

	rec := doRequest(s.SiteHandler(), http.MethodGet, "/", "")
	if rec.Code != http.StatusNotFound || strings.TrimSpace(rec.Body.String()) != "Not Found" {
		t.Errorf("expected a plain 404, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestSite_RecordsStats(t *testing.T) {
	s, _ := newTestServer(t, testViews, "")
	for i := 0; i < 2; i++ {
		doRequest(s.SiteHandler(), http.MethodGet, "/", "")
	}

	top, err := s.stats.TopViews(context.Background(), 1)
	if err != nil {
		t.Fatalf("TopViews failed: %v", err)
	}
	if len(top) != 1 || top[0].View != "index.html" || top[0].TotalRenders != 2 {
		t.Errorf("unexpected stats %+v", top)
	}
}

func TestAPI_Auth(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		s, _ := newTestServer(t, testViews, "")
		if rec := doRequest(s.apiMux, http.MethodGet, "/api/health", ""); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("NoTokenConfigured", func(t *testing.T) {
		s, _ := newTestServer(t, testViews, "")
		if rec := doRequest(s.apiMux, http.MethodGet, "/api/stats/summary", "anything"); rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	s, _ := newTestServer(t, testViews, "secret")
	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"Missing", "", http.StatusUnauthorized},
		{"Wrong", "guess", http.StatusUnauthorized},
		{"Valid", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doRequest(s.apiMux, http.MethodGet, "/api/server/version", tt.token); rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestAPI_Stats(t *testing.T) {
	s, _ := newTestServer(t, testViews, "secret")
	doRequest(s.SiteHandler(), http.MethodGet, "/", "")
	doRequest(s.SiteHandler(), http.MethodGet, "/about", "")
	doRequest(s.SiteHandler(), http.MethodGet, "/about", "")

	rec := doRequest(s.apiMux, http.MethodGet, "/api/stats/summary", "secret")
	var summary SummaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.TotalRenders != 3 || summary.UniqueViews != 2 || summary.CachedViews != 3 {
		t.Errorf("unexpected summary %+v", summary)
	}

	rec = doRequest(s.apiMux, http.MethodGet, "/api/stats/top_views?limit=1", "secret")
	var top []stats.ViewStats
	if err := json.NewDecoder(rec.Body).Decode(&top); err != nil {
		t.Fatalf("failed to decode top views: %v", err)
	}
	if len(top) != 1 || top[0].View != "about.html" {
		t.Errorf("unexpected top views %+v", top)
	}

	if rec = doRequest(s.apiMux, http.MethodGet, "/api/stats/top_views?limit=x", "secret"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad limit, got %d", rec.Code)
	}
}

func TestAPI_Actions(t *testing.T) {
	s, actionChan := newTestServer(t, testViews, "secret")

	if rec := doRequest(s.apiMux, http.MethodGet, "/api/server/restart", "secret"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
	if rec := doRequest(s.apiMux, http.MethodPost, "/api/server/restart", "secret"); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	select {
	case action := <-actionChan:
		if action != actionRestart {
			t.Errorf("expected %q, got %q", actionRestart, action)
		}
	case <-time.After(time.Second):
		t.Fatal("no action was sent")
	}
}
