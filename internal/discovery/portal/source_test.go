package portal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"civicintel/internal/config"
	"civicintel/internal/discovery"
	"civicintel/internal/discovery/portal"
	"civicintel/internal/logging"
	"civicintel/internal/meetings"
)

// siteSource builds a portal source whose per-site clients all talk to
// the test server.
func siteSource(t *testing.T, server *httptest.Server) *portal.MultiSource {
	t.Helper()
	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	hc := &http.Client{Transport: &rewriteTransport{host: target.Host}}
	return portal.NewSource(logging.NewNop(), portal.WithHTTPClient(hc)).
		WithSleeper(func(time.Duration) {})
}

func TestResolveVideoUpgradesPlayerPageURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player/clip/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><script>var media = "https://archive.city.example.gov/city/42.mp4";</script></html>`))
	}))
	defer server.Close()

	source := siteSource(t, server)
	jurisdiction := config.Jurisdiction{Name: "Springfield", PortalSite: "city.example.gov"}
	rec := meetings.Record{
		ID:       "granicus_42",
		VideoURL: "https://city.example.gov/player/clip/42",
		Source:   meetings.SourcePortal,
	}

	resolved, err := source.ResolveVideo(context.Background(), jurisdiction, rec)
	if err != nil {
		t.Fatalf("ResolveVideo returned error: %v", err)
	}
	if resolved != "https://archive.city.example.gov/city/42.mp4" {
		t.Errorf("resolved url = %q", resolved)
	}
}

func TestResolveVideoLeavesDirectURLsAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
		http.NotFound(w, r)
	}))
	defer server.Close()

	source := siteSource(t, server)
	jurisdiction := config.Jurisdiction{Name: "Springfield", PortalSite: "city.example.gov"}
	rec := meetings.Record{
		ID:       "granicus_42",
		VideoURL: "https://archive.city.example.gov/city/42.mp4",
		Source:   meetings.SourcePortal,
	}

	resolved, err := source.ResolveVideo(context.Background(), jurisdiction, rec)
	if err != nil {
		t.Fatalf("ResolveVideo returned error: %v", err)
	}
	if resolved != rec.VideoURL {
		t.Errorf("resolved url = %q, want unchanged", resolved)
	}
}

func TestDownloadDocumentsSavesAgendasAndMinutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/clips":
			w.Write([]byte(`[
				{"id": "11", "title": "City Council", "agenda_url": "https://city.example.gov/agendas/11.pdf", "minutes_url": "https://city.example.gov/minutes/11.pdf"},
				{"id": "12", "title": "Study Session"},
				{"id": "13", "title": "Planning Board", "agenda_url": "https://city.example.gov/agendas/13.pdf"}
			]`))
		case "/agendas/11.pdf", "/minutes/11.pdf", "/agendas/13.pdf":
			w.Write([]byte("%PDF-1.4 stub"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	slept := 0
	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	hc := &http.Client{Transport: &rewriteTransport{host: target.Host}}
	source := portal.NewSource(logging.NewNop(), portal.WithHTTPClient(hc)).
		WithSleeper(func(time.Duration) { slept++ })

	dir := t.TempDir()
	agendaDir := filepath.Join(dir, "agendas")
	minutesDir := filepath.Join(dir, "minutes")
	params := discovery.Params{
		Jurisdiction: config.Jurisdiction{Name: "Springfield", PortalSite: "city.example.gov"},
		Limit:        50,
	}

	saved, err := source.DownloadDocuments(context.Background(), params, agendaDir, minutesDir)
	if err != nil {
		t.Fatalf("DownloadDocuments returned error: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("saved %d documents, want 3: %v", len(saved), saved)
	}
	for _, path := range []string{
		filepath.Join(agendaDir, "11_agenda.pdf"),
		filepath.Join(minutesDir, "11_minutes.pdf"),
		filepath.Join(agendaDir, "13_agenda.pdf"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected document at %s: %v", path, err)
		}
	}
	// Clip 12 has no documents, so only the two document-bearing clips pace.
	if slept != 2 {
		t.Errorf("slept %d times, want 2", slept)
	}
}

func TestDownloadDocumentsSkipsJurisdictionsWithoutPortal(t *testing.T) {
	source := portal.NewSource(logging.NewNop())
	saved, err := source.DownloadDocuments(context.Background(), discovery.Params{
		Jurisdiction: config.Jurisdiction{Name: "Springfield"},
	}, t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("DownloadDocuments returned error: %v", err)
	}
	if saved != nil {
		t.Errorf("saved = %v, want nothing", saved)
	}
}
