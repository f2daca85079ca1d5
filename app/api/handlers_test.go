package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkzt/ytsubs/app/database"
	"github.com/mkzt/ytsubs/app/registry"
)

type fakeSyncer struct {
	runs int
	err  error
}

func (f *fakeSyncer) Run(ctx context.Context) error {
	f.runs++
	return f.err
}

type fakeChannelRepo struct {
	database.ChannelRepository
}

func (f *fakeChannelRepo) GetChannelCount() (int, error) {
	return 1, nil
}

type fakeVideoRepo struct {
	database.VideoRepository

	rows   []database.VideoWithState
	pinned map[string]bool
}

func (f *fakeVideoRepo) ListActiveVideos() ([]database.VideoWithState, error) {
	return f.rows, nil
}

func (f *fakeVideoRepo) SetPinned(videoID string, pinned bool) error {
	if f.pinned == nil {
		f.pinned = make(map[string]bool)
	}
	f.pinned[videoID] = pinned
	return nil
}

func (f *fakeVideoRepo) GetVideoCount() (int, error) {
	return len(f.rows), nil
}

type fakeWatchRepo struct {
	database.WatchRepository

	imported []string
	watched  map[string]bool
}

func (f *fakeWatchRepo) SetWatched(videoID string, watched bool) error {
	if f.watched == nil {
		f.watched = make(map[string]bool)
	}
	f.watched[videoID] = watched
	return nil
}

func (f *fakeWatchRepo) ImportWatched(videoIDs []string) (int, error) {
	f.imported = append(f.imported, videoIDs...)
	return len(videoIDs), nil
}

type fakeSettingsRepo struct {
	values map[string]string
}

func (f *fakeSettingsRepo) Get(key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeSettingsRepo) Set(key, value string) error {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

func newTestServer(syncer *fakeSyncer, videos *fakeVideoRepo, watched *fakeWatchRepo, settings *fakeSettingsRepo) *gin.Engine {
	channels := &fakeChannelRepo{}
	reg := registry.New(channels, nil, nil, nil)
	handler := NewHandler(reg, syncer, channels, videos, watched, settings)
	return NewServer(handler)
}

func listingRow(id string, published time.Time) database.VideoWithState {
	return database.VideoWithState{
		Video: database.Video{
			ID:          id,
			ChannelID:   "UC1",
			Title:       "Video " + id,
			URL:         "https://www.youtube.com/watch?v=" + id,
			PublishedAt: published,
		},
		ChannelName: "Channel One",
		GroupName:   "Tech",
	}
}

func TestGetVideos_SyncsAndFilters(t *testing.T) {
	now := time.Now().UTC()
	syncer := &fakeSyncer{}
	videos := &fakeVideoRepo{rows: []database.VideoWithState{
		listingRow("v1", now),
		listingRow("v2", now.Add(-time.Hour)),
	}}

	server := newTestServer(syncer, videos, &fakeWatchRepo{}, &fakeSettingsRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/videos?limit=1", nil)
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if syncer.runs != 1 {
		t.Errorf("Expected listing to trigger one feed sync, got %d", syncer.runs)
	}

	var body struct {
		Videos []videoResponse `json:"videos"`
		Total  int             `json:"total"`
		Label  string          `json:"label"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(body.Videos) != 1 || body.Videos[0].ID != "v1" {
		t.Errorf("Expected newest video only, got %+v", body.Videos)
	}
	if body.Total != 2 {
		t.Errorf("Expected total 2 before truncation, got %d", body.Total)
	}
	if body.Label != "All" {
		t.Errorf("Expected label 'All', got %q", body.Label)
	}
}

func TestGetVideos_SyncFailureDoesNotFailListing(t *testing.T) {
	syncer := &fakeSyncer{err: context.DeadlineExceeded}
	videos := &fakeVideoRepo{rows: []database.VideoWithState{listingRow("v1", time.Now())}}

	server := newTestServer(syncer, videos, &fakeWatchRepo{}, &fakeSettingsRepo{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 despite sync failure, got %d", w.Code)
	}
}

func TestGetVideos_AppliesStoredExcludeKeywords(t *testing.T) {
	now := time.Now().UTC()
	spoiler := listingRow("v1", now)
	spoiler.Title = "Finale spoiler talk"

	videos := &fakeVideoRepo{rows: []database.VideoWithState{spoiler, listingRow("v2", now)}}
	settings := &fakeSettingsRepo{values: map[string]string{database.SettingExcludeKeywords: "spoiler"}}

	server := newTestServer(&fakeSyncer{}, videos, &fakeWatchRepo{}, settings)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	var body struct {
		Videos []videoResponse `json:"videos"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Videos) != 1 || body.Videos[0].ID != "v2" {
		t.Errorf("Expected keyword-excluded listing, got %+v", body.Videos)
	}
}

func TestSetPin(t *testing.T) {
	videos := &fakeVideoRepo{}
	server := newTestServer(&fakeSyncer{}, videos, &fakeWatchRepo{}, &fakeSettingsRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/pin",
		strings.NewReader(`{"videoId": "v1", "isPinned": true}`))
	req.Header.Set("Content-Type", "application/json")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !videos.pinned["v1"] {
		t.Error("Expected v1 to be pinned")
	}

	// Missing video ID is rejected
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/pin", strings.NewReader(`{"isPinned": true}`))
	req.Header.Set("Content-Type", "application/json")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing video ID, got %d", w.Code)
	}
}

func TestSetWatched(t *testing.T) {
	watched := &fakeWatchRepo{}
	server := newTestServer(&fakeSyncer{}, &fakeVideoRepo{}, watched, &fakeSettingsRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/watched",
		strings.NewReader(`{"videoId": "v1", "watched": true}`))
	req.Header.Set("Content-Type", "application/json")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !watched.watched["v1"] {
		t.Error("Expected v1 marked watched")
	}
}

func TestImportHistory_ExtractsVideoIDs(t *testing.T) {
	watched := &fakeWatchRepo{}
	server := newTestServer(&fakeSyncer{}, &fakeVideoRepo{}, watched, &fakeSettingsRepo{})

	payload := `[
		{"titleUrl": "https://www.youtube.com/watch?v=abc123"},
		{"titleUrl": "https://www.youtube.com/watch?v=def456&t=120"},
		{"titleUrl": "https://www.youtube.com/playlist?list=PL1"},
		{"titleUrl": ""}
	]`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/import-history", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(watched.imported) != 2 {
		t.Fatalf("Expected 2 extracted IDs, got %v", watched.imported)
	}
	if watched.imported[0] != "abc123" || watched.imported[1] != "def456" {
		t.Errorf("Unexpected extracted IDs: %v", watched.imported)
	}
}

func TestExcludeKeywordsRoundTrip(t *testing.T) {
	settings := &fakeSettingsRepo{}
	server := newTestServer(&fakeSyncer{}, &fakeVideoRepo{}, &fakeWatchRepo{}, settings)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/settings/exclude-keywords",
		strings.NewReader(`{"keywords": "spoiler, reaction"}`))
	req.Header.Set("Content-Type", "application/json")
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/settings/exclude-keywords", nil))

	var body struct {
		Keywords string `json:"keywords"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Keywords != "spoiler, reaction" {
		t.Errorf("Expected stored keywords returned, got %q", body.Keywords)
	}
}

func TestGetHealth(t *testing.T) {
	server := newTestServer(&fakeSyncer{}, &fakeVideoRepo{}, &fakeWatchRepo{}, &fakeSettingsRepo{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := body["timestamp"]; !ok {
		t.Error("Expected timestamp in health response")
	}
}
