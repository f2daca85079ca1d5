package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkzt/ytsubs/app/database"
	"github.com/mkzt/ytsubs/app/youtube"
)

type fakeUploadsAPI struct {
	pages      map[string]*youtube.PlaylistPage // keyed by pageToken
	requested  []string
	err        error
	errOnToken string
}

func (f *fakeUploadsAPI) GetUploadsPage(ctx context.Context, playlistID, pageToken string) (*youtube.PlaylistPage, error) {
	f.requested = append(f.requested, pageToken)
	if f.err != nil && (f.errOnToken == "" || f.errOnToken == pageToken) {
		return nil, f.err
	}
	page, ok := f.pages[pageToken]
	if !ok {
		return &youtube.PlaylistPage{}, nil
	}
	return page, nil
}

type fakeChannelRepo struct {
	database.ChannelRepository

	pending        []database.Channel
	cursors        map[string]string
	fullyLoaded    map[string]bool
	pendingListErr error
}

func newFakeChannelRepo(pending ...database.Channel) *fakeChannelRepo {
	return &fakeChannelRepo{
		pending:     pending,
		cursors:     make(map[string]string),
		fullyLoaded: make(map[string]bool),
	}
}

func (f *fakeChannelRepo) ListPendingBackfill() ([]database.Channel, error) {
	return f.pending, f.pendingListErr
}

func (f *fakeChannelRepo) ListChannels(archived bool) ([]database.Channel, error) {
	return f.pending, f.pendingListErr
}

func (f *fakeChannelRepo) UpdateCursor(id string, nextPageToken string) error {
	f.cursors[id] = nextPageToken
	return nil
}

func (f *fakeChannelRepo) MarkFullyBackfilled(id string) error {
	f.fullyLoaded[id] = true
	return nil
}

type fakeVideoRepo struct {
	database.VideoRepository

	stored    map[string]database.Video
	upsertErr error
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{stored: make(map[string]database.Video)}
}

func (f *fakeVideoRepo) UpsertVideo(v database.Video) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	if _, exists := f.stored[v.ID]; exists {
		return false, nil
	}
	f.stored[v.ID] = v
	return true, nil
}

func item(id, title string) youtube.VideoItem {
	return youtube.VideoItem{
		VideoID:     id,
		Title:       title,
		PublishedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func pendingChannel(id string) database.Channel {
	return database.Channel{
		ID:        id,
		Name:      "Channel " + id,
		UploadsID: "UU" + id,
	}
}

func TestBackfiller_RunChannel_PaginatesToCompletion(t *testing.T) {
	api := &fakeUploadsAPI{pages: map[string]*youtube.PlaylistPage{
		"": {
			Items:         []youtube.VideoItem{item("v1", "First"), item("v2", "Second")},
			NextPageToken: "page2",
		},
		"page2": {
			Items: []youtube.VideoItem{item("v3", "Third")},
		},
	}}
	channels := newFakeChannelRepo()
	videos := newFakeVideoRepo()

	ch := pendingChannel("UC1")
	b := NewBackfiller(api, channels, videos)

	if err := b.RunChannel(context.Background(), ch); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(videos.stored) != 3 {
		t.Errorf("Expected 3 stored videos, got %d", len(videos.stored))
	}
	if !channels.fullyLoaded["UC1"] {
		t.Error("Expected channel to be marked fully backfilled")
	}
	if channels.cursors["UC1"] != "page2" {
		t.Errorf("Expected cursor persisted as 'page2', got %q", channels.cursors["UC1"])
	}
}

func TestBackfiller_RunChannel_ResumesFromCursor(t *testing.T) {
	api := &fakeUploadsAPI{pages: map[string]*youtube.PlaylistPage{
		"page3": {Items: []youtube.VideoItem{item("v9", "Ninth")}},
	}}
	channels := newFakeChannelRepo()
	videos := newFakeVideoRepo()

	cursor := "page3"
	ch := pendingChannel("UC1")
	ch.NextPageToken = &cursor

	b := NewBackfiller(api, channels, videos)
	if err := b.RunChannel(context.Background(), ch); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(api.requested) == 0 || api.requested[0] != "page3" {
		t.Errorf("Expected first request with saved cursor 'page3', got %v", api.requested)
	}
}

func TestBackfiller_RunChannel_EmptyPageMarksFullyLoaded(t *testing.T) {
	api := &fakeUploadsAPI{pages: map[string]*youtube.PlaylistPage{}}
	channels := newFakeChannelRepo()
	videos := newFakeVideoRepo()

	b := NewBackfiller(api, channels, videos)
	if err := b.RunChannel(context.Background(), pendingChannel("UC1")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !channels.fullyLoaded["UC1"] {
		t.Error("Expected empty playlist to mark channel fully backfilled")
	}
	if len(videos.stored) != 0 {
		t.Errorf("Expected no stored videos, got %d", len(videos.stored))
	}
}

func TestBackfiller_RunChannel_SkipsShorts(t *testing.T) {
	api := &fakeUploadsAPI{pages: map[string]*youtube.PlaylistPage{
		"": {Items: []youtube.VideoItem{
			item("v1", "Regular upload"),
			item("v2", "Quick clip #Shorts"),
		}},
	}}
	channels := newFakeChannelRepo()
	videos := newFakeVideoRepo()

	b := NewBackfiller(api, channels, videos)
	if err := b.RunChannel(context.Background(), pendingChannel("UC1")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(videos.stored) != 1 {
		t.Fatalf("Expected 1 stored video, got %d", len(videos.stored))
	}
	if _, ok := videos.stored["v2"]; ok {
		t.Error("Expected shorts video to be excluded from storage")
	}
}

func TestBackfiller_RunChannel_SkipsFullyLoadedAndArchived(t *testing.T) {
	api := &fakeUploadsAPI{}
	channels := newFakeChannelRepo()
	videos := newFakeVideoRepo()
	b := NewBackfiller(api, channels, videos)

	loaded := pendingChannel("UC1")
	loaded.FullyLoaded = true
	if err := b.RunChannel(context.Background(), loaded); err != nil {
		t.Fatalf("Expected no error for fully loaded channel, got %v", err)
	}

	archivedAt := time.Now()
	archived := pendingChannel("UC2")
	archived.ArchivedAt = &archivedAt
	if err := b.RunChannel(context.Background(), archived); err != nil {
		t.Fatalf("Expected no error for archived channel, got %v", err)
	}

	if len(api.requested) != 0 {
		t.Errorf("Expected no upstream requests, got %d", len(api.requested))
	}
}

func TestBackfiller_Run_ChannelFailureDoesNotBlockSiblings(t *testing.T) {
	api := &fakeUploadsAPI{
		pages: map[string]*youtube.PlaylistPage{
			"": {Items: []youtube.VideoItem{item("v1", "First")}},
		},
		err:        errors.New("upstream unavailable"),
		errOnToken: "boom",
	}
	// First channel resumes from a token that always fails, second starts fresh
	failToken := "boom"
	failing := pendingChannel("UC-fail")
	failing.NextPageToken = &failToken

	channels := newFakeChannelRepo(failing, pendingChannel("UC-ok"))
	videos := newFakeVideoRepo()

	b := NewBackfiller(api, channels, videos)
	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error from Run, got %v", err)
	}

	if _, ok := videos.stored["v1"]; !ok {
		t.Error("Expected second channel to be backfilled despite first channel failing")
	}
	if !channels.fullyLoaded["UC-ok"] {
		t.Error("Expected second channel marked fully backfilled")
	}
}

func TestBackfiller_RunChannel_CancelledContext(t *testing.T) {
	api := &fakeUploadsAPI{pages: map[string]*youtube.PlaylistPage{
		"": {Items: []youtube.VideoItem{item("v1", "First")}, NextPageToken: "page2"},
	}}
	channels := newFakeChannelRepo()
	videos := newFakeVideoRepo()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBackfiller(api, channels, videos)
	if err := b.RunChannel(ctx, pendingChannel("UC1")); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
