package youtube

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	feedURLFormat      = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"
	thumbnailURLFormat = "https://i.ytimg.com/vi/%s/mqdefault.jpg"
)

// FeedClient fetches and parses a channel's public Atom feed. The feed is
// unauthenticated and only covers the channel's most recent uploads.
type FeedClient struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	userAgent  string
	timeout    time.Duration
}

// NewFeedClient creates a feed client using the given HTTP client
func NewFeedClient(httpClient *http.Client, userAgent string, timeout time.Duration) *FeedClient {
	return &FeedClient{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// FeedURL returns the public Atom feed URL for a channel
func FeedURL(channelID string) string {
	return fmt.Sprintf(feedURLFormat, channelID)
}

// ThumbnailURL synthesizes the thumbnail location for a video ID. The Atom
// feed carries no thumbnail metadata, but the URL shape is deterministic.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf(thumbnailURLFormat, videoID)
}

// Fetch retrieves and parses the channel's feed. Entries without a
// recognizable video ID are dropped.
func (f *FeedClient) Fetch(ctx context.Context, channelID string) ([]FeedEntry, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, FeedURL(channelID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		videoID := videoIDFromItem(item)
		if videoID == "" {
			continue
		}

		entry := FeedEntry{
			VideoID: videoID,
			Title:   item.Title,
			Link:    item.Link,
			Author:  authorFromItem(item),
		}
		if item.PublishedParsed != nil {
			entry.PublishedAt = *item.PublishedParsed
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// videoIDFromItem extracts the video ID from the yt:videoId extension,
// falling back to the "yt:video:<id>" entry ID.
func videoIDFromItem(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		if ids, ok := yt["videoId"]; ok && len(ids) > 0 && ids[0].Value != "" {
			return ids[0].Value
		}
	}

	if strings.HasPrefix(item.GUID, "yt:video:") {
		return strings.TrimPrefix(item.GUID, "yt:video:")
	}

	return ""
}

func authorFromItem(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			return author.Name
		}
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}
