package youtube

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// Client wraps the YouTube Data API v3 for channel metadata lookup and
// paginated uploads-playlist retrieval.
type Client struct {
	service  *youtubeapi.Service
	pageSize int64
	timeout  time.Duration
}

// NewClient creates a Data API client. pageSize bounds the items returned
// per uploads-playlist page, timeout bounds each upstream call.
func NewClient(ctx context.Context, apiKey string, pageSize int, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}

	service, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	return &Client{
		service:  service,
		pageSize: int64(pageSize),
		timeout:  timeout,
	}, nil
}

// GetChannelInfo resolves a channel's display name and uploads playlist ID.
// Returns ErrChannelNotFound when the ID resolves to nothing.
func (c *Client) GetChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.service.Channels.List([]string{"snippet", "contentDetails"}).
		Id(channelID).
		Context(callCtx).
		Do()
	if err != nil {
		return nil, mapAPIError(err)
	}

	if len(resp.Items) == 0 {
		return nil, ErrChannelNotFound
	}

	item := resp.Items[0]
	if item.Snippet == nil || item.ContentDetails == nil || item.ContentDetails.RelatedPlaylists == nil {
		return nil, fmt.Errorf("malformed channel response for %s", channelID)
	}

	return &ChannelInfo{
		ID:                channelID,
		Title:             item.Snippet.Title,
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

// GetUploadsPage fetches one page of a channel's uploads playlist. Pass an
// empty pageToken for the first page. Items with a malformed snippet are
// dropped rather than failing the page.
func (c *Client) GetUploadsPage(ctx context.Context, playlistID, pageToken string) (*PlaylistPage, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := c.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(c.pageSize).
		Context(callCtx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, mapAPIError(err)
	}

	page := &PlaylistPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		snippet := item.Snippet
		if snippet == nil || snippet.ResourceId == nil || snippet.ResourceId.VideoId == "" {
			continue
		}

		published, _ := time.Parse(time.RFC3339, snippet.PublishedAt)

		page.Items = append(page.Items, VideoItem{
			VideoID:      snippet.ResourceId.VideoId,
			Title:        snippet.Title,
			Description:  snippet.Description,
			ChannelTitle: snippet.ChannelTitle,
			ThumbnailURL: pickThumbnail(snippet.Thumbnails),
			PublishedAt:  published,
		})
	}

	return page, nil
}

func pickThumbnail(details *youtubeapi.ThumbnailDetails) string {
	if details == nil {
		return ""
	}
	if details.Medium != nil && details.Medium.Url != "" {
		return details.Medium.Url
	}
	if details.Default != nil {
		return details.Default.Url
	}
	return ""
}
