package api

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkzt/ytsubs/app/database"
	"github.com/mkzt/ytsubs/app/query"
	"github.com/mkzt/ytsubs/app/registry"
	"github.com/mkzt/ytsubs/app/youtube"
)

// maxHistoryImport caps a single watch-history import request.
const maxHistoryImport = 50000

var watchParamPattern = regexp.MustCompile(`v=([^&]+)`)

func NewHandler(reg *registry.Registry, syncer FeedSyncRunner,
	channels database.ChannelRepository, videos database.VideoRepository,
	watched database.WatchRepository, settings database.SettingsRepository) *Handler {
	return &Handler{
		registry: reg,
		syncer:   syncer,
		channels: channels,
		videos:   videos,
		watched:  watched,
		settings: settings,
	}
}

func (h *Handler) RegisterChannel(c *gin.Context) {
	var req registerChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide a channel id or url"})
		return
	}

	result, err := h.registry.Register(c.Request.Context(), req.URL, req.Group)
	if err != nil {
		switch {
		case errors.Is(err, youtube.ErrInvalidChannelRef):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Enter a channel id (UC...) or a channel url"})
		case errors.Is(err, youtube.ErrChannelNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		case errors.Is(err, youtube.ErrQuotaExceeded):
			c.JSON(http.StatusBadGateway, gin.H{"error": "API quota exceeded, try again later"})
		default:
			slog.Error("Channel registration failed", "input", req.URL, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed, check the API key and url"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"id":       result.ChannelID,
		"name":     result.Name,
		"restored": result.Restored,
	})
}

func (h *Handler) ListChannels(c *gin.Context) {
	archived := c.DefaultQuery("type", "active") == "archived"

	channels, err := h.registry.List(archived)
	if err != nil {
		slog.Error("Database error", "operation", "list_channels", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := make([]channelResponse, 0, len(channels))
	for _, ch := range channels {
		response = append(response, channelResponse{
			ID:          ch.ID,
			Name:        ch.Name,
			GroupName:   ch.GroupName,
			FullyLoaded: ch.FullyLoaded,
			ArchivedAt:  ch.ArchivedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) UpdateChannel(c *gin.Context) {
	var req updateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.registry.UpdateGroups(c.Param("id"), req.Group); err != nil {
		slog.Error("Database error", "operation", "update_groups", "channel", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ArchiveChannel(c *gin.Context) {
	if err := h.registry.Archive(c.Param("id")); err != nil {
		slog.Error("Database error", "operation", "archive_channel", "channel", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) RestoreChannel(c *gin.Context) {
	if err := h.registry.Restore(c.Param("id")); err != nil {
		slog.Error("Channel restore failed", "channel", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Restore failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetVideos syncs the recent feeds of all active channels, then returns the
// filtered listing. Sync failures are invisible here; new uploads simply
// appear on a later read or after the next scheduled sweep.
func (h *Handler) GetVideos(c *gin.Context) {
	if err := h.syncer.Run(c.Request.Context()); err != nil {
		slog.Warn("Feed sync failed during listing", "error", err)
	}

	rows, err := h.videos.ListActiveVideos()
	if err != nil {
		slog.Error("Database error", "operation", "list_videos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	excludeCSV, err := h.settings.Get(database.SettingExcludeKeywords)
	if err != nil {
		slog.Warn("Failed to load exclude keywords", "error", err)
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	result := query.Run(rows, query.Options{
		Watched:         query.WatchedFilter(c.DefaultQuery("watched", string(query.WatchedAll))),
		Channel:         c.Query("channel"),
		Group:           c.Query("group"),
		Search:          c.Query("q"),
		ExcludeKeywords: query.SplitLabels(excludeCSV),
		Limit:           limit,
	})

	videos := make([]videoResponse, 0, len(result.Videos))
	for _, v := range result.Videos {
		videos = append(videos, videoResponse{
			ID:           v.ID,
			ChannelID:    v.ChannelID,
			ChannelName:  v.ChannelName,
			GroupName:    v.GroupName,
			Title:        v.Title,
			URL:          v.URL,
			ThumbnailURL: v.ThumbnailURL,
			Author:       v.Author,
			Description:  v.Description,
			PublishedAt:  v.PublishedAt,
			IsWatched:    v.Watched,
			IsPinned:     v.Pinned,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": videos,
		"total":  result.Total,
		"label":  result.Label,
	})
}

func (h *Handler) GetGroups(c *gin.Context) {
	rows, err := h.videos.ListActiveVideos()
	if err != nil {
		slog.Error("Database error", "operation", "list_groups", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": query.Groups(rows)})
}

func (h *Handler) SetPin(c *gin.Context) {
	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.videos.SetPinned(req.VideoID, req.IsPinned); err != nil {
		slog.Error("Database error", "operation", "set_pinned", "video", req.VideoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) SetWatched(c *gin.Context) {
	var req watchedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.watched.SetWatched(req.VideoID, req.Watched); err != nil {
		slog.Error("Database error", "operation", "set_watched", "video", req.VideoID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ImportHistory extracts video IDs from exported watch-history records and
// marks them watched. IDs that are not ingested yet are fine; the flag
// attaches once the video appears.
func (h *Handler) ImportHistory(c *gin.Context) {
	var records []historyRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format"})
		return
	}
	if len(records) > maxHistoryImport {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many history records"})
		return
	}

	var videoIDs []string
	for _, record := range records {
		if record.TitleURL == "" {
			continue
		}
		if match := watchParamPattern.FindStringSubmatch(record.TitleURL); match != nil {
			videoIDs = append(videoIDs, match[1])
		}
	}

	count, err := h.watched.ImportWatched(videoIDs)
	if err != nil {
		slog.Error("Database error", "operation", "import_history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (h *Handler) GetExcludeKeywords(c *gin.Context) {
	keywords, err := h.settings.Get(database.SettingExcludeKeywords)
	if err != nil {
		slog.Error("Database error", "operation", "get_settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keywords": keywords})
}

func (h *Handler) SetExcludeKeywords(c *gin.Context) {
	var req excludeKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.settings.Set(database.SettingExcludeKeywords, req.Keywords); err != nil {
		slog.Error("Database error", "operation", "set_settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if channelCount, err := h.channels.GetChannelCount(); err == nil {
		health["channels"] = channelCount
	}
	if videoCount, err := h.videos.GetVideoCount(); err == nil {
		health["videos"] = videoCount
	}

	c.JSON(http.StatusOK, health)
}
