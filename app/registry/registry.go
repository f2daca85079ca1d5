package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkzt/ytsubs/app/database"
	"github.com/mkzt/ytsubs/app/tasks"
	"github.com/mkzt/ytsubs/app/youtube"
)

// DefaultGroup labels channels registered without an explicit group.
const DefaultGroup = "Uncategorized"

// ChannelLookup resolves channel metadata from the upstream API during
// registration.
type ChannelLookup interface {
	GetChannelInfo(ctx context.Context, channelID string) (*youtube.ChannelInfo, error)
}

var _ ChannelLookup = (*youtube.Client)(nil)

// Registry owns the subscribed channel set and its two-phase lifecycle:
// registration and group edits, soft-delete to the archive, and restore.
// Hard deletion is left to the scheduled retention purge.
type Registry struct {
	channels   database.ChannelRepository
	lookup     ChannelLookup
	backfiller tasks.BackfillRunner
	scheduler  tasks.TaskSchedulerInterface
}

func New(channels database.ChannelRepository, lookup ChannelLookup,
	backfiller tasks.BackfillRunner, scheduler tasks.TaskSchedulerInterface) *Registry {
	return &Registry{
		channels:   channels,
		lookup:     lookup,
		backfiller: backfiller,
		scheduler:  scheduler,
	}
}

// RegisterResult reports what registration did.
type RegisterResult struct {
	ChannelID string
	Name      string
	Restored  bool
}

// Register subscribes to a channel given a raw channel ID or a channel URL.
// Registering a channel that sits in the archive restores it instead of
// re-fetching metadata. A successful new registration kicks off the deep
// backfill asynchronously; the caller does not wait for it.
func (r *Registry) Register(ctx context.Context, ref, group string) (*RegisterResult, error) {
	channelID, err := youtube.ParseChannelRef(ref)
	if err != nil {
		return nil, err
	}

	existing, err := r.channels.GetChannel(channelID)
	if err != nil {
		return nil, err
	}

	if existing != nil && !existing.Active() {
		restoredGroup := group
		if restoredGroup == "" {
			restoredGroup = existing.GroupName
		}
		if err := r.channels.RestoreChannel(channelID, restoredGroup); err != nil {
			return nil, err
		}
		slog.Info("Channel restored from archive", "channel", channelID, "name", existing.Name)
		return &RegisterResult{ChannelID: channelID, Name: existing.Name, Restored: true}, nil
	}

	if group == "" {
		group = DefaultGroup
	}

	info, err := r.lookup.GetChannelInfo(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("channel lookup failed: %w", err)
	}

	err = r.channels.UpsertChannel(database.Channel{
		ID:        channelID,
		Name:      info.Title,
		GroupName: group,
		UploadsID: info.UploadsPlaylistID,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Channel registered", "channel", channelID, "name", info.Title, "group", group)

	// Fire-and-forget: a failed enqueue only delays the backfill until the
	// next scheduled sweep.
	backfillTask := tasks.NewBackfillChannelTask(channelID, r.channels, r.backfiller)
	if err := r.scheduler.EnqueueTask(backfillTask); err != nil {
		slog.Warn("Failed to enqueue backfill after registration", "channel", channelID, "error", err)
	}

	return &RegisterResult{ChannelID: channelID, Name: info.Title}, nil
}

// Archive soft-deletes a channel. Its videos and watched state stay in
// storage; queries stop returning them immediately.
func (r *Registry) Archive(id string) error {
	return r.channels.ArchiveChannel(id)
}

// Restore brings an archived channel back, keeping its group labels.
func (r *Registry) Restore(id string) error {
	ch, err := r.channels.GetChannel(id)
	if err != nil {
		return err
	}
	if ch == nil {
		return fmt.Errorf("channel %s not found", id)
	}

	return r.channels.RestoreChannel(id, ch.GroupName)
}

// List returns active or archived channels.
func (r *Registry) List(archived bool) ([]database.Channel, error) {
	return r.channels.ListChannels(archived)
}

// UpdateGroups overwrites a channel's comma-separated group label set.
func (r *Registry) UpdateGroups(id, group string) error {
	return r.channels.UpdateGroups(id, group)
}
