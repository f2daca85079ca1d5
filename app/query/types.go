package query

import (
	"github.com/mkzt/ytsubs/app/database"
)

type WatchedFilter string

const (
	WatchedAll  WatchedFilter = "all"
	WatchedOnly WatchedFilter = "watched"
	Unwatched   WatchedFilter = "unwatched"
)

// PinnedGroup is a pseudo-group selecting pinned videos regardless of their
// channel's group labels.
const PinnedGroup = "pinned"

// Options are the read-side filter parameters. They are threaded through
// explicitly; the query layer keeps no state between calls.
type Options struct {
	Watched WatchedFilter
	Channel string // channel ID selector, mutually exclusive with Group
	Group   string // group label selector; PinnedGroup is special-cased
	Search  string // case-insensitive substring match on the title

	ExcludeKeywords []string // titles containing any of these are dropped

	Limit int // display truncation; zero or negative means unbounded
}

// Result is the filtered, sorted, truncated listing.
type Result struct {
	Videos []database.VideoWithState
	Total  int    // matching videos before truncation
	Label  string // resolved selector label for display
}
