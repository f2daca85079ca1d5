package query

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mkzt/ytsubs/app/database"
)

// Run applies the read-side pipeline to videos of active channels: selector,
// watched filter, title search, exclude keywords, pin-then-recency sort and
// display truncation.
func Run(videos []database.VideoWithState, opts Options) Result {
	fold := cases.Fold()

	matched := make([]database.VideoWithState, 0, len(videos))
	for _, v := range videos {
		if !matchesSelector(v, opts) {
			continue
		}
		if !matchesWatched(v, opts.Watched) {
			continue
		}
		if opts.Search != "" && !strings.Contains(fold.String(v.Title), fold.String(opts.Search)) {
			continue
		}
		if excludedByKeyword(fold, v.Title, opts.ExcludeKeywords) {
			continue
		}
		matched = append(matched, v)
	}

	// Pin always wins the primary sort key, ties broken by recency.
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Pinned != matched[j].Pinned {
			return matched[i].Pinned
		}
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	total := len(matched)
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	return Result{
		Videos: matched,
		Total:  total,
		Label:  resolveLabel(matched, opts),
	}
}

func matchesSelector(v database.VideoWithState, opts Options) bool {
	if opts.Channel != "" {
		return v.ChannelID == opts.Channel
	}

	switch opts.Group {
	case "":
		return true
	case PinnedGroup:
		return v.Pinned
	default:
		for _, label := range SplitLabels(v.GroupName) {
			if label == opts.Group {
				return true
			}
		}
		return false
	}
}

func matchesWatched(v database.VideoWithState, filter WatchedFilter) bool {
	switch filter {
	case WatchedOnly:
		return v.Watched
	case Unwatched:
		return !v.Watched
	default:
		return true
	}
}

func excludedByKeyword(fold cases.Caser, title string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}

	folded := fold.String(title)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(folded, fold.String(keyword)) {
			return true
		}
	}

	return false
}

func resolveLabel(matched []database.VideoWithState, opts Options) string {
	switch {
	case opts.Group == PinnedGroup:
		return "Pinned"
	case opts.Group != "":
		return opts.Group
	case opts.Channel != "":
		if len(matched) > 0 {
			return matched[0].ChannelName
		}
		return opts.Channel
	default:
		return "All"
	}
}

// SplitLabels splits a comma-separated label set, trimming whitespace and
// dropping empty entries.
func SplitLabels(csv string) []string {
	if csv == "" {
		return nil
	}

	var labels []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}

	return labels
}

// Groups returns the distinct group labels across all videos, sorted with a
// locale-neutral collation for stable display.
func Groups(videos []database.VideoWithState) []string {
	seen := make(map[string]struct{})
	var groups []string

	for _, v := range videos {
		for _, label := range SplitLabels(v.GroupName) {
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			groups = append(groups, label)
		}
	}

	collate.New(language.Und).SortStrings(groups)

	return groups
}
