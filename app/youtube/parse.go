package youtube

import (
	"fmt"
	"regexp"
	"strings"
)

var channelIDPattern = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)

// ParseChannelRef resolves user input into a channel ID. Accepted shapes are
// a raw channel ID ("UC...") or a channel URL containing "channel/<id>".
// Anything else fails with ErrInvalidChannelRef and no upstream call is made.
func ParseChannelRef(input string) (string, error) {
	ref := strings.TrimSpace(input)
	if ref == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidChannelRef)
	}

	if channelIDPattern.MatchString(ref) {
		return ref, nil
	}

	if idx := strings.Index(ref, "channel/"); idx >= 0 {
		id := ref[idx+len("channel/"):]
		id = strings.SplitN(id, "/", 2)[0]
		id = strings.SplitN(id, "?", 2)[0]
		if channelIDPattern.MatchString(id) {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidChannelRef, input)
}
