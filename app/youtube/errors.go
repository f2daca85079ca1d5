package youtube

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

var (
	// ErrChannelNotFound indicates the upstream API knows no such channel.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrQuotaExceeded indicates the Data API quota is exhausted for now.
	ErrQuotaExceeded = errors.New("api quota exceeded")

	// ErrInvalidChannelRef indicates the input is neither a channel ID nor
	// a channel URL.
	ErrInvalidChannelRef = errors.New("invalid channel id or url")
)

// mapAPIError translates googleapi errors into the package's sentinels so
// callers can match with errors.Is.
func mapAPIError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case 403:
		for _, e := range gerr.Errors {
			switch e.Reason {
			case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded":
				return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
			}
		}
	case 404:
		return fmt.Errorf("%w: %v", ErrChannelNotFound, err)
	}

	return err
}
