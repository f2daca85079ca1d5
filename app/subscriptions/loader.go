package subscriptions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads the optional YAML seed file listing channels to register at
// startup. Entries already known to the registry are effectively no-ops.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given seed file path
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the seed file. A missing or unconfigured file yields an empty
// list rather than an error.
func (l *Loader) Load() ([]Subscription, error) {
	if l.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read subscriptions file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse subscriptions file: %w", err)
	}

	for i, sub := range file.Subscriptions {
		if sub.Channel == "" {
			return nil, fmt.Errorf("subscription %d is missing a channel", i+1)
		}
	}

	return file.Subscriptions, nil
}
