package subscriptions

// Subscription is one channel to register at startup.
type Subscription struct {
	Channel string `yaml:"channel"` // channel ID or channel URL
	Group   string `yaml:"group"`
}

type seedFile struct {
	Subscriptions []Subscription `yaml:"subscriptions"`
}
