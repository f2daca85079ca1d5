package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	YouTubeAPIKey     string
	SubscriptionsFile string
	WorkerCount       int
	SweepInterval     int // hours
	RetentionDays     int
	BackfillPageSize  int
	RequestTimeout    int // seconds

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
