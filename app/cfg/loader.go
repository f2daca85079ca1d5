package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/ytsubs.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	YouTubeAPIKey     string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API v3 key (required)" required:"true"`
	SubscriptionsFile string `long:"subscriptions-file" env:"SUBSCRIPTIONS_FILE" description:"Optional YAML file with channels to register at startup"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for ingestion tasks"`
	SweepInterval     int    `long:"sweep-interval" env:"SWEEP_INTERVAL" default:"24" description:"Scheduled sweep interval in hours"`
	RetentionDays     int    `long:"retention-days" env:"RETENTION_DAYS" default:"7" description:"Days an archived channel is kept before being purged"`
	BackfillPageSize  int    `long:"backfill-page-size" env:"BACKFILL_PAGE_SIZE" default:"20" description:"Items requested per uploads-playlist page"`
	RequestTimeout    int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"15" description:"Per-call timeout for upstream requests in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"ytsubs/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Tokyo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		YouTubeAPIKey:     raw.YouTubeAPIKey,
		SubscriptionsFile: raw.SubscriptionsFile,
		WorkerCount:       raw.WorkerCount,
		SweepInterval:     raw.SweepInterval,
		RetentionDays:     raw.RetentionDays,
		BackfillPageSize:  raw.BackfillPageSize,
		RequestTimeout:    raw.RequestTimeout,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
