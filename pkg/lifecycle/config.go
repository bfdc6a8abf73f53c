package lifecycle

import "time"

// DefaultPollInterval is the reconciliation safety-net interval.
const DefaultPollInterval = 120 * time.Second

// Config holds coordinator settings.
type Config struct {
	// PollInterval is how often the coordinator reconciles while the host is
	// foreground-visible.
	PollInterval time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"120s"`
}
