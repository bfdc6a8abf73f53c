package commerce

import "time"

// Config holds commerce API client settings.
type Config struct {
	// BaseURL is the root of the commerce API, e.g. "https://api.example.com/api/v1".
	BaseURL string `env:"COMMERCE_API_URL" envDefault:"http://localhost:8080"`
	// RequestTimeout bounds each individual API call.
	RequestTimeout time.Duration `env:"COMMERCE_API_TIMEOUT" envDefault:"10s"`
}
