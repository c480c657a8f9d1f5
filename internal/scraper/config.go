package scraper

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures the knobs that influence a scrape run. All values
// originate from Viper so the scraper can be configured via files, env
// vars, or CLI flags.
type Config struct {
	// Courts selects which adapters to run: a full adapter id or a
	// package prefix such as "opinions".
	Courts string

	// Daemon keeps cycling through the selected courts forever.
	Daemon bool

	// Rate is the time budget for one pass over all selected courts; the
	// per-site wait interval is Rate / number of courts.
	Rate time.Duration

	UserAgent      string
	RequestTimeout time.Duration
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Courts:         v.GetString("scraper.courts"),
		Daemon:         v.GetBool("scraper.daemon"),
		Rate:           time.Duration(v.GetInt("scraper.rate_minutes")) * time.Minute,
		UserAgent:      v.GetString("scraper.user_agent"),
		RequestTimeout: v.GetDuration("scraper.request_timeout"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.Courts == "" {
		return fmt.Errorf("scraper.courts must name a court or a court package")
	}
	if c.Rate <= 0 {
		return fmt.Errorf("scraper.rate_minutes must be > 0")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("scraper.user_agent must be set")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}
	return nil
}
