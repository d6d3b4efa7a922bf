package ccpair

import (
	"github.com/clintdigital/terraform-provider-danswer/internal/client"
	"github.com/clintdigital/terraform-provider-danswer/internal/config"
)

// FromConfig builds a Manager talking to the API server named in cfg.
func FromConfig(cfg *config.Config, version string, opts ...Option) *Manager {
	c := client.New(cfg.APIServerURL, cfg.APIKey, version)
	c.HTTPClient.Timeout = cfg.HTTPTimeout.Duration()

	base := []Option{
		WithTimeout(cfg.Wait.Timeout.Duration()),
		WithIntervals(cfg.Wait.Interval.Duration(), cfg.Wait.DeletionInterval.Duration()),
	}
	return NewManager(c, append(base, opts...)...)
}
