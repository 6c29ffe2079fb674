package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*HttpOptions)(nil)

// HttpOptions configures the status API: tasks, workers, the listening
// toggle, probes and metrics.
type HttpOptions struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Network is "tcp", "tcp4" or "tcp6".
	Network string `json:"network" mapstructure:"network"`

	// Addr is the host:port to bind. Loopback by default; the API has no
	// authentication.
	Addr string `json:"addr" mapstructure:"addr"`

	// Timeout bounds request reads and writes.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

func NewHttpOptions() *HttpOptions {
	return &HttpOptions{
		Enabled: true,
		Network: "tcp",
		Addr:    "127.0.0.1:8470",
		Timeout: 30 * time.Second,
	}
}

func (o *HttpOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if !oneOf(o.Network, "tcp", "tcp4", "tcp6") {
		errs = append(errs, fmt.Errorf("invalid --http.network %q, must be 'tcp', 'tcp4' or 'tcp6'", o.Network))
	}
	if err := ValidateAddress(o.Addr); err != nil {
		errs = append(errs, fmt.Errorf("invalid --http.addr: %w", err))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--http.timeout must be positive"))
	}
	return errs
}

func (o *HttpOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "http.enabled", o.Enabled, "Serve the status API, health probes and metrics.")
	fs.StringVar(&o.Network, "http.network", o.Network, "Network of the HTTP listener: 'tcp', 'tcp4' or 'tcp6'.")
	fs.StringVar(&o.Addr, "http.addr", o.Addr, "Bind address of the HTTP server.")
	fs.DurationVar(&o.Timeout, "http.timeout", o.Timeout, "Read and write timeout for API requests.")
}
