package options

import (
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*ConsoleOptions)(nil)

// ConsoleOptions controls the terminal view of tasks and workers.
type ConsoleOptions struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// MaxTasks caps how many recent tasks are rendered.
	MaxTasks int `json:"max-tasks" mapstructure:"max-tasks"`

	// Throttle coalesces bursts of state changes into one redraw.
	Throttle time.Duration `json:"throttle" mapstructure:"throttle"`
}

func NewConsoleOptions() *ConsoleOptions {
	return &ConsoleOptions{
		Enabled:  true,
		MaxTasks: 10,
		Throttle: 100 * time.Millisecond,
	}
}

func (o *ConsoleOptions) Validate() []error {
	return nil
}

func (o *ConsoleOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "console.enabled", o.Enabled, "Render tasks and workers on the terminal.")
	fs.IntVar(&o.MaxTasks, "console.max-tasks", o.MaxTasks, "Number of recent tasks to render (0 for all).")
	fs.DurationVar(&o.Throttle, "console.throttle", o.Throttle, "Minimum interval between redraws.")
}
