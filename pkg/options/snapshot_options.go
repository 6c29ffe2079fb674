package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*SnapshotOptions)(nil)

const (
	SnapshotLocal = "local"
	SnapshotS3    = "s3"
)

// SnapshotOptions selects where captured photos are written.
type SnapshotOptions struct {
	Backend string `json:"backend" mapstructure:"backend"`
	Dir     string `json:"dir" mapstructure:"dir"`
}

func NewSnapshotOptions() *SnapshotOptions {
	return &SnapshotOptions{
		Backend: SnapshotLocal,
		Dir:     "./snapshots",
	}
}

func (o *SnapshotOptions) Validate() []error {
	errors := []error{}

	switch o.Backend {
	case SnapshotLocal:
		if o.Dir == "" {
			errors = append(errors, fmt.Errorf("--snapshot.dir must not be empty"))
		}
	case SnapshotS3:
	default:
		errors = append(errors, fmt.Errorf("invalid --snapshot.backend %q, must be 'local' or 's3'", o.Backend))
	}

	return errors
}

func (o *SnapshotOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Backend, "snapshot.backend", o.Backend, "Where photos go: 'local' or 's3'.")
	fs.StringVar(&o.Dir, "snapshot.dir", o.Dir, "Directory for the 'local' backend.")
}
