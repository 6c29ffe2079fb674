package topic

import (
	"fmt"
)

// MQTT topic filter wildcards. Wildcard matches one level, MultiWildcard
// matches the rest of the topic and must come last.
const (
	Wildcard      = "+"
	MultiWildcard = "#"
)

// Builder constructs topic strings of the form {root}/{segment}/{id}.
type Builder struct {
	// root is the base namespace for all topics (e.g. "voxpeer/v1").
	root string
}

// NewBuilder creates a Builder under the given root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Build returns {root}/{segment}/{id}.
func (b *Builder) Build(segment, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, segment, id)
}

// BuildWildcard returns {root}/{segment}/+, matching every agent.
func (b *Builder) BuildWildcard(segment string) string {
	return b.Build(segment, Wildcard)
}

// Root returns the namespace.
func (b *Builder) Root() string {
	return b.root
}
