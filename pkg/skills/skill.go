// Package skills validates skill bundles. A skill is a directory containing a
// SKILL.md descriptor that starts with YAML frontmatter delimited by ---,
// followed by free-form instructions that are never inspected here.
package skills

// DescriptorFileName is the fixed name of the skill descriptor.
const DescriptorFileName = "SKILL.md"

// Field limits enforced on the frontmatter.
const (
	MaxNameLength        = 64
	MaxDescriptionLength = 1024
)

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name          string            `mapstructure:"name" json:"name"`
	Description   string            `mapstructure:"description" json:"description"`
	License       string            `mapstructure:"license" json:"license,omitempty"`
	Compatibility string            `mapstructure:"compatibility" json:"compatibility,omitempty"`
	Metadata      map[string]string `mapstructure:"metadata" json:"metadata,omitempty"`
	AllowedTools  string            `mapstructure:"allowed-tools" json:"allowedTools,omitempty"`
}
