// Package agents describes the AI agents skills can be applied to, and
// manages which of them are enabled in the registry.
package agents

import (
	"path/filepath"
	"sort"
)

// Target is an agent and the directory it scans for skills
type Target struct {
	ID              string `json:"id"`
	SkillsDirectory string `json:"skillsDirectory"`
}

// builtins maps each supported agent to its skills directory relative to
// the user's home directory.
var builtins = map[string]string{
	"claude":             filepath.Join(".claude", "skills"),
	"codex":              filepath.Join(".codex", "skills"),
	"gemini":             filepath.Join(".gemini", "skills"),
	"github-copilot-cli": filepath.Join(".copilot", "skills"),
}

// Catalog resolves agent identifiers to targets
type Catalog struct {
	targets map[string]Target
}

// NewCatalog builds the built-in catalog rooted at userHome, merged with
// custom agents (identifier to absolute skills directory). A custom entry
// overrides a built-in one of the same identifier.
func NewCatalog(userHome string, custom map[string]string) *Catalog {
	c := &Catalog{targets: make(map[string]Target, len(builtins)+len(custom))}
	for id, rel := range builtins {
		c.targets[id] = Target{ID: id, SkillsDirectory: filepath.Join(userHome, rel)}
	}
	for id, dir := range custom {
		c.targets[id] = Target{ID: id, SkillsDirectory: dir}
	}
	return c
}

// Lookup returns the target for id
func (c *Catalog) Lookup(id string) (Target, bool) {
	t, ok := c.targets[id]
	return t, ok
}

// Supported returns every known identifier, sorted
func (c *Catalog) Supported() []string {
	ids := make([]string, 0, len(c.targets))
	for id := range c.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
