package registry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/jingkaihe/mskills/pkg/skillerr"
)

// SkillEntry is the persisted record of one registered skill
type SkillEntry struct {
	Path      string `json:"path" jsonschema:"description=Absolute path of the skill inside the managed store"`
	SourceURL string `json:"sourceUrl,omitempty" jsonschema:"description=Git reference the skill was installed from. Absent for local sources"`
}

// Registry is the whole persisted state: skills by name and enabled agents
type Registry struct {
	Skills map[string]SkillEntry `json:"skills" jsonschema:"description=Registered skills keyed by name"`
	Agents []string              `json:"agents" jsonschema:"description=Identifiers of the enabled agents"`
}

// New returns an empty registry
func New() *Registry {
	return &Registry{
		Skills: map[string]SkillEntry{},
		Agents: []string{},
	}
}

// SkillNames returns the registered names in sorted order
func (r *Registry) SkillNames() []string {
	names := make([]string, 0, len(r.Skills))
	for name := range r.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasAgent reports whether id is enabled
func (r *Registry) HasAgent(id string) bool {
	for _, a := range r.Agents {
		if a == id {
			return true
		}
	}
	return false
}

// EnableAgent adds id to the enabled set and reports whether it was added
func (r *Registry) EnableAgent(id string) bool {
	if r.HasAgent(id) {
		return false
	}
	r.Agents = append(r.Agents, id)
	return true
}

// DisableAgent drops id from the enabled set and reports whether it was present
func (r *Registry) DisableAgent(id string) bool {
	kept := r.Agents[:0]
	removed := false
	for _, a := range r.Agents {
		if a == id {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	r.Agents = kept
	return removed
}

// normalize fills nil collections and collapses duplicate agents, keeping
// the first occurrence.
func (r *Registry) normalize() {
	if r.Skills == nil {
		r.Skills = map[string]SkillEntry{}
	}
	seen := make(map[string]struct{}, len(r.Agents))
	agents := make([]string, 0, len(r.Agents))
	for _, a := range r.Agents {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		agents = append(agents, a)
	}
	r.Agents = agents
}

// Store loads and saves the registry as a whole
type Store interface {
	Load() (*Registry, error)
	Save(*Registry) error
}

// FileStore keeps the registry in a JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the registry. A missing file is an empty registry.
func (s *FileStore) Load() (*Registry, error) {
	data, err := lockedfile.Read(s.path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, skillerr.Wrap(err, skillerr.FilesystemError, "failed to read configuration file %s", s.path)
	}

	r := New()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, r); err != nil {
			return nil, errors.Wrapf(err, "invalid JSON in configuration file (%s)", s.path)
		}
	}
	r.normalize()
	return r, nil
}

// Save rewrites the whole file
func (s *FileStore) Save(r *Registry) error {
	r.normalize()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal registry")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to create %s", filepath.Dir(s.path))
	}
	if err := lockedfile.Write(s.path, bytes.NewReader(data), 0o644); err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to write configuration file %s", s.path)
	}
	return nil
}

// Schema describes the registry file format
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&Registry{})
	schema.Title = "mskills registry"
	return schema
}
