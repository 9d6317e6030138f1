package agents

import (
	"context"
	"strings"

	"github.com/jingkaihe/mskills/pkg/logger"
	"github.com/jingkaihe/mskills/pkg/registry"
	"github.com/jingkaihe/mskills/pkg/skillerr"
)

// Manager enables and disables agents in the registry
type Manager struct {
	store   registry.Store
	catalog *Catalog
}

// NewManager creates an agent manager
func NewManager(store registry.Store, catalog *Catalog) *Manager {
	return &Manager{store: store, catalog: catalog}
}

// Enable adds id to the enabled agents. Enabling an enabled agent is a no-op.
func (m *Manager) Enable(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, ok := m.catalog.Lookup(id); !ok {
		return skillerr.New(skillerr.UnsupportedAgent, "Agent '%s' is not supported. Supported agents: %s",
			id, strings.Join(m.catalog.Supported(), ", "))
	}

	reg, err := m.store.Load()
	if err != nil {
		return err
	}
	if !reg.EnableAgent(id) {
		return nil
	}

	logger.G(ctx).WithField("agent", id).Debug("agent enabled")
	return m.store.Save(reg)
}

// Disable drops id from the enabled agents. Unknown or disabled ids are a no-op.
func (m *Manager) Disable(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)

	reg, err := m.store.Load()
	if err != nil {
		return err
	}
	if !reg.DisableAgent(id) {
		return nil
	}

	logger.G(ctx).WithField("agent", id).Debug("agent disabled")
	return m.store.Save(reg)
}

// Enabled returns the enabled identifiers in registry order
func (m *Manager) Enabled() ([]string, error) {
	reg, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return reg.Agents, nil
}

// Supported returns every identifier the catalog knows
func (m *Manager) Supported() []string {
	return m.catalog.Supported()
}
