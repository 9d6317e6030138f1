// Package registry owns the skill registry: which skills exist, where their
// canonical copy lives in the store, and where they came from. Manager
// implements install, update and remove on top of a Store.
package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/jingkaihe/mskills/pkg/git"
	"github.com/jingkaihe/mskills/pkg/logger"
	"github.com/jingkaihe/mskills/pkg/osutil"
	"github.com/jingkaihe/mskills/pkg/skillerr"
	"github.com/jingkaihe/mskills/pkg/skills"
)

const gitMetadataDir = ".git"

// GitInstaller materializes and refreshes skills from git references
type GitInstaller interface {
	Install(ctx context.Context, source, dest string) error
	Update(ctx context.Context, path string) error
}

// Validator checks a skill directory and returns its metadata
type Validator func(path string) (*skills.Metadata, error)

// Skill is a registered skill as seen by callers
type Skill struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// SkillWithMetadata pairs a registered skill with its validated descriptor
type SkillWithMetadata struct {
	Skill
	Metadata *skills.Metadata `json:"metadata"`
}

// UpdateMethod names how an update refreshed the canonical copy
type UpdateMethod string

// Update methods
const (
	UpdatePulled      UpdateMethod = "pulled"
	UpdateReinstalled UpdateMethod = "reinstalled"
	UpdateReplaced    UpdateMethod = "replaced"
)

// UpdateResult describes a completed update
type UpdateResult struct {
	Skill
	Method UpdateMethod `json:"method"`
}

// Manager coordinates the store, the git installer and the validator
type Manager struct {
	store     Store
	storeDir  string
	installer GitInstaller
	validate  Validator
	copyOpts  []osutil.CopyOption
}

// ManagerOption configures a Manager instance
type ManagerOption func(*Manager)

// WithInstaller sets the git installer. Defaults to git.NewInstaller().
func WithInstaller(installer GitInstaller) ManagerOption {
	return func(m *Manager) {
		m.installer = installer
	}
}

// WithValidator replaces skills.Validate
func WithValidator(validate Validator) ManagerOption {
	return func(m *Manager) {
		m.validate = validate
	}
}

// WithCopyOptions sets the options used when copying local sources
func WithCopyOptions(opts ...osutil.CopyOption) ManagerOption {
	return func(m *Manager) {
		m.copyOpts = append(m.copyOpts, opts...)
	}
}

// NewManager creates a Manager keeping canonical copies under storeDir
func NewManager(store Store, storeDir string, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		storeDir: storeDir,
		validate: skills.Validate,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.installer == nil {
		m.installer = git.NewInstaller()
	}
	return m
}

// StoreDir returns the directory holding canonical copies
func (m *Manager) StoreDir() string {
	return m.storeDir
}

// Install registers a skill from a git reference or a local directory. An
// explicit name wins; otherwise it is derived from the source.
func (m *Manager) Install(ctx context.Context, source, name string) (*Skill, error) {
	source = strings.TrimSpace(source)
	name = strings.TrimSpace(name)
	if source == "" {
		return nil, errors.New("a source is required")
	}

	isGit := git.IsGitReference(source)
	localPath := ""
	if !isGit {
		abs, err := filepath.Abs(source)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s", source)
		}
		localPath = abs
	}

	skillName := name
	if skillName == "" {
		if isGit {
			skillName = git.LastSegment(source)
		} else {
			skillName = filepath.Base(localPath)
		}
	}
	if !usableName(skillName) {
		return nil, skillerr.New(skillerr.NameUndetermined, "could not determine skill name from '%s', please provide a name", source)
	}

	reg, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if _, ok := reg.Skills[skillName]; ok {
		return nil, skillerr.New(skillerr.DuplicateSkill, "Skill '%s' already exists. Use update to refresh it.", skillName)
	}

	canonical := filepath.Join(m.storeDir, skillName)
	log := logger.G(ctx).WithField("skill", skillName)

	entry := SkillEntry{Path: canonical}
	if isGit {
		if err := m.installFromGit(ctx, source, canonical); err != nil {
			return nil, err
		}
		entry.SourceURL = source
	} else {
		if err := m.installFromLocal(ctx, localPath, skillName, canonical); err != nil {
			return nil, err
		}
	}

	reg.Skills[skillName] = entry
	if err := m.store.Save(reg); err != nil {
		return nil, err
	}

	log.WithField("path", canonical).Debug("skill registered")
	return &Skill{Name: skillName, Path: canonical, SourceURL: entry.SourceURL}, nil
}

func (m *Manager) installFromGit(ctx context.Context, source, canonical string) error {
	if err := m.prepareStore(ctx, canonical); err != nil {
		return err
	}

	err := m.installer.Install(ctx, source, canonical)
	if err == nil {
		_, err = m.validate(canonical)
	}
	if err != nil {
		m.discardPartial(ctx, canonical)
		return err
	}
	return nil
}

func (m *Manager) installFromLocal(ctx context.Context, localPath, skillName, canonical string) error {
	meta, err := m.validate(localPath)
	if err != nil {
		return err
	}
	if meta.Name != skillName {
		return skillerr.New(skillerr.NameDirectoryMismatch,
			"Skill name '%s' does not match the requested name '%s'", meta.Name, skillName)
	}

	if err := os.MkdirAll(m.storeDir, 0o755); err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to create skill store %s", m.storeDir)
	}
	src, err := osutil.ResolvePath(localPath)
	if err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to resolve %s", localPath)
	}
	dst, err := osutil.ResolvePath(canonical)
	if err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to resolve %s", canonical)
	}
	switch {
	case src == dst:
		logger.G(ctx).WithField("path", canonical).Info("registering skill already in the store")
		return nil
	case osutil.IsWithin(dst, src), osutil.IsWithin(src, dst):
		return skillerr.New(skillerr.FilesystemError,
			"cannot install %s: it overlaps the store path %s", localPath, canonical)
	}

	if err := m.prepareStore(ctx, canonical); err != nil {
		return err
	}
	if err := osutil.CopyDir(localPath, canonical, m.copyOpts...); err != nil {
		m.discardPartial(ctx, canonical)
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to copy %s to %s", localPath, canonical)
	}
	return nil
}

// prepareStore creates the store root and clears a canonical directory
// left behind without a registry entry.
func (m *Manager) prepareStore(ctx context.Context, canonical string) error {
	if err := os.MkdirAll(m.storeDir, 0o755); err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to create skill store %s", m.storeDir)
	}

	exists, err := osutil.Exists(canonical)
	if err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to inspect %s", canonical)
	}
	if exists {
		logger.G(ctx).WithField("path", canonical).Warn("removing unregistered directory from skill store")
		if err := os.RemoveAll(canonical); err != nil {
			return skillerr.Wrap(err, skillerr.FilesystemError, "failed to remove %s", canonical)
		}
	}
	return nil
}

func (m *Manager) discardPartial(ctx context.Context, canonical string) {
	if err := os.RemoveAll(canonical); err != nil {
		logger.G(ctx).WithError(err).WithField("path", canonical).Warn("failed to remove partial install")
	}
}

// Update refreshes a registered skill. Without a source it uses the stored
// git reference. A git checkout at the canonical path is pulled when the
// reference is unchanged; otherwise the skill is reinstalled. A local source
// replaces the canonical copy and clears the stored reference. Any failure,
// including validation of the refreshed copy, restores the previous copy.
func (m *Manager) Update(ctx context.Context, name, source string) (*UpdateResult, error) {
	name = strings.TrimSpace(name)
	source = strings.TrimSpace(source)

	reg, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	entry, ok := reg.Skills[name]
	if !ok {
		return nil, skillerr.New(skillerr.SkillNotFound, "Skill '%s' not found.", name)
	}
	if source == "" && entry.SourceURL == "" {
		return nil, skillerr.New(skillerr.NoStoredSource,
			"Original source for '%s' is not stored. Please provide a source to update from.", name)
	}

	log := logger.G(ctx).WithField("skill", name)
	canonical := entry.Path

	var method UpdateMethod
	if source == "" || git.IsGitReference(source) {
		ref := source
		if ref == "" {
			ref = entry.SourceURL
		}
		method, err = m.updateFromGit(ctx, canonical, ref, ref == entry.SourceURL)
		if err != nil {
			return nil, err
		}
		entry.SourceURL = ref
	} else {
		if err := m.updateFromLocal(ctx, name, canonical, source); err != nil {
			return nil, err
		}
		method = UpdateReplaced
		entry.SourceURL = ""
	}

	reg.Skills[name] = entry
	if err := m.store.Save(reg); err != nil {
		return nil, err
	}

	log.WithField("method", method).Debug("skill updated")
	return &UpdateResult{
		Skill:  Skill{Name: name, Path: canonical, SourceURL: entry.SourceURL},
		Method: method,
	}, nil
}

func (m *Manager) updateFromGit(ctx context.Context, canonical, ref string, sameSource bool) (UpdateMethod, error) {
	hasCheckout, err := osutil.DirExists(filepath.Join(canonical, gitMetadataDir))
	if err != nil {
		return "", skillerr.Wrap(err, skillerr.FilesystemError, "failed to inspect %s", canonical)
	}

	if sameSource && hasCheckout {
		snap, err := copySnapshot(canonical)
		if err != nil {
			return "", err
		}
		return UpdatePulled, m.finish(ctx, snap, m.installer.Update(ctx, canonical))
	}

	snap, err := moveSnapshot(canonical)
	if err != nil {
		return "", err
	}
	return UpdateReinstalled, m.finish(ctx, snap, m.installer.Install(ctx, ref, canonical))
}

func (m *Manager) updateFromLocal(ctx context.Context, name, canonical, source string) error {
	localPath, err := filepath.Abs(source)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", source)
	}
	meta, err := m.validate(localPath)
	if err != nil {
		return err
	}
	if meta.Name != name {
		return skillerr.New(skillerr.NameDirectoryMismatch,
			"Skill name '%s' does not match the registered name '%s'", meta.Name, name)
	}

	src, err := osutil.ResolvePath(localPath)
	if err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to resolve %s", localPath)
	}
	dst, err := osutil.ResolvePath(canonical)
	if err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to resolve %s", canonical)
	}
	if osutil.IsWithin(dst, src) || osutil.IsWithin(src, dst) {
		return skillerr.New(skillerr.FilesystemError,
			"cannot update '%s' from %s: it overlaps the store path %s", name, localPath, canonical)
	}

	snap, err := moveSnapshot(canonical)
	if err != nil {
		return err
	}
	var copyErr error
	if err := osutil.CopyDir(localPath, canonical, m.copyOpts...); err != nil {
		copyErr = skillerr.Wrap(err, skillerr.FilesystemError, "failed to copy %s to %s", localPath, canonical)
	}
	return m.finish(ctx, snap, copyErr)
}

// finish validates the refreshed copy, then either drops the snapshot or
// restores it when anything failed.
func (m *Manager) finish(ctx context.Context, snap *snapshot, err error) error {
	if err == nil {
		_, err = m.validate(snap.original)
	}
	if err != nil {
		if restoreErr := snap.restore(); restoreErr != nil {
			logger.G(ctx).WithError(restoreErr).WithField("path", snap.original).Error("failed to restore skill after failed update")
		}
		return err
	}
	if discardErr := snap.discard(); discardErr != nil {
		logger.G(ctx).WithError(discardErr).WithField("backup", snap.backup).Warn("failed to remove update backup")
	}
	return nil
}

// Remove deletes the canonical copy and the registry entry
func (m *Manager) Remove(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	reg, err := m.store.Load()
	if err != nil {
		return err
	}
	entry, ok := reg.Skills[name]
	if !ok {
		return skillerr.New(skillerr.SkillNotFound, "Skill '%s' not found.", name)
	}

	if !m.inStore(entry.Path) {
		return skillerr.New(skillerr.FilesystemError,
			"refusing to delete %s for skill '%s': it is outside the skill store %s", entry.Path, name, m.storeDir)
	}
	if err := os.RemoveAll(entry.Path); err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to remove %s", entry.Path)
	}

	delete(reg.Skills, name)
	if err := m.store.Save(reg); err != nil {
		return err
	}

	logger.G(ctx).WithField("skill", name).Debug("skill removed")
	return nil
}

// inStore reports whether path names an entry strictly below the store root.
func (m *Manager) inStore(path string) bool {
	root, err := filepath.Abs(m.storeDir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil || p == root {
		return false
	}
	return osutil.IsWithin(root, p)
}

// ListRegistered returns every registered skill sorted by name
func (m *Manager) ListRegistered() ([]Skill, error) {
	reg, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	out := make([]Skill, 0, len(reg.Skills))
	for _, name := range reg.SkillNames() {
		entry := reg.Skills[name]
		out = append(out, Skill{Name: name, Path: entry.Path, SourceURL: entry.SourceURL})
	}
	return out, nil
}

// SkillsWithMetadata validates every registered skill and returns the valid
// ones. An invalid skill is logged and skipped.
func (m *Manager) SkillsWithMetadata(ctx context.Context) ([]SkillWithMetadata, error) {
	registered, err := m.ListRegistered()
	if err != nil {
		return nil, err
	}

	out := make([]SkillWithMetadata, 0, len(registered))
	for _, s := range registered {
		meta, err := m.validate(s.Path)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("skill", s.Name).Warn("skipping invalid skill")
			continue
		}
		out = append(out, SkillWithMetadata{Skill: s, Metadata: meta})
	}
	return out, nil
}

func usableName(name string) bool {
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
