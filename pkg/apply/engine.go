// Package apply projects the registered skills into the skills directory
// of every enabled agent, as symlinks to the canonical store or as copies.
package apply

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jingkaihe/mskills/pkg/agents"
	"github.com/jingkaihe/mskills/pkg/logger"
	"github.com/jingkaihe/mskills/pkg/osutil"
	"github.com/jingkaihe/mskills/pkg/registry"
)

// AgentResolver maps an agent identifier to its target directory
type AgentResolver interface {
	Lookup(id string) (agents.Target, bool)
}

// Options controls one apply run
type Options struct {
	Mode  Mode
	Force bool
	// Only restricts the run to skills whose name matches this glob.
	Only string
}

// Engine reconciles agent directories against the registry
type Engine struct {
	store    registry.Store
	agents   AgentResolver
	copyOpts []osutil.CopyOption
}

// EngineOption configures an Engine instance
type EngineOption func(*Engine)

// WithCopyOptions sets the options used in copy mode
func WithCopyOptions(opts ...osutil.CopyOption) EngineOption {
	return func(e *Engine) {
		e.copyOpts = append(e.copyOpts, opts...)
	}
}

// NewEngine creates an apply engine
func NewEngine(store registry.Store, resolver AgentResolver, opts ...EngineOption) *Engine {
	e := &Engine{store: store, agents: resolver}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply processes every enabled agent in registry order and every skill in
// name order. Per-pair problems become warnings in the report and never stop
// the run; the returned error covers only loading the registry and bad options.
func (e *Engine) Apply(ctx context.Context, opts Options) (*Report, error) {
	if opts.Mode == "" {
		opts.Mode = ModeSymlink
	}
	if _, err := ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}

	var only glob.Glob
	if opts.Only != "" {
		g, err := glob.Compile(opts.Only)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid skill pattern %q", opts.Only)
		}
		only = g
	}

	reg, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	if len(reg.Skills) == 0 {
		report.warn("No skills configured.")
		return report, nil
	}
	if len(reg.Agents) == 0 {
		report.warn("No agents enabled.")
		return report, nil
	}

	names := reg.SkillNames()
	if only != nil {
		names = filter(names, only)
		if len(names) == 0 {
			report.warn("No skills match '%s'.", opts.Only)
			return report, nil
		}
	}

	for _, id := range reg.Agents {
		target, ok := e.agents.Lookup(id)
		if !ok {
			report.warn("Skipping unknown agent: %s", id)
			continue
		}

		log := logger.G(ctx).WithFields(logrus.Fields{"agent": id, "dir": target.SkillsDirectory})
		if err := os.MkdirAll(target.SkillsDirectory, 0o755); err != nil {
			for _, name := range names {
				report.add(Result{Agent: id, Skill: name, Outcome: Failed, Err: err})
				report.warn("Failed to apply %s to %s: %v", name, id, err)
			}
			continue
		}

		for _, name := range names {
			res := e.applyOne(reg.Skills[name].Path, target, name, opts)
			report.add(res)

			switch res.Outcome {
			case Conflict:
				report.warn("Conflict: '%s' already exists at %s. Use --force to overwrite.", name, res.Target)
			case Failed:
				report.warn("Failed to apply %s to %s: %v", name, id, res.Err)
			}
			log.WithField("skill", name).WithField("outcome", res.Outcome).Debug("applied skill")
		}
	}

	return report, nil
}

func (e *Engine) applyOne(canonical string, target agents.Target, name string, opts Options) Result {
	res := Result{Agent: target.ID, Skill: name, Target: filepath.Join(target.SkillsDirectory, name)}

	info, err := os.Lstat(res.Target)
	switch {
	case os.IsNotExist(err):
		res.Outcome = Created
	case err != nil:
		res.Outcome, res.Err = Failed, err
		return res
	default:
		if opts.Mode == ModeSymlink && info.Mode()&os.ModeSymlink != 0 {
			link, err := os.Readlink(res.Target)
			if err != nil {
				res.Outcome, res.Err = Failed, err
				return res
			}
			if link == canonical {
				res.Outcome = Unchanged
				return res
			}
		}
		if !opts.Force {
			res.Outcome = Conflict
			return res
		}
		if err := os.RemoveAll(res.Target); err != nil {
			res.Outcome, res.Err = Failed, err
			return res
		}
		res.Outcome = Replaced
	}

	if err := e.project(canonical, res.Target, opts.Mode); err != nil {
		res.Outcome, res.Err = Failed, err
	}
	return res
}

func (e *Engine) project(canonical, target string, mode Mode) error {
	if mode == ModeCopy {
		return osutil.CopyDir(canonical, target, e.copyOpts...)
	}
	return os.Symlink(canonical, target)
}

func filter(names []string, g glob.Glob) []string {
	out := names[:0:0]
	for _, n := range names {
		if g.Match(n) {
			out = append(out, n)
		}
	}
	return out
}
