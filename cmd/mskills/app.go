package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/mskills/pkg/agents"
	"github.com/jingkaihe/mskills/pkg/apply"
	"github.com/jingkaihe/mskills/pkg/config"
	"github.com/jingkaihe/mskills/pkg/git"
	"github.com/jingkaihe/mskills/pkg/logger"
	"github.com/jingkaihe/mskills/pkg/osutil"
	"github.com/jingkaihe/mskills/pkg/presenter"
	"github.com/jingkaihe/mskills/pkg/registry"
)

// app holds the collaborators shared by every command of one invocation
type app struct {
	paths    config.Paths
	settings *config.Settings
	store    *registry.FileStore
	skills   *registry.Manager
	agents   *agents.Manager
	catalog  *agents.Catalog
	engine   *apply.Engine
	out      *presenter.Presenter
}

var current *app

func setupApp(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	current = a
	return nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, err
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user home directory")
	}
	if strings.TrimSpace(os.Getenv(config.EnvHome)) == "" {
		config.MigrateLegacy(ctx, userHome, paths)
	}

	v := viper.New()
	if err := v.BindPFlag("log_level", cmd.Flags().Lookup("log-level")); err != nil {
		return nil, errors.Wrap(err, "failed to bind log-level flag")
	}
	if err := v.BindPFlag("log_format", cmd.Flags().Lookup("log-format")); err != nil {
		return nil, errors.Wrap(err, "failed to bind log-format flag")
	}

	settings, err := config.Load(v, paths)
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(settings.LogLevel, settings.LogFormat); err != nil {
		return nil, err
	}

	copyOpts := []osutil.CopyOption{osutil.WithExclude(settings.CopyExclude...)}
	installer := git.NewInstaller(
		git.WithClient(git.NewExecClient(settings.Git.Binary)),
		git.WithDefaultBranch(settings.Git.DefaultBranch),
		git.WithCopyOptions(copyOpts...),
	)

	out := presenter.NewWithOptions(cmd.OutOrStdout(), cmd.ErrOrStderr(), presenter.DetectColorMode())
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
		out.SetQuiet(quiet)
	}

	store := registry.NewFileStore(paths.RegistryFile)
	catalog := agents.NewCatalog(userHome, settings.CustomAgents)

	return &app{
		paths:    paths,
		settings: settings,
		store:    store,
		skills:   registry.NewManager(store, settings.StoreDir, registry.WithInstaller(installer), registry.WithCopyOptions(copyOpts...)),
		agents:   agents.NewManager(store, catalog),
		catalog:  catalog,
		engine:   apply.NewEngine(store, catalog, apply.WithCopyOptions(copyOpts...)),
		out:      out,
	}, nil
}
