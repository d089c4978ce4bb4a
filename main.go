// workdeck - branch workspaces with background tasks.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/workdeck/internal/cli"
	"github.com/jeranaias/workdeck/internal/config"
	"github.com/jeranaias/workdeck/internal/logging"
	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/ui/deck"
	"github.com/jeranaias/workdeck/internal/ui/styles"
	"github.com/jeranaias/workdeck/internal/workspace"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()

	// Commands that need neither config nor storage
	switch cmd {
	case cli.CmdVersion:
		fmt.Println(cli.VersionString())
		return cli.ExitSuccess
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdUnknown:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args.Subcommand)
		cli.PrintUsage(os.Stderr)
		return cli.ExitUsageError
	}

	cfg, err := loadConfig(args)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.ExitCode(err)
	}
	if args.Verbose {
		cfg.Logging.Output = "stderr"
		cfg.Logging.Level = "debug"
	}
	if cmd == cli.CmdTUI {
		cfg.Logging = tuiLogging(cfg)
	}

	if cmd == cli.CmdConfig {
		err := cli.HandleConfig(&cli.Env{Config: cfg, Out: os.Stdout}, args)
		if err != nil {
			cli.DisplayError(os.Stderr, err)
		}
		return cli.ExitCode(err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.ExitConfigError
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, closeEnv, err := openEnv(cfg, logger)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.ExitCode(err)
	}
	defer closeEnv()
	env.Quiet = args.Quiet
	env.JSON = args.JSON

	switch cmd {
	case cli.CmdProject:
		err = cli.HandleProject(ctx, env, args)
	case cli.CmdWorkspace:
		err = cli.HandleWorkspace(ctx, env, args)
	default:
		err = runTUI(ctx, env, logger)
	}
	if err != nil {
		cli.DisplayError(os.Stderr, err)
	}
	return cli.ExitCode(err)
}

// tuiLogging keeps the logger off the terminal while the alt screen is up.
func tuiLogging(cfg *config.Config) config.LoggingConfig {
	lc := cfg.Logging
	if lc.Output == "stderr" || lc.Output == "stdout" {
		lc.Output = filepath.Join(cfg.Storage.DataDir, "workdeck.log")
	}
	return lc
}

func loadConfig(args cli.Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFromPath(args.ConfigPath)
	}
	return config.Load()
}

// openEnv opens the project database and wires the engine and manager.
// The returned func waits briefly for in-flight tasks and closes the store.
func openEnv(cfg *config.Config, logger *zap.Logger) (*cli.Env, func(), error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := workspace.OpenStore(cfg.DatabasePath())
	if err != nil {
		return nil, nil, err
	}
	cloner, err := workspace.NewCloner(cfg.Storage.Cloner)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	engine := tasks.New(
		tasks.WithHeavyLimit(cfg.Tasks.HeavyLimit),
		tasks.WithLogger(logger),
	)
	mgr := workspace.NewManager(store, engine, cloner, cfg.Storage.WorkspaceRoot, logger)

	env := &cli.Env{
		Config:  cfg,
		Store:   store,
		Manager: mgr,
		Engine:  engine,
		Out:     os.Stdout,
	}
	closeEnv := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := engine.Wait(ctx); err != nil {
			logger.Warn("tasks still running at exit", zap.Int("active", engine.Stats().Active))
		}
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}
	return env, closeEnv, nil
}

func runTUI(ctx context.Context, env *cli.Env, logger *zap.Logger) error {
	if err := cli.RequiresTTY("run the TUI"); err != nil {
		return err
	}

	stopWatcher := watchWorkspaces(ctx, env, logger)
	defer stopWatcher()

	model := deck.New(env.Engine, env.Manager, styles.NewTheme(), env.Config.UI)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// watchWorkspaces starts the workspace watcher when enabled. The returned
// func cancels it and waits for it to exit; the watcher submits tasks and
// reads the store, so it must be gone before closeEnv runs.
func watchWorkspaces(ctx context.Context, env *cli.Env, logger *zap.Logger) func() {
	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	stop := func() {
		cancel()
		if err := g.Wait(); err != nil {
			logger.Warn("workspace watcher stopped", zap.Error(err))
		}
	}
	if !env.Config.Storage.Watch {
		return stop
	}

	w, err := workspace.NewWatcher(env.Manager, workspace.DefaultDebounce, logger)
	if err != nil {
		logger.Warn("workspace watcher disabled", zap.Error(err))
		return stop
	}
	g.Go(func() error {
		defer w.Close()
		return w.Run(gctx)
	})
	return stop
}
