// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - workdeck config show|path|init|set.
package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/workdeck/internal/config"
)

// HandleConfig runs a config subcommand. It needs only the loaded config.
func HandleConfig(env *Env, args Args) error {
	p := NewArgParser(args.Raw)
	switch p.Subcommand() {
	case "show", "":
		fmt.Fprint(env.Out, env.Config.String())
		return nil

	case "path":
		path, err := configFile(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Out, path)
		return nil

	case "init":
		path, err := configFile(args)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !p.BoolFlag("force") {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "%s %s\n", SuccessStyle.Render("Wrote"), path)
		return nil

	case "set":
		if err := p.Require(3, "workdeck config set <key> <value>"); err != nil {
			return err
		}
		path, err := configFile(args)
		if err != nil {
			return err
		}
		cfg, err := config.ReadFile(path)
		if err != nil {
			return err
		}
		if err := cfg.Set(p.Positional(1), p.Positional(2)); err != nil {
			return err
		}
		if err := config.Save(cfg, path); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "%s %s = %s\n", SuccessStyle.Render("Set"), p.Positional(1), p.Positional(2))
		return nil

	default:
		return &UsageError{Usage: "workdeck config show|path|init|set"}
	}
}

// configFile is the file --config names, or ~/.workdeck/config.toml.
func configFile(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}
