// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for workdeck.
//
// # Configuration Precedence
//
//   - Environment variables (WORKDECK_HEAVY_LIMIT, WORKDECK_DATA_DIR,
//     WORKDECK_WORKSPACE_ROOT, WORKDECK_LOG_LEVEL)
//   - ~/.workdeck/config.toml
//   - Built-in defaults
//
// Only tasks.heavy_limit reaches the task engine; toast lifetimes and list
// sizes are fixed.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine := tasks.New(tasks.WithHeavyLimit(cfg.Tasks.HeavyLimit))
package config
