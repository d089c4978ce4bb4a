// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/workdeck/internal/config"
)

func TestTUILoggingAvoidsTerminal(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()

	cfg.Logging.Output = "stderr"
	lc := tuiLogging(cfg)
	assert.Equal(t, filepath.Join(cfg.Storage.DataDir, "workdeck.log"), lc.Output)

	cfg.Logging.Output = "/var/log/workdeck.log"
	assert.Equal(t, "/var/log/workdeck.log", tuiLogging(cfg).Output)

	cfg.Logging.Output = ""
	assert.Equal(t, "", tuiLogging(cfg).Output)
}

func TestWatcherStopsBeforeClose(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.WorkspaceRoot = filepath.Join(cfg.Storage.DataDir, "workspaces")
	cfg.Storage.Cloner = "copy"
	cfg.Storage.Watch = true

	env, closeEnv, err := openEnv(cfg, zap.NewNop())
	require.NoError(t, err)
	env.Out = &bytes.Buffer{}

	stop := watchWorkspaces(context.Background(), env, zap.NewNop())

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	closeEnv()
}
