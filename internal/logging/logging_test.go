// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/workdeck/internal/config"
)

func TestNewDisabled(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "info", Encoding: "console"})
	require.NoError(t, err)
	logger.Info("dropped")
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "workdeck.log")
	logger, err := New(config.LoggingConfig{Level: "debug", Encoding: "json", Output: path})
	require.NoError(t, err)

	logger.Debug("task queued")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"task queued"`)
}

func TestNewBadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workdeck.log")
	logger, err := New(config.LoggingConfig{Level: "chatty", Encoding: "console", Output: path})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug disabled at info level")
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
