// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for workdeck.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdProject
	CmdWorkspace
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	ConfigPath string

	// Subcommand is the first argument after the command
	Subcommand string

	// Raw args after the command, subcommand included
	Raw []string
}

const usageText = `workdeck - branch workspaces with background tasks

Usage:
  workdeck [tui]                              Start the TUI (default)
  workdeck project add <name> <path>          Register a project
  workdeck project list                       List projects
  workdeck project remove <project>           Remove a project and its workspaces
  workdeck workspace create <project> <branch> Clone a branch workspace
  workdeck workspace delete <workspace>       Delete a workspace
  workdeck workspace list <project>           List a project's workspaces
  workdeck config show                        Print the effective configuration
  workdeck config path                        Print the config file path
  workdeck config init [--force]              Write a default config file
  workdeck config set <key> <value>           Change one setting, e.g. tasks.heavy_limit
  workdeck version                            Show version

Projects and workspaces may be named by id, unique id prefix, or (projects)
name.

Global flags:
  -q, --quiet          Only print results
  -v, --verbose        Log to stderr at debug level
  --json               Machine-readable output for list commands
  --config <path>      Use a config file other than ~/.workdeck/config.toml

TUI keys:
  n  new workspace  d    delete selected (y confirms)
  t  toggle tasks   tab  switch pane   j/k  select
  enter  view task  r    retry failed  x    dismiss newest toast
  h  hide recent    esc  cancel prompt  q  quit
`

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments without the program name.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(args)
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	parsed.Raw = remaining[1:]
	if len(parsed.Raw) > 0 {
		parsed.Subcommand = strings.ToLower(parsed.Raw[0])
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsed
	case "project", "projects", "p":
		return CmdProject, parsed
	case "workspace", "workspaces", "ws", "w":
		return CmdWorkspace, parsed
	case "config":
		return CmdConfig, parsed
	case "version", "--version", "-V":
		return CmdVersion, parsed
	case "help", "--help", "-h":
		return CmdHelp, parsed
	default:
		parsed.Subcommand = cmd
		return CmdUnknown, parsed
	}
}

// parseGlobalFlags extracts flags valid before or after any command.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsed.ConfigPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}
	return remaining, parsed
}

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// VersionString returns the full version line.
func VersionString() string {
	return fmt.Sprintf("workdeck %s (commit %s, built %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
