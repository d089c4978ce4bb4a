// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli provides command-line parsing and the headless commands of
workdeck.

Parse turns os.Args into a Command and Args. Each command handler takes an
Env holding the opened store, the workspace manager and the task engine:

	cmd, args := cli.Parse()
	switch cmd {
	case cli.CmdProject:
		err = cli.HandleProject(ctx, env, args)
	}

Long-running operations are submitted to the engine exactly as the TUI
submits them; FollowTask prints their phases until they settle.
*/
package cli
