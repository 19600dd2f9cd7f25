// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, intakeCommand, queueCommand, flaggedCommand, integrationsCommand, syncCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// setupCommand initializes config and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config, database, and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

// intakeCommand feeds captured images through detection into the queue
func intakeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "intake",
		Usage:     "Detect songs in captured images and queue them",
		ArgsUsage: "<image paths...>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "keep-low-confidence",
				Usage: "Queue low-confidence detections instead of dropping them",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Intake,
	}
}

// queueCommand handles the song queue
func queueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "queue",
		Aliases: []string{"q"},
		Usage:   "Inspect and manage the song queue",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List queued songs with per-platform sync status",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV",
					},
				},
				Action: r.QueueList,
			},
			{
				Name:      "remove",
				Usage:     "Remove one song from the queue",
				ArgsUsage: "<song id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.QueueRemove,
			},
			{
				Name:  "clear",
				Usage: "Remove every queued song",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip confirmation",
					},
				},
				Action: r.QueueClear,
			},
		},
	}
}

// flaggedCommand handles unprocessable images
func flaggedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "flagged",
		Usage: "Inspect and manage flagged images",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List flagged images",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.FlaggedList,
			},
			{
				Name:      "dismiss",
				Usage:     "Dismiss one flagged image",
				ArgsUsage: "<flag id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.FlaggedDismiss,
			},
			{
				Name:   "clear",
				Usage:  "Dismiss every flagged image",
				Action: r.FlaggedClear,
			},
		},
	}
}

// integrationsCommand handles platform connections and playlist selection
func integrationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "integrations",
		Aliases: []string{"int"},
		Usage:   "Manage platform connections",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show connection state for every platform",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.IntegrationsStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Probe all platforms in parallel and update connection state",
				Action: r.IntegrationsRefresh,
			},
			{
				Name:      "connect",
				Usage:     "Probe one platform and mark it connected",
				ArgsUsage: "<platform>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "platform"},
				},
				Action: r.IntegrationsConnect,
			},
			{
				Name:      "disconnect",
				Usage:     "Clear a platform's connection, selection, and error",
				ArgsUsage: "<platform>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "platform"},
				},
				Action: r.IntegrationsDisconnect,
			},
			{
				Name:      "select-playlist",
				Usage:     "Choose the sync target playlist for a platform",
				ArgsUsage: "<platform>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "platform"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Playlist ID to select",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Playlist name to resolve against the platform's playlists",
					},
				},
				Action: r.IntegrationsSelectPlaylist,
			},
		},
	}
}

// syncCommand runs the reconciliation engine
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile queued songs against connected platform playlists",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Sync the whole queue (or one song with --song)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "song",
						Usage: "Sync only the song with this id",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Report format: text, json, markdown",
						Value: "text",
					},
				},
				Action: r.SyncRun,
			},
		},
	}
}

// tuiCommand launches the interactive queue browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse the queue interactively",
		Action: r.TUI,
	}
}
