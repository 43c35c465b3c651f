// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// tokenFlag identifies the acting user for commands that go through the
// lifecycle service.
func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Aliases: []string{"t"},
		Usage:   "API token of the acting user (defaults to SUB000_TOKEN)",
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "seed",
						Usage: "Create demo artist and label manager accounts",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// userCommand manages label accounts.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create an account and print its API token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "Account role (artist or label_manager)",
						Value: "artist",
					},
				},
				Action: r.UserAdd,
			},
			{
				Name:  "list",
				Usage: "List accounts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "role",
						Usage: "Filter by role",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.UserList,
			},
		},
	}
}

// submissionCommand handles the artist-facing submission operations.
func submissionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "submission",
		Aliases: []string{"sub"},
		Usage:   "Create and manage release submissions",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Submit a new release",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Release title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Artist name (comma-separated lists collapse to Various Artist)",
					},
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Genre",
					},
					&cli.StringFlag{
						Name:  "release-date",
						Usage: "Requested release date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "cover",
						Usage: "Cover art reference",
					},
					&cli.StringSliceFlag{
						Name:  "audio",
						Usage: "Audio file reference (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "track",
						Usage: "Track as 'Title|ArtistCredit|Seconds|FileRef' (repeatable, later fields optional)",
					},
				},
				Action: r.SubmissionCreate,
			},
			{
				Name:  "list",
				Usage: "List visible submissions",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SubmissionList,
			},
			{
				Name:  "show",
				Usage: "Show one submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.SubmissionShow,
			},
			{
				Name:  "edit",
				Usage: "Edit submission metadata",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{Name: "title", Usage: "New title"},
					&cli.StringFlag{Name: "artist", Usage: "New artist name"},
					&cli.StringFlag{Name: "genre", Usage: "New genre"},
					&cli.StringFlag{Name: "upc", Usage: "UPC code"},
					&cli.StringFlag{Name: "release-date", Usage: "New requested release date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "cover", Usage: "New cover art reference"},
					&cli.StringSliceFlag{Name: "audio", Usage: "Replacement audio references"},
				},
				Action: r.SubmissionEdit,
			},
			{
				Name:  "delete",
				Usage: "Delete a submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.SubmissionDelete,
			},
			{
				Name:  "status",
				Usage: "Change a submission's status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Target status",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "reason",
						Usage: "Comment recorded with the change",
					},
				},
				Action: r.SubmissionStatus,
			},
			{
				Name:  "resubmit",
				Usage: "Move a rejected submission back to pending",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.SubmissionResubmit,
			},
			{
				Name:  "release-date",
				Usage: "Set the requested release date",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:     "date",
						Usage:    "Requested release date (YYYY-MM-DD)",
						Required: true,
					},
				},
				Action: r.SubmissionReleaseDate,
			},
			{
				Name:  "tracks",
				Usage: "List a submission's tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.SubmissionTracks,
			},
			{
				Name:  "history",
				Usage: "Show a submission's status history",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.SubmissionHistory,
			},
		},
	}
}

// reviewCommand handles label-manager review operations.
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "Review submissions",
		Commands: []*cli.Command{
			{
				Name:   "queue",
				Usage:  "List submissions awaiting a decision",
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.ReviewQueue,
			},
			{
				Name:  "approve",
				Usage: "Approve a pending submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.ReviewApprove,
			},
			{
				Name:  "reject",
				Usage: "Reject a pending submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:     "reason",
						Usage:    "Rejection reason",
						Required: true,
					},
				},
				Action: r.ReviewReject,
			},
			{
				Name:  "process",
				Usage: "Move an approved submission into processing",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:  "reason",
						Usage: "Comment recorded with the change",
					},
				},
				Action: r.ReviewProcess,
			},
			{
				Name:  "publish",
				Usage: "Publish a processing submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:  "reason",
						Usage: "Comment recorded with the change",
					},
				},
				Action: r.ReviewPublish,
			},
			{
				Name:  "cancel",
				Usage: "Cancel a submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:  "reason",
						Usage: "Comment recorded with the change",
					},
				},
				Action: r.ReviewCancel,
			},
			{
				Name:   "summary",
				Usage:  "Show per-status counts for the visible catalog",
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.ReviewSummary,
			},
			{
				Name:  "digest",
				Usage: "Generate a catalog digest",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (json, csv, markdown, txt)",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the digest to a file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ReviewDigest,
			},
		},
	}
}

// isrcCommand handles code allocation.
func isrcCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "isrc",
		Usage: "Allocate ISRC codes",
		Commands: []*cli.Command{
			{
				Name:  "allocate",
				Usage: "Backfill missing codes on one submission",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{tokenFlag()},
				Action: r.ISRCAllocate,
			},
			{
				Name:      "bulk",
				Usage:     "Backfill missing codes across submissions",
				ArgsUsage: "[id ...]",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.BoolFlag{
						Name:  "all-pending",
						Usage: "Target every visible pending submission",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Allocations per second",
						Value: 5.0,
					},
				},
				Action: r.ISRCBulk,
			},
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the submission HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Bind port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive review.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive review terminal",
		Flags:   []cli.Flag{tokenFlag()},
		Action:  r.TUI,
	}
}
