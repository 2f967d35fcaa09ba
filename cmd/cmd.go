// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ankix/internal/formatter"
	"github.com/desertthunder/ankix/internal/tasks"
)

// uploadCommand uploads PDFs and follows the processing job.
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Aliases:   []string{"up"},
		Usage:     "Upload PDF files and generate a flashcard deck",
		ArgsUsage: "<file.pdf> [file.pdf...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "topics",
				Usage: "Also generate topic summary cards",
				Value: r.config.Processing.IncludeTopicCards,
			},
			&cli.IntFlag{
				Name:  "cards-per-topic",
				Usage: "Number of cards to generate per topic",
				Value: r.config.Processing.CardsPerTopic,
			},
			&cli.BoolFlag{
				Name:  "no-wait",
				Usage: "Print the job id and exit without polling",
			},
		},
		Action: r.Upload,
	}
}

// statusCommand follows an existing processing job.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the status of a processing job",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "job-id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Check the status once instead of polling until the job finishes",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON (with --once)",
			},
		},
		Action: r.Status,
	}
}

// decksCommand handles deck listing and export
func decksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "decks",
		Usage: "Deck operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List decks on the backend",
				Flags: []cli.Flag{
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
				Action: r.DecksList,
			},
			{
				Name:  "download",
				Usage: "Download a deck's package",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "deck"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Directory to write the package to",
						Value:   r.config.Export.Dir,
					},
				},
				Action: r.DecksDownload,
			},
			{
				Name:      "export",
				Usage:     "Export several decks concurrently (all decks when none are named)",
				ArgsUsage: "[deck...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: " + tasks.FormatPackage + ", " + strings.Join(formatter.Formats, ", "),
						Value:   tasks.FormatPackage,
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: ankix_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent exports",
						Value: r.config.Export.Workers,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Export requests per second",
						Value: r.config.Export.RateLimit,
					},
				},
				Action: r.DecksExport,
			},
		},
	}
}

// cardsCommand handles operations on a single deck's cards
func cardsCommand(r *Runner) *cli.Command {
	indexFlag := func() cli.Flag {
		return &cli.IntFlag{
			Name:     "index",
			Aliases:  []string{"i"},
			Usage:    "1-based card number",
			Required: true,
		}
	}

	return &cli.Command{
		Name:  "cards",
		Usage: "Card operations",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print a deck's cards",
				Arguments: []cli.Argument{&cli.StringArg{Name: "deck"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: " + strings.Join(formatter.Formats, ", "),
						Value:   formatter.FormatText,
					},
				},
				Action: r.CardsShow,
			},
			{
				Name:      "edit",
				Usage:     "Change a card's question or answer and save the deck",
				Arguments: []cli.Argument{&cli.StringArg{Name: "deck"}},
				Flags: []cli.Flag{
					indexFlag(),
					&cli.StringFlag{
						Name:    "question",
						Aliases: []string{"q"},
						Usage:   "New question text",
					},
					&cli.StringFlag{
						Name:    "answer",
						Aliases: []string{"a"},
						Usage:   "New answer text",
					},
				},
				Action: r.CardsEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a card and save the deck",
				Arguments: []cli.Argument{&cli.StringArg{Name: "deck"}},
				Flags:     []cli.Flag{indexFlag()},
				Action:    r.CardsDelete,
			},
		},
	}
}

// reviewCommand opens the review screen for a deck.
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "Review a deck interactively",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "deck"},
		},
		Action: r.Review,
	}
}

// historyCommand lists recorded exports.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show exported packages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "deck",
				Usage: "Only show exports of this deck",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of exports to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for config and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   configFile,
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the export history database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Database file (default: database.path from config)",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// mockCommand runs the in-memory development backend.
func mockCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "mock",
		Aliases: []string{"serve"},
		Usage:   "Run a development backend that implements the flashcard API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Address to listen on",
				Value: r.config.Server.Host,
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
				Value: r.config.Server.Port,
			},
			&cli.StringFlag{
				Name:  "seed",
				Usage: "Directory of <deck>.csv files to load at startup",
			},
			&cli.FloatFlag{
				Name:  "step",
				Usage: "Progress a job gains per status poll",
				Value: 25,
			},
		},
		Action: r.Serve,
	}
}

// healthCommand checks that the backend is reachable.
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check the backend health endpoint",
		Action: r.Health,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "route",
				Usage: "Screen to open: /, /decks, /status/:jobId or /review/:deckName",
				Value: "/",
			},
		},
		Action: r.TUI,
	}
}
