// submodule cmd contains command definitions
package main

import (
	"fmt"

	"github.com/desertthunder/songshift/internal/shared"
	"github.com/urfave/cli/v3"
)

// globalFlags are shared by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("SONGSHIFT_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Path to a .env file with credential overrides",
			Value: ".env",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// setupCommand writes a default config file and initializes the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml if missing and initialize the database",
		Action: r.Setup,
	}
}

// authCommand runs the Spotify authorization flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify and cache the token in the config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
		},
		Action: r.Auth,
	}
}

// exportCommand writes a library export JSON from a source service
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export saved tracks and playlists to a library JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Service to export from (spotify or youtube)",
				Value:   "spotify",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
				Value:   "library.json",
			},
		},
		Action: r.Export,
	}
}

// importCommand resolves a library export against Spotify and recreates it there
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a library JSON file into Spotify",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Resolve songs missing from an existing mapping",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve and write the mapping and report without changing the library",
			},
			&cli.StringFlag{
				Name:  "mapping-store",
				Usage: fmt.Sprintf("Mapping storage (%s or %s), defaults to import.mapping_store", shared.MappingStoreCSV, shared.MappingStoreSQLite),
			},
			&cli.StringFlag{
				Name:    "mapping",
				Aliases: []string{"m"},
				Usage:   "CSV mapping file, defaults to import.mapping_path",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Unmatched report path, defaults to import.report_path",
			},
			&cli.StringFlag{
				Name:  "report-format",
				Usage: "Unmatched report format (json, csv or text), defaults to import.report_format",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print the summary",
			},
		},
		Action: r.Import,
	}
}

// clearCommand removes every saved track and playlist from Spotify
func clearCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove all saved tracks and playlists from the Spotify account",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: r.Clear,
	}
}

// matchCommand resolves one track for debugging the matcher
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Resolve a single artist and title against Spotify",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "artist",
			},
			&cli.StringArg{
				Name: "title",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "album",
				Usage: "Album name, used only for display",
			},
			&cli.BoolFlag{
				Name:  "plan",
				Usage: "Print the search stages without running them",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Match,
	}
}

// historyCommand lists import runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List previous imports",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show runs with this status",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.History,
	}
}

// browseCommand opens the library browser
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse a library JSON file and its mapping in the terminal",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mapping-store",
				Usage: "Mapping storage (csv or sqlite), defaults to import.mapping_store",
			},
			&cli.StringFlag{
				Name:    "mapping",
				Aliases: []string{"m"},
				Usage:   "CSV mapping file, defaults to import.mapping_path",
			},
		},
		Action: r.Browse,
	}
}
