// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand initializes the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recently applied migration instead of migrating up",
			},
		},
		Action: r.SetupDatabase,
	}
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Scan a directory for audio files and add them to the library",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "dir"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent tag readers (default from config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the import result as JSON",
			},
		},
		Action: r.Import,
	}
}

func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tracks",
		Usage:  "List every track in the library",
		Flags:  jsonFlags(),
		Action: r.Tracks,
	}
}

func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "artists",
		Usage:  "List artists with their album counts",
		Flags:  jsonFlags(),
		Action: r.Artists,
	}
}

func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artist",
		Usage: "Show an artist's tracks grouped by album",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name"},
		},
		Flags:  jsonFlags(),
		Action: r.Artist,
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete tracks by id, or every track of an artist",
		ArgsUsage: "<ids...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Delete every track involving this artist",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the deletion result as JSON",
			},
		},
		Action: r.Delete,
	}
}

func clearCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every track, waveform and playlist",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Confirm clearing the library",
			},
		},
		Action: r.Clear,
	}
}

func shuffleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shuffle",
		Usage: "Shuffle an artist or playlist and start playing it",
		Commands: []*cli.Command{
			{
				Name:      "artist",
				Usage:     "Shuffle every track involving an artist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.ShuffleArtist,
			},
			{
				Name:      "playlist",
				Usage:     "Shuffle a playlist or folder",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.ShufflePlaylist,
			},
		},
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a playlist or folder",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "folder",
						Usage: "Create a folder instead of a playlist",
					},
					&cli.StringFlag{
						Name:  "parent",
						Usage: "Folder to create the playlist in",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:      "add",
				Usage:     "Append tracks to a playlist",
				ArgsUsage: "<name> <ids...>",
				Action:    r.PlaylistAdd,
			},
			{
				Name:      "show",
				Usage:     "Show the tracks of a playlist or folder",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     jsonFlags(),
				Action:    r.PlaylistShow,
			},
			{
				Name:   "list",
				Usage:  "Show the playlist tree",
				Flags:  jsonFlags(),
				Action: r.PlaylistList,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist or folder with its children",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.PlaylistDelete,
			},
		},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: json, csv, markdown or txt",
			Value:   "json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: <name>.<ext>)",
		},
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export an artist or playlist to a file",
		Commands: []*cli.Command{
			{
				Name:      "artist",
				Usage:     "Export an artist's tracks grouped by album",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     exportFlags(),
				Action:    r.ExportArtist,
			},
			{
				Name:      "playlist",
				Usage:     "Export a playlist in order",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     exportFlags(),
				Action:    r.ExportPlaylist,
			},
		},
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show library statistics",
		Flags:  jsonFlags(),
		Action: r.Stats,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the library over HTTP with a websocket notification feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from config)",
			},
		},
		Action: r.Serve,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse the library in an interactive terminal UI",
		Action: r.TUI,
	}
}
