// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// setupCommand initializes local configuration and storage
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config file and initialize session storage",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles the PKCE login flow and session management
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in via the browser using the PKCE flow",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the current session state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session",
				Action: r.AuthLogout,
			},
		},
	}
}

// profileCommand shows the authenticated user's profile
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "Show the authenticated user's profile",
		Flags:  outputFlags(),
		Action: r.Profile,
	}
}

// searchCommand searches the track catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for tracks",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: append(outputFlags(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "pick",
				Usage: "Pick a result interactively and download it",
			},
		),
		Action: r.Search,
	}
}

// playlistCommand manages playlists
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist",
				Flags: append(outputFlags(),
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
					&cli.StringSliceFlag{
						Name:  "track",
						Usage: "Track URI to add (repeatable)",
					},
				),
				Action: r.PlaylistCreate,
			},
		},
	}
}

// downloadCommand downloads a track through the proxy backend
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Search for a track and download it",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Action: r.Download,
	}
}

// historyCommand lists past downloads
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List downloaded tracks",
		Flags: append(outputFlags(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries",
				Value: 50,
			},
		),
		Action: r.History,
	}
}
