package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ivlev/frames2ascii/internal/config"
	"github.com/ivlev/frames2ascii/internal/logging"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "frames2ascii",
		Short: "Turn video frames into ASCII art for web playback",
		Long: `frames2ascii converts a video into ASCII-art text frames that a web page can play back.

Typical pipeline:
  # 1. Dump the video into numbered PNG frames at 20 fps
  frames2ascii extract -i clip.mp4 -o frames --fps 20

  # 2. Render the frames into a JavaScript module
  frames2ascii render -i 'frames/frame_*.png' -o web/frames.js --fps 20

  # Optional: a QR code pointing at the page
  frames2ascii qr --url https://example.org/ -o qr.png`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (flags override its values)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newRenderCommand(opts),
		newExtractCommand(opts),
		newQRCommand(opts),
		newVersionCommand(),
	)
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	return cfg, nil
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), o.verbose)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
