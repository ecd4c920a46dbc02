package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/frames2ascii/internal/engine"
)

func newRenderCommand(root *rootOptions) *cobra.Command {
	var (
		input, output, palette, format string
		invert, stats                  bool
		scale                          float64
		fps, workers                   int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render frame images into an ASCII playback artifact",
		Long: `Render reads still images (a directory, a glob or a single file), sorts them by
file name, converts each to ASCII art and writes one playback artifact holding
the frame rate and every frame.

The frame rate is not checked against the source video; keep --fps equal to
the rate used by extract.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return &engine.StageError{Stage: engine.StageConfig, Path: root.configPath, Err: err}
			}

			r := &cfg.Render
			flags := cmd.Flags()
			if flags.Changed("input") {
				r.Input = input
			}
			if flags.Changed("output") {
				r.Output = output
			}
			if flags.Changed("palette") {
				r.Palette = palette
			}
			if flags.Changed("format") {
				r.Format = format
			}
			if flags.Changed("invert") {
				r.Invert = invert
			}
			if flags.Changed("stats") {
				r.ShowStats = stats
			}
			if flags.Changed("y-scale") {
				r.VerticalScale = scale
			}
			if flags.Changed("fps") {
				r.FPS = fps
			}
			if flags.Changed("workers") {
				r.Workers = workers
			}

			project := engine.NewRenderProject(*r, nil, root.logger(cmd))
			project.Build = version
			res, err := project.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Успех! Кадров: %d, результат: %s\n", res.Frames, res.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "Frames directory, glob pattern or image file (default frames/frame_*.png)")
	f.StringVarP(&output, "output", "o", "", "Artifact path (default web/frames.js)")
	f.StringVar(&palette, "palette", "", "Characters from darkest to lightest")
	f.StringVar(&format, "format", "", "Artifact format: js or json (default: by output extension)")
	f.BoolVar(&invert, "invert", false, "Swap the light and dark ends of the palette")
	f.BoolVar(&stats, "stats", false, "Log a performance report after rendering")
	f.Float64Var(&scale, "y-scale", 1.0, "Vertical scale factor; 2.0 halves the row count")
	f.IntVar(&fps, "fps", 20, "Playback frame rate written to the artifact")
	f.IntVar(&workers, "workers", 0, "Parallel frame workers (0 = logical CPUs)")
	return cmd
}
