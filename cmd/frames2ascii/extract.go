package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/frames2ascii/internal/config"
	"github.com/ivlev/frames2ascii/internal/system"
	"github.com/ivlev/frames2ascii/internal/video"
)

func newExtractCommand(root *rootOptions) *cobra.Command {
	var (
		input, output, manifest, prefix string
		fps                             int
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Dump a video into numbered PNG frames with a JSON manifest",
		Long: `Extract runs ffmpeg to write frame_00001.png, frame_00002.png, ... and a manifest
listing them. Without --input the newest video in input/video is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			e := &cfg.Extract
			flags := cmd.Flags()
			if flags.Changed("input") {
				e.Video = input
			}
			if flags.Changed("output") {
				e.OutputDir = output
			}
			if flags.Changed("manifest") {
				e.ManifestPath = manifest
			}
			if flags.Changed("prefix") {
				e.ManifestPrefix = prefix
			}
			if flags.Changed("fps") {
				e.FPS = fps
			}

			log := root.logger(cmd)
			if e.Video == "" {
				latest, err := system.FindLatestVideo(config.DefaultVideoDir)
				if err != nil {
					return fmt.Errorf("%w; pass --input or put a video in %s", err, config.DefaultVideoDir)
				}
				e.Video = latest
				log.Info("selected video", "path", latest)
			}

			m, err := video.NewFFmpegExtractor(log).Extract(cmd.Context(), *e)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Успех! Извлечено кадров: %d, папка: %s\n", len(m.Frames), e.OutputDir)
			if e.ManifestPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "[+++] Манифест сохранен: %s\n", e.ManifestPath)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "Video file (default: newest file in input/video)")
	f.StringVarP(&output, "output", "o", "", "Frames directory (default frames)")
	f.StringVar(&manifest, "manifest", "", "Manifest path, empty to skip (default frames-manifest.json)")
	f.StringVar(&prefix, "prefix", "", "Directory prefix used for manifest entries (default frames)")
	f.IntVar(&fps, "fps", 20, "Extraction frame rate, 0 keeps the native rate")
	return cmd
}
