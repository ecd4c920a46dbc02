package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/frames2ascii/internal/qr"
)

func newQRCommand(root *rootOptions) *cobra.Command {
	var (
		url, output, level string
		size               int
		noBorder           bool
	)

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Write a PNG QR code for a URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			q := &cfg.QR
			flags := cmd.Flags()
			if flags.Changed("url") {
				q.URL = url
			}
			if flags.Changed("output") {
				q.Output = output
			}
			if flags.Changed("level") {
				q.Level = level
			}
			if flags.Changed("size") {
				q.Size = size
			}
			if flags.Changed("no-border") {
				q.Border = !noBorder
			}

			if err := qr.Generate(*q); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+++] Успех! QR-код для %s сохранен: %s\n", q.URL, q.Output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&url, "url", "", "Content to encode")
	f.StringVarP(&output, "output", "o", "", "PNG path (default qr.png)")
	f.StringVar(&level, "level", "Q", "Error recovery level: L, M, Q or H")
	f.IntVar(&size, "size", 256, "Image width and height in pixels")
	f.BoolVar(&noBorder, "no-border", false, "Omit the quiet zone around the symbol")
	return cmd
}
