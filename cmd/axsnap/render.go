package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-drift/axsnap/pkg/inspector"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output   string
		noLabels bool
	)
	cmd := &cobra.Command{
		Use:   "render FIXTURE",
		Short: "Render visible bounds to a PNG",
		Long: `Draw the visible bounds of every element as outlines colored by depth.

Examples:
  axsnap render screen.yaml -o screen.png
  axsnap render screen.yaml -o - --scale 0.5 > small.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			root, _, err := a.load(args[0])
			if err != nil {
				return err
			}
			img, err := inspector.Render(root, inspector.Options{Scale: a.cfg.Scale, Labels: !noLabels})
			if err != nil {
				return err
			}

			if output == "-" {
				return inspector.EncodePNG(cmd.OutOrStdout(), img)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer func() {
				if cerr := f.Close(); err == nil {
					err = cerr
				}
			}()
			if err := inspector.EncodePNG(f, img); err != nil {
				return err
			}
			a.logger.Info("rendered", slog.String("output", output), slog.String("size", img.Bounds().Size().String()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG path, or - for stdout")
	cmd.Flags().Float64Var(&a.flags.Scale, "scale", 0, "Scale factor (default: render.scale or 1)")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "Omit class labels")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
