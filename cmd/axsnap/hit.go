package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/go-drift/axsnap/pkg/finder"
	"github.com/go-drift/axsnap/pkg/geometry"
	"github.com/go-drift/axsnap/pkg/snapshot"
)

func newHitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hit FIXTURE X Y",
		Short: "Show the element visible at a screen coordinate",
		Long: `Report the deepest element whose visible bounds contain (X, Y).

Example:
  axsnap hit screen.yaml 540 960`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			root, idx, err := a.load(args[0])
			if err != nil {
				return err
			}
			hit := finder.HitTest(root, p)
			if hit == nil {
				return fmt.Errorf("nothing visible at (%d,%d)", p.X, p.Y)
			}
			return a.printMatches(cmd.OutOrStdout(), idx, []*snapshot.Element{hit})
		},
	}
	cmd.Flags().StringVar(&a.flags.Output, "format", "", "Output format: json or tree (default: tree)")
	return cmd
}

func parsePoint(xs, ys string) (geometry.Point, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid X %q: %w", xs, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid Y %q: %w", ys, err)
	}
	return geometry.Point{X: x, Y: y}, nil
}
