package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-drift/axsnap/cmd/axsnap/internal/config"
	"github.com/go-drift/axsnap/pkg/dump"
	"github.com/go-drift/axsnap/pkg/finder"
	"github.com/go-drift/axsnap/pkg/pathindex"
	"github.com/go-drift/axsnap/pkg/snapshot"
)

type findOptions struct {
	attrs []string
	text  string
	path  string
}

// match is the JSON form of one find or hit result.
type match struct {
	Path    string     `json:"path"`
	Element *dump.Node `json:"element"`
}

func newFindCmd(a *app) *cobra.Command {
	var opts findOptions
	cmd := &cobra.Command{
		Use:   "find FIXTURE",
		Short: "Find elements by attribute, text or path",
		Long: `Find elements in a fixture's snapshot.

Every --attr and --text condition must hold. --path selects one element by
its structural path and cannot be combined with the others.

Examples:
  axsnap find screen.yaml --text OK
  axsnap find screen.yaml --attr clickable=true --attr class=android.widget.Button
  axsnap find screen.yaml --path /android.widget.FrameLayout/android.widget.Button[2]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, idx, err := a.load(args[0])
			if err != nil {
				return err
			}
			found, err := opts.evaluate(root, idx)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				return fmt.Errorf("no elements match %s", opts.describe())
			}
			return a.printMatches(cmd.OutOrStdout(), idx, found)
		},
	}
	cmd.Flags().StringArrayVar(&opts.attrs, "attr", nil, "Attribute condition NAME=VALUE (repeatable)")
	cmd.Flags().StringVar(&opts.text, "text", "", "Exact text")
	cmd.Flags().StringVar(&opts.path, "path", "", "Structural path")
	cmd.Flags().StringVar(&a.flags.Output, "format", "", "Output format: json or tree (default: tree)")
	return cmd
}

func (o *findOptions) evaluate(root *snapshot.Element, idx *pathindex.Index) ([]*snapshot.Element, error) {
	if o.path != "" {
		if len(o.attrs) > 0 || o.text != "" {
			return nil, fmt.Errorf("--path cannot be combined with --attr or --text")
		}
		e, err := idx.Resolve(root, o.path)
		if err != nil {
			return nil, err
		}
		return []*snapshot.Element{e}, nil
	}

	f, err := o.finder()
	if err != nil {
		return nil, err
	}
	return finder.Find(root, f).All(), nil
}

// finder combines the attribute conditions into one Finder.
func (o *findOptions) finder() (finder.Finder, error) {
	type condition struct {
		key   snapshot.Attribute
		value string
	}
	var conds []condition
	for _, raw := range o.attrs {
		name, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --attr %q (want NAME=VALUE)", raw)
		}
		key, err := snapshot.ParseAttribute(name)
		if err != nil {
			return nil, err
		}
		conds = append(conds, condition{key, value})
	}
	if o.text != "" {
		conds = append(conds, condition{snapshot.AttrText, o.text})
	}

	switch len(conds) {
	case 0:
		return nil, fmt.Errorf("one of --attr, --text or --path is required")
	case 1:
		return finder.ByAttribute(conds[0].key, conds[0].value), nil
	}
	return finder.ByPredicate(func(e *snapshot.Element) bool {
		for _, c := range conds {
			if !e.Attributes().Matches(c.key, c.value) {
				return false
			}
		}
		return true
	}), nil
}

func (o *findOptions) describe() string {
	if o.path != "" {
		return "path " + o.path
	}
	parts := append([]string(nil), o.attrs...)
	if o.text != "" {
		parts = append(parts, "text="+o.text)
	}
	return strings.Join(parts, ", ")
}

func (a *app) printMatches(w io.Writer, idx *pathindex.Index, found []*snapshot.Element) error {
	if a.cfg.Output == config.OutputJSON {
		out := make([]match, len(found))
		for i, e := range found {
			node := dump.Capture(e).Root
			node.Children = nil
			out[i] = match{Path: idx.Path(e), Element: node}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	}
	for _, e := range found {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", idx.Path(e), dump.Line(e)); err != nil {
			return err
		}
	}
	return nil
}
