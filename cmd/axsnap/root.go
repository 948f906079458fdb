package main

import (
	stderrors "errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/axsnap/cmd/axsnap/internal/config"
	"github.com/go-drift/axsnap/cmd/axsnap/internal/logging"
	"github.com/go-drift/axsnap/pkg/errors"
	"github.com/go-drift/axsnap/pkg/native/fixture"
	"github.com/go-drift/axsnap/pkg/pathindex"
	"github.com/go-drift/axsnap/pkg/snapshot"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	flags  config.Overrides
	cfg    *config.Resolved
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.Discard()}

	root := &cobra.Command{
		Use:   "axsnap",
		Short: "axsnap - accessibility tree snapshots",
		Long: `axsnap builds immutable snapshots of accessibility trees and lets you
inspect them: dump the tree, find elements by attribute or path, hit-test a
screen coordinate, or render the visible bounds to a PNG.

Trees are read from YAML fixture files. Settings come from flags, AXSNAP_*
environment variables (including a .env file), and an optional axsnap.yaml
in the working directory, in that order.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetVersionTemplate("axsnap version {{.Version}} (built " + BuildTime + ")\n")
	root.PersistentFlags().StringVar(&a.flags.LogLevel, "log-level", "",
		"Log level: debug, info, warn or error (default: info)")
	root.PersistentFlags().StringVar(&a.flags.LogFormat, "log-format", "",
		"Log format: text or json (default: text)")

	root.AddCommand(
		newDumpCmd(a),
		newFindCmd(a),
		newHitCmd(a),
		newRenderCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup resolves configuration and installs the logger and error handler.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(dir, a.flags)
	if err != nil {
		return &errors.SnapshotError{Op: "config.Resolve", Kind: errors.KindConfig, Err: err, Timestamp: time.Now()}
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return &errors.SnapshotError{Op: "logging.New", Kind: errors.KindConfig, Err: err, Timestamp: time.Now()}
	}
	a.cfg = cfg
	a.logger = logger
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: cfg.LogLevel <= slog.LevelDebug})
	return nil
}

// load reads a fixture and snapshots it. The returned index is registered
// with the builder's cache.
func (a *app) load(path string) (*snapshot.Element, *pathindex.Index, error) {
	tree, err := fixture.LoadFile(path)
	if err != nil {
		return nil, nil, &errors.SnapshotError{Op: "fixture.Load", Kind: errors.KindFixture, Err: err, Timestamp: time.Now()}
	}
	idx := pathindex.New()
	b := snapshot.NewBuilder(snapshot.WithLogger(a.logger), snapshot.WithResetListener(idx))
	root, err := b.BuildRoot(tree.Root)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Info("snapshot built",
		slog.String("fixture", path),
		slog.String("generation", root.Generation()),
		slog.Int("elements", b.Cache().Len()),
	)
	return root, idx, nil
}

// report sends err through the error handler. Panics were already reported
// where they were recovered.
func report(err error) {
	var perr *errors.PanicError
	if stderrors.As(err, &perr) {
		return
	}
	var serr *errors.SnapshotError
	if !stderrors.As(err, &serr) {
		serr = &errors.SnapshotError{Op: "axsnap", Kind: errors.KindUnknown, Err: err, Timestamp: time.Now()}
	}
	errors.Report(serr)
}
