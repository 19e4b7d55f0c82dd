// Package main provides the CLI entry point for smithy.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/containerd/errdefs"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/ndisidore/smithy/internal/browse"
	"github.com/ndisidore/smithy/internal/config"
	"github.com/ndisidore/smithy/internal/console"
	"github.com/ndisidore/smithy/internal/discover"
	"github.com/ndisidore/smithy/internal/report"
	"github.com/ndisidore/smithy/pkg/blueprint"
	"github.com/ndisidore/smithy/pkg/decode"
	"github.com/ndisidore/smithy/pkg/document"
	"github.com/ndisidore/smithy/pkg/slogctx"
)

// errNotTerminal indicates an interactive command was run without a TTY.
var errNotTerminal = errors.New("browse needs an interactive terminal")

// _exitNotFound is the exit status for errors classified as not found.
const _exitNotFound = 2

// app bundles dependencies so CLI action handlers become testable methods.
type app struct {
	browse   func(ctx context.Context, lib *blueprint.Library, boring bool) error
	discover func(ctx context.Context, paths []string) ([]string, error)
	stdout   io.Writer
	stderr   io.Writer
	isTTY    bool
	cfg      config.Config
}

func main() {
	isTTY := term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("CI") == ""
	a := &app{
		browse:   runBrowser,
		discover: discover.Files,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		isTTY:    isTTY,
	}

	if err := a.command().Run(context.Background(), os.Args); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errdefs.IsNotFound(err):
		return _exitNotFound
	default:
		return 1
	}
}

func runBrowser(ctx context.Context, lib *blueprint.Library, boring bool) error {
	b := &browse.Browser{Boring: boring}
	return b.Run(ctx, lib)
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "smithy",
		Usage: "resolve and inspect KDL blueprint libraries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "project config file (.yaml, .toml or .json)",
				Sources: cli.EnvVars("SMITHY_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "format",
				Usage:   "log format (auto, pretty, json, text)",
				Sources: cli.EnvVars("SMITHY_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("SMITHY_LOG_LEVEL"),
			},
			&cli.IntFlag{
				Name:    "max-depth",
				Usage:   "maximum node nesting depth when decoding",
				Sources: cli.EnvVars("SMITHY_MAX_DEPTH"),
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "resolve every blueprint and report failures",
				ArgsUsage: "[paths...]",
				Action:    a.validateAction,
			},
			{
				Name:      "resolve",
				Usage:     "print a resolved blueprint as KDL",
				ArgsUsage: "<name> [paths...]",
				Action:    a.resolveAction,
			},
			{
				Name:      "dump",
				Usage:     "print the components of a resolved blueprint as JSON",
				ArgsUsage: "<name> [paths...]",
				Action:    a.dumpAction,
			},
			{
				Name:      "browse",
				Usage:     "browse a blueprint library interactively",
				ArgsUsage: "[paths...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "boring",
						Usage: "use ASCII instead of emoji in TUI output",
					},
				},
				Action: a.browseAction,
			},
		},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if err != nil {
				_, _ = fmt.Fprintf(a.stderr, "error: %v\n", err)
			}
		},
	}
}

// before resolves the configuration and installs the logger.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	overrides := make(map[string]any)
	if cmd.IsSet("format") {
		overrides[config.KeyFormat] = cmd.String("format")
	}
	if cmd.IsSet("log-level") {
		overrides[config.KeyLogLevel] = cmd.String("log-level")
	}
	if cmd.IsSet("max-depth") {
		overrides[config.KeyDecodeMaxDepth] = int(cmd.Int("max-depth"))
	}

	cfg, err := config.Load(cmd.String("config"), overrides)
	if err != nil {
		return ctx, fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	format, err := console.ResolveFormat(cfg.Format, a.isTTY)
	if err != nil {
		return ctx, err
	}
	level, err := console.ParseLevel(cfg.LogLevel)
	if err != nil {
		return ctx, fmt.Errorf("invalid log level: %w", err)
	}
	logger, err := console.NewLogger(a.stderr, format, level)
	if err != nil {
		return ctx, fmt.Errorf("initializing logger: %w", err)
	}
	slog.SetDefault(logger)
	return slogctx.ContextWithLogger(ctx, logger), nil
}

// loadLibrary loads the blueprint files found under paths, or under the
// configured paths when none are given.
func (a *app) loadLibrary(ctx context.Context, paths []string) (*blueprint.Library, error) {
	if len(paths) == 0 {
		paths = a.cfg.Paths
	}
	files, err := a.discover(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("finding blueprints: %w", err)
	}
	lib := blueprint.NewLibrary()
	if err := lib.LoadFiles(ctx, files); err != nil {
		return nil, fmt.Errorf("loading blueprints: %w", err)
	}
	slogctx.FromContext(ctx).DebugContext(ctx, "library loaded", "files", len(files), "blueprints", lib.Len())
	return lib, nil
}

// lookup loads the library and resolves the blueprint named by the first
// argument.
func (a *app) lookup(ctx context.Context, cmd *cli.Command) (blueprint.Blueprint, error) {
	name := cmd.Args().First()
	if name == "" {
		return blueprint.Blueprint{}, fmt.Errorf("usage: smithy %s <name> [paths...]", cmd.Name)
	}
	lib, err := a.loadLibrary(ctx, cmd.Args().Tail())
	if err != nil {
		return blueprint.Blueprint{}, err
	}
	bp, err := lib.Lookup(name)
	if err != nil {
		return blueprint.Blueprint{}, fmt.Errorf("resolving %s: %w", name, err)
	}
	return bp, nil
}

func (a *app) validateAction(ctx context.Context, cmd *cli.Command) error {
	lib, err := a.loadLibrary(ctx, cmd.Args().Slice())
	if err != nil {
		return err
	}
	r := report.Summarize(lib)
	report.PrintReport(a.stdout, r)
	if err := r.Err(); err != nil {
		return fmt.Errorf("%d of %d blueprints failed: %w", r.Failed(), len(r.Entries), err)
	}
	return nil
}

func (a *app) resolveAction(ctx context.Context, cmd *cli.Command) error {
	bp, err := a.lookup(ctx, cmd)
	if err != nil {
		return err
	}
	dgst, err := bp.Digest()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "// %s %s\n", bp.Name, dgst)
	if err := document.Format(a.stdout, bp.Components); err != nil {
		return fmt.Errorf("writing %s: %w", bp.Name, err)
	}
	return nil
}

func (a *app) dumpAction(ctx context.Context, cmd *cli.Command) error {
	bp, err := a.lookup(ctx, cmd)
	if err != nil {
		return err
	}
	dec := a.cfg.Decoder()
	out := make(decode.Map, 0, len(bp.Components))
	for _, n := range bp.Components {
		var v any
		if err := dec.Node(n, &v); err != nil {
			return fmt.Errorf("decoding %s component %q: %w", bp.Name, n.Name, err)
		}
		out = append(out, decode.MapEntry{Key: n.Name, Value: v})
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", bp.Name, err)
	}
	_, _ = fmt.Fprintf(a.stdout, "%s\n", b)
	return nil
}

func (a *app) browseAction(ctx context.Context, cmd *cli.Command) error {
	if !a.isTTY {
		return errNotTerminal
	}
	lib, err := a.loadLibrary(ctx, cmd.Args().Slice())
	if err != nil {
		return err
	}
	return a.browse(ctx, lib, cmd.Bool("boring"))
}
