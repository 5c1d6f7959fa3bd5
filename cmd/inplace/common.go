package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/inplace/internal/config"
	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/app"
	"github.com/vango-dev/inplace/pkg/instrument"
	"github.com/vango-dev/inplace/pkg/live"
	"github.com/vango-dev/inplace/pkg/snapshot"
)

// globals holds the persistent flags.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
}

// load reads the config selected by --config, applies flag overrides and
// validates the result.
func (g *globals) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case g.configPath == "":
		cfg, err = config.LoadFromWorkingDir()
	case isDir(g.configPath):
		cfg, err = config.Load(g.configPath)
	default:
		cfg, err = config.LoadFile(g.configPath)
	}
	if err != nil {
		return nil, err
	}

	if g.logLevel != "" {
		cfg.Runtime.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Runtime.LogFormat = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// logger writes to the command's stderr so stdout stays machine readable.
func logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return cfg.Logger(cmd.ErrOrStderr())
}

func tracer(cfg *config.Config) trace.Tracer {
	if cfg.Serve.Tracing {
		return instrument.Tracer("")
	}
	return instrument.NoopTracer()
}

// initialState returns the app state over the named dataset.
func initialState(dataset string) (map[string]any, error) {
	table, ok := app.Dataset(dataset)
	if !ok {
		return nil, errors.New(errors.CodeInvalidArgument).
			WithDetailf("unknown dataset %q", dataset).
			WithSuggestion("Use one of: " + strings.Join(app.DatasetNames(), ", "))
	}
	return app.State(table), nil
}

// engine mounts the app over dataset without serving it.
func engine(cmd *cobra.Command, cfg *config.Config, dataset string, opts ...live.Option) (*live.Server, error) {
	state, err := initialState(dataset)
	if err != nil {
		return nil, err
	}
	opts = append([]live.Option{
		live.WithLogger(logger(cmd, cfg)),
		live.WithTracer(tracer(cfg)),
		live.WithSlotClass(cfg.Render.PlaceholderClass),
		live.WithStrictSlots(cfg.Runtime.StrictSlots),
	}, opts...)
	return live.New(state, opts...)
}

// markup renders the app root, indented when pretty is set.
func markup(srv *live.Server, cfg *config.Config, pretty bool) (string, error) {
	if !pretty {
		return srv.Markup()
	}
	return srv.MarkupIndent(cfg.Render.Indent)
}

// openStore returns the S3 store when a bucket is configured, the local
// store otherwise.
func openStore(cfg *config.Config) (snapshot.Store, error) {
	s := cfg.Snapshot
	if s.Bucket != "" {
		client := snapshot.NewS3Client(s.Region, s.Endpoint)
		return snapshot.NewS3Store(client, s.Bucket, s.Prefix), nil
	}
	return snapshot.NewFileStore(cfg.SnapshotPath())
}
