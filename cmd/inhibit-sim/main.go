package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/santhosh11wnl/Sai/internal/config"
	"github.com/santhosh11wnl/Sai/internal/pipeline"
	"github.com/santhosh11wnl/Sai/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Globals are the flags shared by every command. Zero values keep the
// configured setting.
type Globals struct {
	Config string `short:"c" type:"path" help:"YAML configuration file"`

	ImageDir            string `type:"path" help:"Directory of source diagrams"`
	AnnotationDir       string `type:"path" help:"Directory of labelme annotations"`
	OutputImageDir      string `type:"path" help:"Directory receiving simulated diagrams"`
	OutputAnnotationDir string `type:"path" help:"Directory receiving simulated annotations"`
	DebugDir            string `type:"path" help:"Write match overlays to this directory"`

	Engine       string  `short:"e" help:"Vision engine: native or opencv"`
	Seed         int64   `short:"s" help:"Random seed for marker colour and thickness"`
	Workers      int     `short:"w" help:"Number of annotation files processed at once"`
	CeilingRatio float64 `help:"Stop matching once more than this fraction of arrows matched"`

	LogLevel string `short:"l" help:"Log level: debug, info, warn or error"`
	JSONLog  bool   `help:"Log JSON lines instead of console output"`
}

// setup loads the configuration, applies the flags and builds the logger.
func (g *Globals) setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Paths.ImageDir, g.ImageDir)
	override(&cfg.Paths.AnnotationDir, g.AnnotationDir)
	override(&cfg.Paths.OutputImageDir, g.OutputImageDir)
	override(&cfg.Paths.OutputAnnotationDir, g.OutputAnnotationDir)
	override(&cfg.Paths.DebugDir, g.DebugDir)
	override(&cfg.Simulation.Engine, g.Engine)
	override(&cfg.Log.Level, g.LogLevel)
	if g.Seed != 0 {
		cfg.Simulation.Seed = g.Seed
	}
	if g.Workers != 0 {
		cfg.Simulation.Workers = g.Workers
	}
	if g.CeilingRatio != 0 {
		cfg.Simulation.CeilingRatio = g.CeilingRatio
	}
	if g.JSONLog {
		cfg.Log.Human = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// newLogger writes to stderr; stdout carries the MCP protocol when serving.
func newLogger(lc config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var logger zerolog.Logger
	if lc.Human {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger(), nil
}

// RunCmd simulates every annotation of the annotation directory.
type RunCmd struct{}

func (c *RunCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	sim, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &pipeline.Batch{Simulator: sim, AnnotationDir: cfg.Paths.AnnotationDir, Workers: cfg.Simulation.Workers}
	sum, err := b.Run(ctx)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d annotation files failed", sum.Failed, sum.Files)
	}
	return nil
}

// FileCmd simulates the given annotation files.
type FileCmd struct {
	Annotations []string `arg:"" name:"annotation" type:"existingfile" help:"Annotation files to simulate"`
}

func (c *FileCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	sim, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range c.Annotations {
		_, err := sim.ProcessFile(path)
		switch {
		case errors.Is(err, pipeline.ErrSkip):
			logger.Info().Str("annotation", path).Msg("no arrow matched, nothing written")
		case err != nil:
			failed++
			logger.Error().Err(err).Str("annotation", path).Msg("failed to simulate")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d annotation files failed", failed, len(c.Annotations))
	}
	return nil
}

// ServeCmd runs the MCP server over stdio.
type ServeCmd struct{}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	sim, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	logger.Debug().Str("version", Version).Str("commit", GitCommit).Msg("starting MCP server")
	srv := server.New(cfg, sim, logger)
	srv.Version = Version
	return srv.Run()
}

// ConfigCmd writes the effective configuration as YAML.
type ConfigCmd struct {
	Output string `arg:"" optional:"" type:"path" default:"inhibit-sim.yaml" help:"File to write"`
}

func (c *ConfigCmd) Run(g *Globals) error {
	cfg, _, err := g.setup()
	if err != nil {
		return err
	}
	return cfg.SaveToFile(c.Output)
}

// VersionCmd prints build information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("inhibit-sim %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	return nil
}

var cli struct {
	Globals

	Run     RunCmd     `cmd:"" default:"1" help:"Simulate every annotation of the annotation directory"`
	File    FileCmd    `cmd:"" help:"Simulate the given annotation files"`
	Serve   ServeCmd   `cmd:"" help:"Serve the simulator as MCP tools over stdin/stdout"`
	Dump    ConfigCmd  `cmd:"" name:"config" help:"Write the effective configuration to a YAML file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("inhibit-sim"),
		kong.Description("Turns activation arrows of annotated pathway diagrams into inhibition arrows."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
