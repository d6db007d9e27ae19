package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/apiforge/internal/archive"
	"git.home.luguber.info/inful/apiforge/internal/config"
	"git.home.luguber.info/inful/apiforge/internal/pipeline"
	"git.home.luguber.info/inful/apiforge/internal/report"
	"git.home.luguber.info/inful/apiforge/internal/runstore"
	"git.home.luguber.info/inful/apiforge/internal/validate"
	"git.home.luguber.info/inful/apiforge/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"apiforge.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct {
		Output string `short:"o" help:"Output directory (overrides config)"`
	} `cmd:"" help:"Run a full generation: load records, merge, render both projections"`

	Validate struct {
		Output string `short:"o" help:"Output directory to validate (overrides config)"`
	} `cmd:"" help:"Re-validate an existing output tree against its run report"`

	Export struct {
		Archive string `short:"a" help:"Archive file to write" default:"apiforge-output.tar.zst"`
	} `cmd:"" help:"Pack the output tree into a reproducible archive"`

	Runs struct {
		Limit int `short:"n" help:"Number of runs to show" default:"10"`
	} `cmd:"" help:"Show recent run history"`

	Init struct{} `cmd:"" help:"Write a default configuration file"`

	Version struct{} `cmd:"" help:"Show version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	config.LoadEnvFile()
	cfg, err := config.Load(CLI.Config)
	if err != nil && ctx.Command() != "init" && ctx.Command() != "version" {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Logging, CLI.Verbose)
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "generate":
		if CLI.Generate.Output != "" {
			cfg.Output.Directory = CLI.Generate.Output
		}
		if err := runGenerate(cfg, logger); err != nil {
			slog.Error("Generate failed", "error", err)
			os.Exit(1)
		}
	case "validate":
		if CLI.Validate.Output != "" {
			cfg.Output.Directory = CLI.Validate.Output
		}
		if err := runValidate(cfg, logger); err != nil {
			slog.Error("Validate failed", "error", err)
			os.Exit(1)
		}
	case "export":
		if err := runExport(cfg, logger); err != nil {
			slog.Error("Export failed", "error", err)
			os.Exit(1)
		}
	case "runs":
		if err := runHistory(cfg, CLI.Runs.Limit); err != nil {
			slog.Error("Run history failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.WriteDefault(CLI.Config); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", CLI.Config)
	case "version":
		fmt.Printf("apiforge %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

func newLogger(lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func runGenerate(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := pipeline.NewState(cfg, logger)
	rep, err := pipeline.Run(ctx, st)
	if err != nil {
		return err
	}
	recordRun(ctx, cfg, logger, rep)
	if rep.HasErrors() {
		return fmt.Errorf("run %s finished with errors, see %s",
			rep.RunID, filepath.Join(cfg.Output.Directory, cfg.Output.ReportFile))
	}
	return nil
}

func recordRun(ctx context.Context, cfg config.Config, logger *slog.Logger, rep *report.Report) {
	if !cfg.RunStore.Enabled {
		return
	}
	store, err := runstore.NewSQLiteStore(cfg.RunStore.Path)
	if err != nil {
		logger.Warn("run store unavailable", "error", err)
		return
	}
	defer func() {
		_ = store.Close()
	}()
	if err := store.Record(ctx, rep); err != nil {
		logger.Warn("run not recorded", "error", err)
	}
}

// runValidate re-checks output written by an earlier generate run, including
// drift between the report's artifact list and the tree on disk.
func runValidate(cfg config.Config, logger *slog.Logger) error {
	reportPath := filepath.Join(cfg.Output.Directory, cfg.Output.ReportFile)
	prev, err := report.Load(reportPath)
	if err != nil {
		return err
	}

	rep := report.New()
	validate.XMLDoc(filepath.Join(cfg.Output.Directory, cfg.Output.XMLDocDir), rep, logger)
	validate.GrepTree(filepath.Join(cfg.Output.Directory, cfg.Output.GrepTreeDir), rep, logger)
	validate.Artifacts(prev.Artifacts, cfg.Output.Directory, rep)
	rep.Finish()
	rep.LogSummary(logger)
	if rep.HasErrors() {
		return fmt.Errorf("validation of run %s failed", prev.RunID)
	}
	return nil
}

func runExport(cfg config.Config, logger *slog.Logger) error {
	if err := archive.Create(cfg.Output.Directory, CLI.Export.Archive); err != nil {
		return err
	}
	logger.Info("output archived",
		"archive", CLI.Export.Archive,
		"source", cfg.Output.Directory)
	return nil
}

func runHistory(cfg config.Config, limit int) error {
	store, err := runstore.NewSQLiteStore(cfg.RunStore.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	runs, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %-25s  types=%d members=%d issues=%d\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.ID, r.Outcome, r.Types, r.Members, r.Issues)
	}
	return nil
}
