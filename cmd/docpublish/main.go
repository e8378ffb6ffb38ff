package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/olekukonko/tablewriter"
	prom "github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/doclet"
	"git.home.luguber.info/inful/docpublish/internal/linkverify"
	"git.home.luguber.info/inful/docpublish/internal/metrics"
	"git.home.luguber.info/inful/docpublish/internal/preview"
	"git.home.luguber.info/inful/docpublish/internal/publish"
	"git.home.luguber.info/inful/docpublish/internal/tutorial"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docpublish.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Publish struct {
		Doclets   string `arg:"" help:"Path to the doclet JSON file"`
		Tutorials string `short:"u" help:"Directory of tutorial files"`
		Output      string `short:"o" help:"Output directory (overrides configuration)"`
		Incremental bool   `short:"i" help:"Skip rewriting pages unchanged since the last run"`
		StateDB     string `help:"SQLite state database path" default:".docpublish-state.db"`
		Summary   bool   `short:"s" help:"Print a per-stage summary table after the run"`
		Verify    bool   `help:"Verify internal links and anchors in the generated site"`
	} `cmd:"" help:"Generate the documentation site from a doclet file"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Preview struct {
		Doclets   string `arg:"" help:"Path to the doclet JSON file"`
		Tutorials string `short:"u" help:"Directory of tutorial files"`
		Addr      string `short:"a" help:"Listen address" default:":8080"`
	} `cmd:"" help:"Serve the generated site locally and republish on changes"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "publish <doclets>":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Publish.Output != "" {
			cfg.Destination = CLI.Publish.Output
		}
		setupLogging(cfg)
		if err := runPublish(cfg); err != nil {
			slog.Error("Publish failed", "error", err)
			os.Exit(1)
		}
	case "init":
		setupLogging(nil)
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration created", "path", CLI.Config)
	case "preview <doclets>":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		setupLogging(cfg)
		if err := runPreview(cfg); err != nil {
			slog.Error("Preview failed", "error", err)
			os.Exit(1)
		}
	}
}

// loadConfig falls back to defaults when no configuration file exists, so a
// bare `docpublish publish doclets.json` works out of the box.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(CLI.Config); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(CLI.Config)
}

// setupLogging installs the process-wide logger, rotating through the
// configured log file when one is set.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	if cfg != nil && cfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

func runPublish(cfg *config.Config) error {
	ds, tree, err := loadInputs(CLI.Publish.Doclets, CLI.Publish.Tutorials)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stateDB := ""
	if CLI.Publish.Incremental {
		stateDB = CLI.Publish.StateDB
	}
	report, err := publish.Run(ctx, publish.Params{
		Config:    cfg,
		Doclets:   ds,
		Tutorials: tree,
		StateDB:   stateDB,
	})
	if err != nil {
		return err
	}

	if CLI.Publish.Summary {
		printSummary(report)
	}
	if CLI.Publish.Verify {
		verifySite(cfg.Destination)
	}
	return nil
}

func runPreview(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	rebuild := func(ctx context.Context) error {
		ds, tree, err := loadInputs(CLI.Preview.Doclets, CLI.Preview.Tutorials)
		if err != nil {
			return err
		}
		_, err = publish.Run(ctx, publish.Params{
			Config:    cfg,
			Doclets:   ds,
			Tutorials: tree,
			Recorder:  recorder,
		})
		return err
	}

	watch := []string{CLI.Preview.Doclets}
	if CLI.Preview.Tutorials != "" {
		watch = append(watch, CLI.Preview.Tutorials)
	}

	return preview.Serve(ctx, preview.Options{
		Addr:       CLI.Preview.Addr,
		SiteDir:    cfg.Destination,
		WatchPaths: watch,
		Rebuild:    rebuild,
		Registry:   registry,
	})
}

// loadInputs reads the doclet file and, when given, the tutorial tree.
func loadInputs(docletPath, tutorialDir string) ([]*doclet.Doclet, *tutorial.Node, error) {
	ds, err := doclet.Load(docletPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load doclets: %w", err)
	}
	var tree *tutorial.Node
	if tutorialDir != "" {
		tree, err = tutorial.Load(tutorialDir)
		if err != nil {
			return nil, nil, fmt.Errorf("load tutorials: %w", err)
		}
	}
	return ds, tree, nil
}

// printSummary renders the run report as tables on stdout.
func printSummary(r *publish.Report) {
	counts := tablewriter.NewWriter(os.Stdout)
	counts.SetHeader([]string{"Doclets", "Pages", "Sources", "Tutorials", "Static", "Skipped", "Outcome"})
	counts.SetBorder(false)
	counts.Append([]string{
		fmt.Sprintf("%d", r.Doclets),
		fmt.Sprintf("%d", r.Pages),
		fmt.Sprintf("%d", r.SourcePages),
		fmt.Sprintf("%d", r.TutorialPages),
		fmt.Sprintf("%d", r.StaticFiles),
		fmt.Sprintf("%d", r.SkippedWrites),
		string(r.Outcome),
	})
	counts.Render()

	stages := tablewriter.NewWriter(os.Stdout)
	stages.SetHeader([]string{"Stage", "Duration"})
	stages.SetBorder(false)
	stages.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, name := range r.Stages {
		stages.Append([]string{name, r.StageDurations[name].String()})
	}
	stages.SetFooter([]string{"Total", r.Duration().String()})
	stages.Render()

	for _, w := range r.Warnings {
		fmt.Fprintf(os.Stdout, "warning: %s\n", w)
	}
}

// verifySite checks every internal link and fragment in the generated tree.
// Issues are reported as warnings; they never change the run's exit status.
func verifySite(outDir string) {
	issues, err := linkverify.Verify(outDir)
	if err != nil {
		slog.Warn("Link verification could not run", "error", err)
		return
	}
	if len(issues) == 0 {
		slog.Info("Link verification passed", "dir", outDir)
		return
	}
	for _, issue := range issues {
		slog.Warn("Broken internal link", "issue", issue.String())
	}
	slog.Warn("Link verification found issues", "count", len(issues))
}
