// Package publish orchestrates a documentation publish run: prune and sort
// the doclet collection, assign output URLs, format signatures, build the
// navigation sidebar once, and generate every output page in a fixed stage
// order. Later stages depend on state established by earlier ones, so the
// sequence is a contract.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/doclet"
	"git.home.luguber.info/inful/docpublish/internal/linkmap"
	"git.home.luguber.info/inful/docpublish/internal/metrics"
	"git.home.luguber.info/inful/docpublish/internal/observability"
	"git.home.luguber.info/inful/docpublish/internal/render"
	"git.home.luguber.info/inful/docpublish/internal/state"
	"git.home.luguber.info/inful/docpublish/internal/static"
	"git.home.luguber.info/inful/docpublish/internal/tutorial"
	"git.home.luguber.info/inful/docpublish/internal/version"
)

// Params carries everything a publish run needs.
type Params struct {
	Config    *config.Config
	Doclets   []*doclet.Doclet
	Tutorials *tutorial.Node // may be nil

	// Recorder receives run metrics; nil means no metrics.
	Recorder metrics.Recorder
	// StateDB enables incremental output when set: unchanged files are not
	// rewritten across runs keyed by this SQLite database path.
	StateDB string
	// RunID identifies the run in logs and the report; generated when empty.
	RunID string
}

// runState carries mutable state across stages. There is exactly one writer
// of this state (the stage sequence); no locking is required.
type runState struct {
	cfg      *config.Config
	recorder metrics.Recorder
	report   *Report

	doclets   []*doclet.Doclet
	store     *doclet.Store
	links     *linkmap.Registry
	tutorials *tutorial.Node

	sources     map[string]string // resolved source path -> short display path
	sourceOrder []string          // resolved paths, sorted

	stateDB    string
	outDir     string
	writer     render.FileWriter
	incWriter  *state.IncrementalWriter
	stateStore *state.Store
	site       *render.SiteData
	engine     *render.Engine
	groups     *doclet.Groups
}

// Run executes a full publish. The returned report is non-nil even on
// failure; it is persisted into the output directory when one was resolved.
func Run(ctx context.Context, p Params) (*Report, error) {
	if p.Recorder == nil {
		p.Recorder = metrics.NoopRecorder{}
	}
	runID := p.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = observability.WithRunID(ctx, runID)

	rs := &runState{
		cfg:       p.Config,
		recorder:  p.Recorder,
		report:    newReport(runID),
		doclets:   p.Doclets,
		links:     linkmap.NewRegistry(),
		tutorials: p.Tutorials,
		sources:   make(map[string]string),
		stateDB:   p.StateDB,
		site: &render.SiteData{
			Title:       p.Config.MainPageTitle,
			PrismTheme:  p.Config.PrismTheme,
			Version:     version.Version,
			GeneratedAt: time.Now().Format("January 2, 2006"),
			Repository:  p.Config.Repository.Link,
		},
	}

	observability.InfoContext(ctx, "publish started",
		slog.Int("doclets", len(p.Doclets)),
		slog.String("destination", p.Config.Destination))

	err := runStages(ctx, rs, []namedStage{
		{"reserve_filenames", stageReserveFilenames},
		{"prune_sort", stagePruneSort},
		{"normalize_examples", stageNormalizeExamples},
		{"shorten_paths", stageShortenPaths},
		{"resolve_output", stageResolveOutput},
		{"copy_static", stageCopyStatic},
		{"register_links", stageRegisterLinks},
		{"format_doclets", stageFormatDoclets},
		{"build_navigation", stageBuildNavigation},
		{"attach_module_symbols", stageAttachModuleSymbols},
		{"generate_sources", stageGenerateSources},
		{"generate_globals", stageGenerateGlobals},
		{"generate_index", stageGenerateIndex},
		{"generate_symbol_pages", stageGenerateSymbolPages},
		{"generate_tutorials", stageGenerateTutorials},
	})

	rs.report.Doclets = len(rs.doclets)
	if rs.incWriter != nil {
		rs.report.SkippedWrites = rs.incWriter.Skipped
		rs.recorder.IncSkippedWrites(rs.incWriter.Skipped)
	}
	if rs.stateStore != nil {
		if cerr := rs.stateStore.Close(); cerr != nil {
			observability.WarnContext(ctx, "closing state store", slog.Any("error", cerr))
		}
	}

	rs.report.finish()
	rs.recorder.ObservePublishDuration(rs.report.Duration())
	rs.recorder.IncPublishOutcome(string(rs.report.Outcome))

	if rs.outDir != "" {
		if perr := rs.report.Persist(rs.outDir); perr != nil {
			observability.WarnContext(ctx, "persisting publish report", slog.Any("error", perr))
		}
	}

	observability.InfoContext(ctx, "publish finished", slog.String("summary", rs.report.Summary()))
	return rs.report, err
}

// stageReserveFilenames claims the two fixed page names before any symbol can
// collide with them, and binds the globals page URL for navigation links.
func stageReserveFilenames(ctx context.Context, rs *runState) error {
	rs.links.ReserveFilename("index")
	rs.links.ReserveFilename("global")
	rs.links.Register("index", "index.html")
	rs.links.Register("global", "global.html")
	return nil
}

// stagePruneSort applies visibility rules, sorts the survivors, and builds
// the indexed store every later stage queries.
func stagePruneSort(ctx context.Context, rs *runState) error {
	before := len(rs.doclets)
	rs.doclets = doclet.Prune(rs.doclets, rs.cfg.Private)
	doclet.Sort(rs.doclets)
	rs.store = doclet.NewStore(rs.doclets)
	observability.DebugContext(ctx, "pruned doclets",
		slog.Int("before", before), slog.Int("after", len(rs.doclets)))
	return nil
}

// stageShortenPaths collects every distinct source file path, computes the
// longest common directory prefix, and derives each file's display path.
func stageShortenPaths(ctx context.Context, rs *runState) error {
	seen := make(map[string]bool)
	for _, d := range rs.doclets {
		if p := d.Meta.Resolved(); p != "" && !seen[p] {
			seen[p] = true
			rs.sourceOrder = append(rs.sourceOrder, p)
		}
	}
	sort.Strings(rs.sourceOrder)

	prefix := CommonPrefix(rs.sourceOrder)
	for _, p := range rs.sourceOrder {
		rs.sources[p] = Shorten(p, prefix)
	}
	return nil
}

// stageResolveOutput determines the final output directory (nested under
// <name>/<version> when a package doclet exists), then constructs the file
// writer and the template engine bound to it.
func stageResolveOutput(ctx context.Context, rs *runState) error {
	outDir := rs.cfg.Destination
	if pkgs := rs.store.ByKind(doclet.KindPackage); len(pkgs) > 0 && pkgs[0].Name != "" {
		outDir = filepath.Join(outDir, pkgs[0].Name, pkgs[0].Version)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	rs.outDir = outDir
	rs.writer = &render.DiskWriter{Root: outDir}

	if rs.stateDB != "" {
		store, err := state.NewStore(rs.stateDB)
		if err != nil {
			return err
		}
		rs.stateStore = store
		rs.incWriter = state.NewIncrementalWriter(rs.writer, store)
	}
	if err := rs.newEngine(); err != nil {
		return err
	}

	observability.InfoContext(ctx, "output directory resolved", slog.String("dir", outDir))
	return nil
}

// stageCopyStatic copies the template's bundled assets first, then any
// user-configured extra paths, preserving relative structure.
func stageCopyStatic(ctx context.Context, rs *runState) error {
	n, err := static.CopyDefaults(rs.outWriter())
	if err != nil {
		return err
	}
	roots := append(append([]string{}, rs.cfg.StaticFiles.Include...), rs.cfg.StaticFiles.Paths...)
	m, err := static.CopyUserFiles(rs.outWriter(), roots, rs.cfg.StaticFiles.Exclude)
	if err != nil {
		return err
	}
	rs.report.StaticFiles = n + m
	return nil
}

// stageRegisterLinks assigns every doclet its permanent output URL, attaches
// short source paths, and claims tutorial page URLs.
func stageRegisterLinks(ctx context.Context, rs *runState) error {
	for _, d := range rs.doclets {
		rs.links.RegisterDoclet(d)
		if p := d.Meta.Resolved(); p != "" {
			d.Meta.Shortpath = rs.sources[p]
		}
	}
	if rs.tutorials != nil {
		_ = rs.tutorials.Walk(func(n *tutorial.Node) error {
			rs.links.RegisterTutorial(n.Name)
			return nil
		})
	}
	return nil
}

// outWriter is the writer every output file goes through; with incremental
// mode enabled it skips unchanged content.
func (rs *runState) outWriter() render.FileWriter {
	if rs.incWriter != nil {
		return rs.incWriter
	}
	return rs.writer
}

// newEngine builds the render engine once the writer exists.
func (rs *runState) newEngine() error {
	eng, err := render.NewEngine(rs.store, rs.links, rs.outWriter(), rs.cfg.LayoutFile, rs.cfg.Encoding, rs.site)
	if err != nil {
		return err
	}
	rs.engine = eng
	return nil
}

// countPage records one generated page in the report and metrics, honoring
// skipped incremental writes.
func (rs *runState) countPage(written bool, kind metrics.PageKind) {
	if !written {
		return
	}
	rs.recorder.IncPagesGenerated(kind)
	switch kind {
	case metrics.PageSource:
		rs.report.SourcePages++
	case metrics.PageTutorial:
		rs.report.TutorialPages++
	default:
		rs.report.Pages++
	}
}
