package publish

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/doclet"
	"git.home.luguber.info/inful/docpublish/internal/tutorial"
)

// fixtureDoclets builds a small but representative input set: a package, a
// class with one own and one inherited method, and a global function.
func fixtureDoclets(t *testing.T) ([]*doclet.Doclet, string) {
	t.Helper()
	srcDir := t.TempDir()
	libDir := filepath.Join(srcDir, "lib")
	require.NoError(t, os.MkdirAll(libDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "widget.js"),
		[]byte("class Widget {}\n"), 0o644))

	meta := &doclet.Meta{Filename: "widget.js", Path: libDir, LineNo: 1}
	return []*doclet.Doclet{
		{Longname: "package:demo", Name: "demo", Kind: doclet.KindPackage, Version: "1.0.0"},
		{Longname: "Widget", Name: "Widget", Kind: doclet.KindClass,
			Classdesc: "<p>A widget.</p>", Meta: meta},
		{Longname: "Widget#run", Name: "run", Kind: doclet.KindFunction,
			Memberof: "Widget", Scope: "instance", Meta: meta},
		{Longname: "Widget#stop", Name: "stop", Kind: doclet.KindFunction,
			Memberof: "Widget", Scope: "instance", Inherited: true, Meta: meta},
		{Longname: "helper", Name: "helper", Kind: doclet.KindFunction, Scope: "global"},
	}, srcDir
}

func TestRunEndToEnd(t *testing.T) {
	ds, _ := fixtureDoclets(t)
	cfg := config.Default()
	cfg.Destination = t.TempDir()
	hideInherited := false
	cfg.ShowInheritedInNav = &hideInherited

	report, err := Run(context.Background(), Params{Config: cfg, Doclets: ds})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)

	// Output nests under <name>/<version> from the package doclet.
	outDir := filepath.Join(cfg.Destination, "demo", "1.0.0")
	assert.FileExists(t, filepath.Join(outDir, "index.html"))
	assert.FileExists(t, filepath.Join(outDir, "Widget.html"))
	assert.FileExists(t, filepath.Join(outDir, "global.html"))
	assert.FileExists(t, filepath.Join(outDir, "widget.js.html"))
	assert.FileExists(t, filepath.Join(outDir, "styles", "docpublish.css"))
	assert.FileExists(t, filepath.Join(outDir, "publish-report.json"))

	assert.Equal(t, 1, report.SourcePages)
	assert.GreaterOrEqual(t, report.Pages, 3) // index, globals, Widget

	page, err := os.ReadFile(filepath.Join(outDir, "Widget.html"))
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "Class: Widget")
	// Inherited method suppressed in the sidebar but present on the page.
	nav := html[strings.Index(html, `<nav`):strings.Index(html, `</nav>`)]
	assert.Contains(t, nav, ">run</a>")
	assert.NotContains(t, nav, ">stop</a>")
	assert.Contains(t, html, `id="stop"`)
	// Source link points into the listing page.
	assert.Contains(t, html, `widget.js.html#line1`)
}

func TestRunMissingSourceFileWarnsAndContinues(t *testing.T) {
	ds := []*doclet.Doclet{
		{Longname: "Widget", Name: "Widget", Kind: doclet.KindClass,
			Meta: &doclet.Meta{Filename: "gone.js", Path: "/nonexistent", LineNo: 1}},
	}
	cfg := config.Default()
	cfg.Destination = t.TempDir()

	report, err := Run(context.Background(), Params{Config: cfg, Doclets: ds})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.NotEmpty(t, report.Warnings)
	assert.Equal(t, 0, report.SourcePages)
	assert.FileExists(t, filepath.Join(cfg.Destination, "Widget.html"))
}

func TestRunMultiKindLongnameFails(t *testing.T) {
	ds := []*doclet.Doclet{
		{Longname: "thing", Name: "thing", Kind: doclet.KindClass},
		{Longname: "thing", Name: "thing", Kind: doclet.KindNamespace},
	}
	cfg := config.Default()
	cfg.Destination = t.TempDir()

	report, err := Run(context.Background(), Params{Config: cfg, Doclets: ds})
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Contains(t, err.Error(), "multiple container kinds")
}

func TestRunIncrementalSkipsUnchanged(t *testing.T) {
	ds, _ := fixtureDoclets(t)
	cfg := config.Default()
	cfg.Destination = t.TempDir()
	stateDB := filepath.Join(t.TempDir(), "state.db")

	first, err := Run(context.Background(), Params{Config: cfg, Doclets: ds, StateDB: stateDB})
	require.NoError(t, err)
	assert.Equal(t, 0, first.SkippedWrites)

	second, err := Run(context.Background(), Params{Config: cfg, Doclets: ds, StateDB: stateDB})
	require.NoError(t, err)
	assert.Greater(t, second.SkippedWrites, 0)
	assert.Equal(t, OutcomeSuccess, second.Outcome)
}

func TestRunTutorials(t *testing.T) {
	tutDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tutDir, "intro.md"),
		[]byte("# Getting Started\n\nHello.\n"), 0o644))
	tree, err := tutorial.Load(tutDir)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Destination = t.TempDir()

	report, err := Run(context.Background(), Params{Config: cfg, Tutorials: tree})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TutorialPages)
	assert.FileExists(t, filepath.Join(cfg.Destination, "tutorial-intro.html"))

	page, err := os.ReadFile(filepath.Join(cfg.Destination, "tutorial-intro.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Getting Started")
	// The sidebar links the tutorial.
	assert.Contains(t, string(page), `tutorial-intro.html`)
}
