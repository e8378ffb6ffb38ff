package publish

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/docpublish/internal/doclet"
	perrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/metrics"
	"git.home.luguber.info/inful/docpublish/internal/nav"
	"git.home.luguber.info/inful/docpublish/internal/observability"
	"git.home.luguber.info/inful/docpublish/internal/render"
	"git.home.luguber.info/inful/docpublish/internal/tutorial"
)

// stageBuildNavigation partitions the store into member groups and renders
// the sidebar fragment once; every later page render embeds it.
func stageBuildNavigation(ctx context.Context, rs *runState) error {
	rs.groups = rs.store.Groups()

	menu := make([]nav.MenuItem, 0, len(rs.cfg.Menu))
	for _, m := range rs.cfg.Menu {
		menu = append(menu, nav.MenuItem{Title: m.Title, Link: m.Link, Target: m.Target})
	}
	opts := nav.Options{
		UseLongname:   rs.cfg.UseLongnameInNav.Enabled,
		Truncate:      rs.cfg.UseLongnameInNav.Truncate,
		ShowInherited: rs.cfg.ShowInherited(),
		ShowTypedefs:  rs.cfg.ShowTypedefsInNav,
	}
	fragment := nav.NewBuilder(rs.store, rs.links, opts).Build(rs.groups, rs.tutorials, menu)
	rs.site.Nav = template.HTML(fragment)
	return nil
}

// stageGenerateSources emits one listing page per distinct source file,
// before any other content page so symbol pages can link into them. A failed
// read of one source file is logged and that listing skipped; the run
// continues.
func stageGenerateSources(ctx context.Context, rs *runState) error {
	if !rs.cfg.SourceFiles() {
		return nil
	}
	for _, resolved := range rs.sourceOrder {
		short := rs.sources[resolved]
		filename := rs.links.ReserveFilename(short)
		rs.links.Register(short, filename)

		code, err := rs.engine.ReadSource(resolved)
		if err != nil {
			observability.WarnContext(ctx, "skipping source listing",
				slog.String("file", resolved), slog.Any("error", err))
			rs.report.addWarning(fmt.Sprintf("source listing %s skipped: %v", short, err))
			continue
		}
		written, err := rs.engine.GenerateSource(short, code, filename)
		if err != nil {
			return err
		}
		rs.countPage(written, metrics.PageSource)
	}
	return nil
}

// stageGenerateGlobals renders the globals page when any global-scope doclets
// exist.
func stageGenerateGlobals(ctx context.Context, rs *runState) error {
	if len(rs.groups.Globals) == 0 {
		return nil
	}
	written, err := rs.engine.GenerateGlobals(rs.groups.Globals, "global.html")
	if err != nil {
		return err
	}
	rs.countPage(written, metrics.PageGlobal)
	return nil
}

// stageGenerateIndex renders the main page from package metadata, the
// optional readme, and the physical source file list.
func stageGenerateIndex(ctx context.Context, rs *runState) error {
	var readme template.HTML
	if rs.cfg.Readme != "" {
		data, err := os.ReadFile(rs.cfg.Readme)
		if err != nil {
			return perrors.WrapError(err, perrors.CategoryConfig, "read readme").WithContext("path", rs.cfg.Readme)
		}
		var buf bytes.Buffer
		if err := goldmark.New().Convert(data, &buf); err != nil {
			return perrors.WrapError(err, perrors.CategoryInput, "render readme")
		}
		readme = template.HTML(buf.String())
	}

	title := rs.cfg.MainPageTitle
	if title == "" {
		title = "Home"
	}
	written, err := rs.engine.GenerateMainPage(title,
		rs.store.ByKind(doclet.KindPackage), readme, rs.store.ByKind(doclet.KindFile), "index.html")
	if err != nil {
		return err
	}
	rs.countPage(written, metrics.PageIndex)
	return nil
}

// kindTitles maps container kinds to their page title prefix.
var kindTitles = map[doclet.Kind]string{
	doclet.KindModule:    "Module",
	doclet.KindClass:     "Class",
	doclet.KindNamespace: "Namespace",
	doclet.KindMixin:     "Mixin",
	doclet.KindExternal:  "External",
	doclet.KindInterface: "Interface",
}

// stageGenerateSymbolPages renders one page per registered container
// longname. A longname matching more than one container kind would write two
// pages into the same URL slot; that is reported as an input error instead of
// silently overwriting.
func stageGenerateSymbolPages(ctx context.Context, rs *runState) error {
	for _, longname := range rs.store.Longnames() {
		var matched doclet.Kind
		var docs []*doclet.Doclet
		kinds := 0
		for _, k := range doclet.ContainerKinds {
			if ms := rs.store.ByKindAndLongname(k, longname); len(ms) > 0 {
				kinds++
				matched = k
				docs = ms
			}
		}
		if kinds == 0 {
			continue
		}
		if kinds > 1 {
			return perrors.InputError("longname matches multiple container kinds").
				WithContext("longname", longname)
		}

		filename := rs.links.FileFor(longname)
		if filename == "" {
			continue
		}
		pageCtx := observability.WithPage(ctx, filename)
		title := kindTitles[matched] + ": " + displayName(docs[0])
		written, err := rs.engine.Generate(title, string(matched), docs, filename, true)
		if err != nil {
			return err
		}
		observability.DebugContext(pageCtx, "generated symbol page")
		rs.countPage(written, metrics.PageSymbol)
	}
	return nil
}

// displayName is the page-title name for a container doclet. Externals drop
// the quotes their names carry.
func displayName(d *doclet.Doclet) string {
	if d.Kind == doclet.KindExternal {
		return strings.ReplaceAll(d.Name, `"`, "")
	}
	return d.Name
}

// stageGenerateTutorials renders one page per tutorial node, depth-first with
// each parent before its children.
func stageGenerateTutorials(ctx context.Context, rs *runState) error {
	if rs.tutorials == nil {
		return nil
	}
	return rs.tutorials.Walk(func(n *tutorial.Node) error {
		body, err := n.Parse()
		if err != nil {
			return err
		}
		url, ok := rs.links.TutorialURL(n.Name)
		if !ok {
			url = rs.links.RegisterTutorial(n.Name)
		}
		children := make([]render.TutorialChild, 0, len(n.Children))
		for _, c := range n.Children {
			cu, _ := rs.links.TutorialURL(c.Name)
			children = append(children, render.TutorialChild{Title: c.Title, URL: cu})
		}
		written, err := rs.engine.GenerateTutorial("Tutorial: "+n.Title, n.Title,
			template.HTML(body), children, url)
		if err != nil {
			return err
		}
		rs.countPage(written, metrics.PageTutorial)
		return nil
	})
}
