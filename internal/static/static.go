// Package static copies the template's bundled assets and any user-configured
// extra files into the output tree.
package static

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"git.home.luguber.info/inful/docpublish/internal/render"
)

//go:embed assets
var builtinAssets embed.FS

// CopyDefaults writes the embedded template assets (stylesheets and scripts)
// below the output root, preserving their relative layout. It returns the
// number of files handed to the writer.
func CopyDefaults(w render.FileWriter) (int, error) {
	count := 0
	err := fs.WalkDir(builtinAssets, "assets", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := builtinAssets.ReadFile(path)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(path, "assets/")
		if _, err := w.WriteFile(rel, data); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("copy default assets: %w", err)
	}
	return count, nil
}

// CopyUserFiles copies each configured path into the output root. Directories
// are walked recursively and keep their internal structure; single files land
// at the root under their base name. exclude holds gitignore-style patterns
// matched against the path relative to its configured root.
func CopyUserFiles(w render.FileWriter, roots []string, exclude []string) (int, error) {
	var matcher *ignore.GitIgnore
	if len(exclude) > 0 {
		matcher = ignore.CompileIgnoreLines(exclude...)
	}

	count := 0
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return count, fmt.Errorf("static path %s: %w", root, err)
		}

		if !info.IsDir() {
			name := filepath.Base(root)
			if matcher != nil && matcher.MatchesPath(name) {
				continue
			}
			data, err := os.ReadFile(root)
			if err != nil {
				return count, fmt.Errorf("read static file %s: %w", root, err)
			}
			if _, err := w.WriteFile(name, data); err != nil {
				return count, err
			}
			count++
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if rel != "." && matcher != nil && matcher.MatchesPath(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if matcher != nil && matcher.MatchesPath(rel) {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if _, err := w.WriteFile(rel, data); err != nil {
				return err
			}
			count++
			slog.Debug("copied static file", slog.String("source", path), slog.String("destination", rel))
			return nil
		})
		if err != nil {
			return count, fmt.Errorf("copy static path %s: %w", root, err)
		}
	}
	return count, nil
}
