package linkverify

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

// Issue is one broken reference found during verification.
type Issue struct {
	Page   string // site-relative path of the page holding the link
	URL    string // the raw link value
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Page, i.URL, i.Reason)
}

// Verify walks the generated site below outDir and reports internal links
// whose target file or fragment anchor does not exist. External links are not
// fetched.
func Verify(outDir string) ([]Issue, error) {
	pages := make(map[string]*Page) // site-relative path -> parsed page
	files := make(map[string]bool)  // every file in the tree, for asset links

	err := filepath.WalkDir(outDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(outDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files[rel] = true
		if strings.HasSuffix(rel, ".html") || strings.HasSuffix(rel, ".htm") {
			page, err := ExtractPage(p)
			if err != nil {
				return err
			}
			pages[rel] = page
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "output directory not found").WithContext("dir", outDir)
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk output directory")
	}

	var issues []Issue
	for rel, page := range pages {
		for _, link := range page.Links {
			if !link.IsInternal {
				continue
			}
			if issue := checkLink(rel, link, pages, files); issue != nil {
				issues = append(issues, *issue)
			}
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Page != issues[j].Page {
			return issues[i].Page < issues[j].Page
		}
		return issues[i].URL < issues[j].URL
	})
	return issues, nil
}

func checkLink(fromPage string, link Link, pages map[string]*Page, files map[string]bool) *Issue {
	u, err := url.Parse(link.URL)
	if err != nil {
		return &Issue{Page: fromPage, URL: link.URL, Reason: "unparseable URL"}
	}

	target := fromPage
	if u.Path != "" {
		// Relative to the linking page's directory.
		target = path.Join(path.Dir(fromPage), u.Path)
		if strings.HasPrefix(target, "..") {
			return &Issue{Page: fromPage, URL: link.URL, Reason: "escapes output directory"}
		}
		if !files[target] {
			return &Issue{Page: fromPage, URL: link.URL, Reason: "target file not found"}
		}
	}

	if u.Fragment != "" {
		targetPage, ok := pages[target]
		if !ok {
			return &Issue{Page: fromPage, URL: link.URL, Reason: "fragment on non-HTML target"}
		}
		if !targetPage.IDs.Has(u.Fragment) {
			return &Issue{Page: fromPage, URL: link.URL, Reason: "fragment anchor not found"}
		}
	}
	return nil
}
