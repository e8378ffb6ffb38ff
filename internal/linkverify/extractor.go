// Package linkverify checks a generated site for broken internal links and
// missing fragment anchors.
package linkverify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/util/sets"
)

// Link is a reference extracted from a generated HTML page.
type Link struct {
	URL        string // raw attribute value
	Tag        string // a, img, script, link
	Attribute  string // href or src
	IsInternal bool
}

// Page holds everything extracted from one HTML file: outgoing links and the
// anchor ids the page defines.
type Page struct {
	Links []Link
	IDs   sets.Set[string]
}

// ExtractPage parses one HTML file.
func ExtractPage(htmlPath string) (*Page, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "open HTML file").WithContext("path", htmlPath)
	}
	defer file.Close()

	return ExtractPageFromReader(file)
}

// ExtractPageFromReader parses HTML from r.
func ExtractPageFromReader(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInput, "parse HTML")
	}

	page := &Page{IDs: sets.New[string]()}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := getAttr(n, "id"); id != "" {
				page.IDs.Add(id)
			}
			if n.Data == "a" {
				if name := getAttr(n, "name"); name != "" {
					page.IDs.Add(name)
				}
			}
			extractElementLinks(n, &page.Links)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return page, nil
}

func extractElementLinks(n *html.Node, links *[]Link) {
	switch n.Data {
	case "a", "link":
		if href := getAttr(n, "href"); href != "" {
			*links = append(*links, Link{
				URL:        href,
				Tag:        n.Data,
				Attribute:  "href",
				IsInternal: isInternalLink(href),
			})
		}
	case "img", "script":
		if src := getAttr(n, "src"); src != "" {
			*links = append(*links, Link{
				URL:        src,
				Tag:        n.Data,
				Attribute:  "src",
				IsInternal: isInternalLink(src),
			})
		}
	}
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// isInternalLink reports whether a URL points inside the generated site.
func isInternalLink(linkURL string) bool {
	if strings.HasPrefix(linkURL, "#") {
		return true
	}
	if strings.HasPrefix(linkURL, "mailto:") ||
		strings.HasPrefix(linkURL, "tel:") ||
		strings.HasPrefix(linkURL, "javascript:") ||
		strings.HasPrefix(linkURL, "data:") {
		return false
	}
	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
