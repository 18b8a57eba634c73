// Package transformer rewrites a fetched article page into the form the
// reader renders: themed stylesheet, resolved illustrations, math script,
// no site chrome, and footnotes pulled out into a separate list.
package transformer

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/fetcher"
)

// Click handler tokens understood by the rendering layer.
const (
	ImageClickHandler = "img.performClick(title);"
	refClickFormat    = `ref.performClick("%d")`
)

const (
	MathJaxOnline  = "https://cdn.mathjax.org/mathjax/latest/MathJax.js"
	MathJaxOffline = "MathJax.js"
)

const (
	illustrationSelector = ".illustration"
	chromeSelector       = "#header-wrapper, #footer-wrapper, header, footer, nav, h1"
	refSelector          = ".ref"
	refBodySelector      = ".refbody"
	refNumSelector       = ".refnum"
)

// Options selects how an article is rendered.
type Options struct {
	Offline bool
	// OfflineBase is the directory holding <number>/<index>.png.
	OfflineBase string
	BaseURL     string
	Theme       models.Theme
}

// RefClickHandler is the click token attached to the index-th footnote marker.
func RefClickHandler(index int) string {
	return fmt.Sprintf(refClickFormat, index)
}

// OfflineImageURL is the local file URL of an article's index-th illustration.
func OfflineImageURL(offlineBase string, number, index int) string {
	return "file://" + filepath.ToSlash(filepath.Join(offlineBase, strconv.Itoa(number), strconv.Itoa(index)+".png"))
}

// Transform rewrites raw into a LoadedArticle. The parsed document is owned by
// this call; passes run in a fixed order over it.
func Transform(number int, article models.Article, raw []byte, opts Options) (*models.LoadedArticle, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = models.DefaultBaseURL
	}

	doc, err := fetcher.ParseHtml(fmt.Sprintf("article %d", number), raw)
	if err != nil {
		return nil, err
	}

	stripStylesheets(doc)
	injectStylesheet(doc, opts.Theme.Stylesheet())
	rewriteIllustrations(doc, number, opts)
	rewriteMathScript(doc, opts.Offline)
	stripChrome(doc)
	refs := extractRefs(doc)

	html, err := doc.Html()
	if err != nil {
		return nil, &models.ParseError{What: fmt.Sprintf("article %d", number), Err: err}
	}

	return &models.LoadedArticle{Article: article, HTML: html, Refs: refs}, nil
}

func stripStylesheets(doc *goquery.Document) {
	doc.Find("head link").Remove()
}

func injectStylesheet(doc *goquery.Document, href string) {
	doc.Find("head").AppendHtml(fmt.Sprintf(`<link rel="stylesheet" type="text/css" href="%s"/>`, href))
}

// rewriteIllustrations numbers illustrations from 1 in document order, the
// same numbering the offline copies are stored under.
func rewriteIllustrations(doc *goquery.Document, number int, opts Options) {
	doc.Find(illustrationSelector).Each(func(i int, s *goquery.Selection) {
		index := i + 1
		if opts.Offline {
			s.SetAttr("src", OfflineImageURL(opts.OfflineBase, number, index))
		} else {
			src, _ := s.Attr("src")
			resolved, err := fetcher.ResolveAssetURL(opts.BaseURL, src)
			if err != nil {
				// every illustration still points at the site, even a broken one
				resolved = strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(strings.TrimSpace(src), "/")
			}
			s.SetAttr("src", resolved)
		}
		s.SetAttr("onclick", ImageClickHandler)
	})
}

func rewriteMathScript(doc *goquery.Document, offline bool) {
	script := doc.Find("script[src]").First()
	if script.Length() == 0 {
		return
	}
	if offline {
		script.SetAttr("src", MathJaxOffline)
	} else {
		script.SetAttr("src", MathJaxOnline)
	}
}

func stripChrome(doc *goquery.Document) {
	doc.Find(chromeSelector).Remove()
}

// extractRefs moves each footnote body out of the page. refs[i] is the inner
// markup of the i-th footnote; its marker gets a click token carrying i.
func extractRefs(doc *goquery.Document) []string {
	sel := doc.Find(refSelector)
	refs := make([]string, sel.Length())
	sel.Each(func(i int, ref *goquery.Selection) {
		body := ref.Find(refBodySelector)
		html, _ := body.Html()
		refs[i] = html
		body.Remove()
		ref.Find(refNumSelector).SetAttr("onclick", RefClickHandler(i))
	})
	return refs
}
