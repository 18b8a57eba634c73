// Package textview turns a loaded article into plain text for terminal reading.
package textview

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/go-shiori/go-readability"
)

// View is a plain-text rendering of an article.
type View struct {
	Title     string
	Text      string
	Footnotes []string
}

var blankLines = regexp.MustCompile(`\n\s*\n\s*(\n\s*)+`)

// Extract runs readability over the article HTML. Pages too short for
// readability to score fall back to the body text.
func Extract(loaded *models.LoadedArticle, pageURL string) (*View, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	view := &View{Title: loaded.Title()}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(loaded.HTML), parsedURL)
	if err == nil {
		view.Text = article.TextContent
		if view.Title == "" {
			view.Title = article.Title
		}
	}
	if strings.TrimSpace(view.Text) == "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(loaded.HTML))
		if err != nil {
			return nil, &models.ParseError{What: "article html", Err: err}
		}
		view.Text = doc.Find("body").Text()
	}
	view.Text = strings.TrimSpace(blankLines.ReplaceAllString(view.Text, "\n\n"))

	for _, ref := range loaded.Refs {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(ref))
		if err != nil {
			view.Footnotes = append(view.Footnotes, ref)
			continue
		}
		view.Footnotes = append(view.Footnotes, strings.TrimSpace(doc.Text()))
	}
	return view, nil
}

// String lays the view out as title, body and numbered footnotes.
func (v *View) String() string {
	var sb strings.Builder
	if v.Title != "" {
		sb.WriteString(v.Title)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("=", len([]rune(v.Title))))
		sb.WriteString("\n\n")
	}
	sb.WriteString(v.Text)
	sb.WriteString("\n")
	if len(v.Footnotes) > 0 {
		sb.WriteString("\n")
		for i, f := range v.Footnotes {
			fmt.Fprintf(&sb, "[%d] %s\n", i+1, f)
		}
	}
	return sb.String()
}
