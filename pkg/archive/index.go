package archive

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/fetcher"
	"github.com/dtnitsch/whatif/pkg/legacy"
)

const (
	titleSelector     = "h1"
	thumbnailSelector = "img.archive-image"
)

// Entry is one listing of the archive index, in publish order.
type Entry struct {
	Title     string
	Thumbnail string
}

// IndexURL is the archive listing page for a site root.
func IndexURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/archive/"
}

// ArticleURL is the page of a single article.
func ArticleURL(baseURL string, number int) string {
	return fmt.Sprintf("%s/%d", strings.TrimRight(baseURL, "/"), number)
}

// Thumbnails returns the archive thumbnail elements in document order.
func Thumbnails(doc *goquery.Document) *goquery.Selection {
	return doc.Find(thumbnailSelector)
}

// ParseIndex pairs titles with thumbnails by position. Every title needs a
// thumbnail element; anything else means the page layout changed. An entry
// whose thumbnail source cannot be resolved keeps an empty Thumbnail.
func ParseIndex(doc *goquery.Document, baseURL string) ([]Entry, error) {
	titles := doc.Find(titleSelector)
	thumbs := Thumbnails(doc)

	if thumbs.Length() < titles.Length() {
		return nil, &models.ParseError{
			What: "archive index",
			Err:  fmt.Errorf("%d titles but only %d thumbnails", titles.Length(), thumbs.Length()),
		}
	}

	entries := make([]Entry, titles.Length())
	titles.Each(func(i int, s *goquery.Selection) {
		src, _ := thumbs.Eq(i).Attr("src")
		// an unusable source only costs the thumbnail, never the entry
		thumb, _ := fetcher.ResolveAssetURL(baseURL, src)
		entries[i] = Entry{Title: strings.TrimSpace(s.Text()), Thumbnail: thumb}
	})
	return entries, nil
}

// NewArticles returns the entries past the first known ones as articles
// numbered known+1..len(entries). The archive only ever grows at the end.
func NewArticles(entries []Entry, known int) []models.Article {
	if known < 0 {
		known = 0
	}
	if known >= len(entries) {
		return nil
	}
	articles := make([]models.Article, 0, len(entries)-known)
	for i := known; i < len(entries); i++ {
		articles = append(articles, models.Article{
			Number:    i + 1,
			Title:     entries[i].Title,
			Thumbnail: entries[i].Thumbnail,
		})
	}
	return articles
}

// MigrateLegacy copies legacy read and favorite flags onto articles. It only
// acts on the first run, when the store was empty before the sync.
func MigrateLegacy(articles []models.Article, flags legacy.Flags, firstRun bool) {
	if !firstRun || flags == nil {
		return
	}
	for i := range articles {
		n := articles[i].Number
		articles[i].Read = flags.Read(n)
		articles[i].Favorite = flags.Favorite(n)
	}
}
