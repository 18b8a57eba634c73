// Package article downloads single articles and their illustrations into the
// offline asset cache.
package article

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/archive"
	"github.com/dtnitsch/whatif/pkg/fetcher"
	"github.com/dtnitsch/whatif/pkg/imaging"
	"github.com/dtnitsch/whatif/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// IllustrationSelector matches the images embedded in an article, in the
// order their offline copies are numbered.
const IllustrationSelector = ".illustration"

// HTTPFetcher is the network side used by Fetcher.
type HTTPFetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Fetcher.
type Options struct {
	BaseURL string
	// ImageWorkers bounds concurrent image downloads per article; <= 0 means one at a time.
	ImageWorkers int
}

// Fetcher stores an article page and its illustrations for offline reading.
type Fetcher struct {
	http    HTTPFetcher
	storage *storage.Storage
	opts    Options
	logger  *slog.Logger
}

func NewFetcher(client HTTPFetcher, store *storage.Storage, opts Options, logger *slog.Logger) *Fetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = models.DefaultBaseURL
	}
	if opts.ImageWorkers <= 0 {
		opts.ImageWorkers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{http: client, storage: store, opts: opts, logger: logger}
}

// FetchArticle downloads article number. The page must be stored for the
// fetch to count; each illustration is best effort and a failing one never
// affects the others.
func (f *Fetcher) FetchArticle(ctx context.Context, number int) models.FetchResult {
	result := models.FetchResult{Number: number}

	pageURL := archive.ArticleURL(f.opts.BaseURL, number)
	raw, err := f.http.GetBytes(ctx, pageURL)
	if err != nil {
		return f.failed(result, err)
	}
	if err := f.storage.SaveFile(f.storage.HTMLPath(number), raw); err != nil {
		return f.failed(result, err)
	}

	doc, err := fetcher.ParseHtml(pageURL, raw)
	if err != nil {
		return f.failed(result, err)
	}

	illustrations := doc.Find(IllustrationSelector)
	result.ImagesTotal = illustrations.Length()

	var (
		mu     sync.Mutex
		stored int
		errs   []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.ImageWorkers)
	illustrations.Each(func(i int, s *goquery.Selection) {
		index := i + 1
		g.Go(func() error {
			if err := f.fetchImage(gctx, number, index, s); err != nil {
				f.logger.Error("Failed to store illustration", "article", number, "index", index, "element", outerHtml(s), "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("illustration %d: %w", index, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			stored++
			mu.Unlock()
			return nil
		})
	})
	_ = g.Wait()

	result.ImagesStored = stored
	result.ImageErrors = errs
	result.Status = models.StatusSuccess
	if len(errs) > 0 {
		result.Status = models.StatusPartial
	}

	f.logger.Info("Article stored", "article", number, "images", result.ImagesTotal, "stored", stored)
	return result
}

func (f *Fetcher) fetchImage(ctx context.Context, number, index int, s *goquery.Selection) error {
	src, _ := s.Attr("src")
	imgURL, err := fetcher.ResolveAssetURL(f.opts.BaseURL, src)
	if err != nil {
		return err
	}
	data, err := f.http.GetBytes(ctx, imgURL)
	if err != nil {
		return err
	}
	encoded, err := imaging.ToPNG(imgURL, data)
	if err != nil {
		return err
	}
	return f.storage.SaveFile(f.storage.ImagePath(number, index), encoded)
}

func (f *Fetcher) failed(result models.FetchResult, err error) models.FetchResult {
	f.logger.Error("Failed to store article", "article", result.Number, "error", err)
	result.Status = models.StatusFailed
	result.Err = err
	return result
}

func outerHtml(s *goquery.Selection) string {
	html, err := goquery.OuterHtml(s)
	if err != nil {
		return goquery.NodeName(s)
	}
	return html
}
