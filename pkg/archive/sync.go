package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/legacy"
)

// Store is the part of the document store the synchronizer needs.
type Store interface {
	CountArticles(ctx context.Context) (int, error)
	InsertArticles(ctx context.Context, articles []models.Article) error
}

// PageFetcher loads the archive listing, bypassing any response cache.
type PageFetcher interface {
	RefreshHtml(ctx context.Context, url string) (*goquery.Document, error)
}

// Downloader stores an article for offline reading.
type Downloader interface {
	FetchArticle(ctx context.Context, number int) models.FetchResult
}

// Options configures a Synchronizer.
type Options struct {
	BaseURL string
	// DownloadNew fetches every newly listed article during the sync.
	DownloadNew bool
}

// Synchronizer reconciles the remote archive listing with the document store.
type Synchronizer struct {
	store      Store
	pages      PageFetcher
	downloader Downloader
	flags      legacy.Flags
	opts       Options
	logger     *slog.Logger
}

func NewSynchronizer(store Store, pages PageFetcher, downloader Downloader, flags legacy.Flags, opts Options, logger *slog.Logger) *Synchronizer {
	if opts.BaseURL == "" {
		opts.BaseURL = models.DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		store:      store,
		pages:      pages,
		downloader: downloader,
		flags:      flags,
		opts:       opts,
		logger:     logger,
	}
}

// Synchronize inserts the articles listed remotely but not yet stored. On any
// failure the store is left unchanged and the result carries the error.
func (s *Synchronizer) Synchronize(ctx context.Context) models.SyncResult {
	known, err := s.store.CountArticles(ctx)
	if err != nil {
		return s.failed(models.SyncResult{}, fmt.Errorf("count known articles: %w", err))
	}
	result := models.SyncResult{Known: known}

	indexURL := IndexURL(s.opts.BaseURL)
	doc, err := s.pages.RefreshHtml(ctx, indexURL)
	if err != nil {
		return s.failed(result, err)
	}
	entries, err := ParseIndex(doc, s.opts.BaseURL)
	if err != nil {
		return s.failed(result, err)
	}
	result.Listed = len(entries)
	for i, e := range entries {
		if e.Thumbnail == "" && i >= known {
			s.logger.Warn("Archive entry has no usable thumbnail", "article", i+1, "title", e.Title)
		}
	}

	articles := NewArticles(entries, known)
	MigrateLegacy(articles, s.flags, known == 0)

	if s.opts.DownloadNew && s.downloader != nil {
		for _, a := range articles {
			if err := ctx.Err(); err != nil {
				return s.failed(result, err)
			}
			result.Fetches = append(result.Fetches, s.downloader.FetchArticle(ctx, a.Number))
		}
	}

	if err := s.store.InsertArticles(ctx, articles); err != nil {
		return s.failed(result, fmt.Errorf("insert new articles: %w", err))
	}
	result.Inserted = articles
	result.Status = models.StatusSuccess
	for _, f := range result.Fetches {
		if f.Status != models.StatusSuccess {
			result.Status = models.StatusPartial
			break
		}
	}

	s.logger.Info("Archive synchronized", "known", known, "listed", len(entries), "inserted", len(articles), "migrated", known == 0 && len(articles) > 0)
	return result
}

func (s *Synchronizer) failed(result models.SyncResult, err error) models.SyncResult {
	s.logger.Error("Archive sync failed", "error", err)
	result.Status = models.StatusFailed
	result.Err = err
	result.Inserted = nil
	return result
}
