// Package repository is the entry point for reading and syncing articles. It
// ties the document store, the offline asset cache and the network together.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/archive"
	"github.com/dtnitsch/whatif/pkg/article"
	"github.com/dtnitsch/whatif/pkg/db"
	"github.com/dtnitsch/whatif/pkg/legacy"
	"github.com/dtnitsch/whatif/pkg/storage"
	"github.com/dtnitsch/whatif/pkg/transformer"
)

// Store is the document store as used by the repository.
type Store interface {
	archive.Store
	ListArticles(ctx context.Context) ([]models.Article, error)
	ListFavorites(ctx context.Context) ([]models.Article, error)
	ListUnread(ctx context.Context) ([]models.Article, error)
	GetArticle(ctx context.Context, number int) (*models.Article, error)
	SetFavorite(ctx context.Context, number int, favorite bool) error
	SetRead(ctx context.Context, number int, read bool) error
	SetAllRead(ctx context.Context) error
	SetAllUnread(ctx context.Context) error
	SearchArticles(ctx context.Context, query string) ([]models.Article, error)
	Subscribe(ctx context.Context) <-chan []models.Article
	StartRun(ctx context.Context, kind string) (int64, error)
	FinishRun(ctx context.Context, runID int64, status models.Status, total, succeeded, failed int, runErr error) error
}

// HTTP is the network client as used by the repository.
type HTTP interface {
	article.HTTPFetcher
	archive.PageFetcher
	GetCachedHtml(ctx context.Context, url string) (*goquery.Document, error)
}

type Repository struct {
	cfg     *models.Config
	store   Store
	http    HTTP
	storage *storage.Storage
	sync    *archive.Synchronizer
	fetcher *article.Fetcher
	logger  *slog.Logger

	// indexSync never downloads; batch downloads fetch every article themselves.
	indexSync *archive.Synchronizer
}

func New(cfg *models.Config, store Store, client HTTP, flags legacy.Flags, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	assets := storage.New(cfg.OfflineRoot)
	fetcher := article.NewFetcher(client, assets, article.Options{
		BaseURL:      cfg.BaseURL,
		ImageWorkers: cfg.ImageWorkers,
	}, logger)

	return &Repository{
		cfg:     cfg,
		store:   store,
		http:    client,
		storage: assets,
		fetcher: fetcher,
		sync: archive.NewSynchronizer(store, client, fetcher, flags, archive.Options{
			BaseURL:     cfg.BaseURL,
			DownloadNew: cfg.OfflineMode && cfg.AllowOfflineDownload,
		}, logger),
		indexSync: archive.NewSynchronizer(store, client, nil, flags, archive.Options{
			BaseURL: cfg.BaseURL,
		}, logger),
		logger: logger,
	}
}

// Storage exposes the offline asset cache.
func (r *Repository) Storage() *storage.Storage {
	return r.storage
}

// Articles streams the article list on every change until ctx is done.
func (r *Repository) Articles(ctx context.Context) <-chan []models.Article {
	return r.store.Subscribe(ctx)
}

func (r *Repository) List(ctx context.Context) ([]models.Article, error) {
	return r.store.ListArticles(ctx)
}

func (r *Repository) Favorites(ctx context.Context) ([]models.Article, error) {
	return r.store.ListFavorites(ctx)
}

func (r *Repository) Unread(ctx context.Context) ([]models.Article, error) {
	return r.store.ListUnread(ctx)
}

// UpdateDatabase synchronizes the archive index and records the run.
func (r *Repository) UpdateDatabase(ctx context.Context) models.SyncResult {
	return r.synchronize(ctx, r.sync)
}

func (r *Repository) synchronize(ctx context.Context, s *archive.Synchronizer) models.SyncResult {
	runID, runErr := r.store.StartRun(ctx, db.RunSync)
	res := s.Synchronize(ctx)
	if runErr == nil {
		failed := 0
		for _, f := range res.Fetches {
			if !f.Ok() {
				failed++
			}
		}
		if err := r.store.FinishRun(context.WithoutCancel(ctx), runID, res.Status, len(res.Inserted), len(res.Inserted)-failed, failed, res.Err); err != nil {
			r.logger.Warn("Failed to record sync run", "run_id", runID, "error", err)
		}
	}
	return res
}

func (r *Repository) SetFavorite(ctx context.Context, number int, favorite bool) error {
	return r.store.SetFavorite(ctx, number, favorite)
}

func (r *Repository) SetRead(ctx context.Context, number int, read bool) error {
	return r.store.SetRead(ctx, number, read)
}

func (r *Repository) SetAllRead(ctx context.Context) error {
	return r.store.SetAllRead(ctx)
}

func (r *Repository) SetAllUnread(ctx context.Context) error {
	return r.store.SetAllUnread(ctx)
}

func (r *Repository) Search(ctx context.Context, query string) ([]models.Article, error) {
	return r.store.SearchArticles(ctx, query)
}

// LoadArticle marks the article read and returns it ready for rendering. In
// offline mode the stored copy is required; a missing copy is an error and
// never triggers a network fetch.
func (r *Repository) LoadArticle(ctx context.Context, number int) (*models.LoadedArticle, error) {
	a, err := r.store.GetArticle(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := r.store.SetRead(ctx, number, true); err != nil {
		return nil, err
	}
	a.Read = true

	var raw []byte
	if r.cfg.OfflineMode {
		raw, err = r.storage.ReadFile(r.storage.HTMLPath(number))
	} else {
		raw, err = r.http.GetBytes(ctx, archive.ArticleURL(r.cfg.BaseURL, number))
	}
	if err != nil {
		return nil, fmt.Errorf("article %d unavailable: %w", number, err)
	}

	return transformer.Transform(number, *a, raw, transformer.Options{
		Offline:     r.cfg.OfflineMode,
		OfflineBase: r.storage.OfflineBase(),
		BaseURL:     r.cfg.BaseURL,
		Theme:       r.cfg.Theme,
	})
}

// DownloadArticle stores one article for offline reading.
func (r *Repository) DownloadArticle(ctx context.Context, number int) models.FetchResult {
	return r.fetcher.FetchArticle(ctx, number)
}

// DeleteAllOfflineArticles removes every downloaded article and overview
// image. Article metadata stays.
func (r *Repository) DeleteAllOfflineArticles() error {
	return r.storage.DeleteAll()
}
