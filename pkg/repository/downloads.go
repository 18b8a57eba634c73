package repository

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/archive"
	"github.com/dtnitsch/whatif/pkg/batch"
	"github.com/dtnitsch/whatif/pkg/db"
	"github.com/dtnitsch/whatif/pkg/fetcher"
	"github.com/dtnitsch/whatif/pkg/imaging"
)

// DownloadAllArticles syncs the index, then stores every known article for
// offline reading. The stream ends once every article has been processed.
func (r *Repository) DownloadAllArticles(ctx context.Context) <-chan models.Progress {
	// offline mode can be switched on before the index was ever synced
	r.synchronize(ctx, r.indexSync)

	articles, err := r.store.ListArticles(ctx)
	if err != nil {
		r.logger.Error("Failed to list articles for download", "error", err)
		return closedProgress()
	}

	progress := batch.Run(ctx, articles, r.cfg.WorkerCount, func(ctx context.Context, a models.Article) error {
		res := r.fetcher.FetchArticle(ctx, a.Number)
		if !res.Ok() {
			return res.Err
		}
		return nil
	})
	return r.trackRun(ctx, db.RunDownloadAll, progress)
}

// DownloadArchiveImages stores the archive overview thumbnails. Each image
// failure is logged on its own and still counts as processed.
func (r *Repository) DownloadArchiveImages(ctx context.Context) <-chan models.Progress {
	indexURL := archive.IndexURL(r.cfg.BaseURL)
	doc, err := r.http.GetCachedHtml(ctx, indexURL)
	if err != nil {
		r.logger.Error("Failed to load archive for overview images", "url", indexURL, "error", err)
		return closedProgress()
	}

	var sources []string
	archive.Thumbnails(doc).Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		sources = append(sources, src)
	})
	indexes := make([]int, len(sources))
	for i := range indexes {
		indexes[i] = i + 1
	}

	progress := batch.Run(ctx, indexes, r.cfg.WorkerCount, func(ctx context.Context, index int) error {
		if err := r.fetchOverviewImage(ctx, index, sources[index-1]); err != nil {
			r.logger.Error("Failed to store archive image", "index", index, "src", sources[index-1], "error", err)
			return err
		}
		return nil
	})
	return r.trackRun(ctx, db.RunDownloadOverview, progress)
}

func (r *Repository) fetchOverviewImage(ctx context.Context, index int, src string) error {
	imgURL, err := fetcher.ResolveAssetURL(r.cfg.BaseURL, src)
	if err != nil {
		return err
	}
	data, err := r.http.GetBytes(ctx, imgURL)
	if err != nil {
		return err
	}
	encoded, err := imaging.ToPNG(imgURL, data)
	if err != nil {
		return err
	}
	return r.storage.SaveFile(r.storage.OverviewImagePath(index), encoded)
}

// trackRun forwards progress unchanged and records the batch as a sync run
// once the stream closes.
func (r *Repository) trackRun(ctx context.Context, kind string, in <-chan models.Progress) <-chan models.Progress {
	runID, runErr := r.store.StartRun(ctx, kind)
	if runErr != nil {
		r.logger.Warn("Failed to record run", "kind", kind, "error", runErr)
	}

	out := make(chan models.Progress)
	go func() {
		defer close(out)
		var last models.Progress
		for p := range in {
			last = p
			select {
			case out <- p:
			case <-ctx.Done():
			}
		}

		status := models.StatusSuccess
		switch {
		case ctx.Err() != nil, !last.Done():
			status = models.StatusFailed
		case last.Failed > 0 && last.Failed == last.Total:
			status = models.StatusFailed
		case last.Failed > 0:
			status = models.StatusPartial
		}
		r.logger.Info("Batch finished", "kind", kind, "completed", last.Completed, "failed", last.Failed, "total", last.Total)

		if runErr == nil {
			if err := r.store.FinishRun(context.WithoutCancel(ctx), runID, status, last.Total, last.Completed-last.Failed, last.Failed, ctx.Err()); err != nil {
				r.logger.Warn("Failed to record run", "run_id", runID, "error", err)
			}
		}
	}()
	return out
}

func closedProgress() <-chan models.Progress {
	ch := make(chan models.Progress)
	close(ch)
	return ch
}
