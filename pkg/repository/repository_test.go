package repository

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/batch"
	"github.com/dtnitsch/whatif/pkg/db"
	"github.com/dtnitsch/whatif/pkg/fetcher"
	"github.com/dtnitsch/whatif/pkg/legacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type site struct {
	srv      *httptest.Server
	articles int32
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// newSite serves an archive of n articles. Thumbnail brokenThumb (1-based) is
// not an image; 0 means every thumbnail decodes.
func newSite(t *testing.T, n, brokenThumb int) *site {
	t.Helper()
	img := pngBytes(t)
	s := &site{}

	mux := http.NewServeMux()
	mux.HandleFunc("/archive/", func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for i := 1; i <= n; i++ {
			fmt.Fprintf(&sb, `<div class="archive-entry"><img class="archive-image" src="/imgs/a/%d/archive_crop.png"><h1>Title %d</h1></div>`, i, i)
		}
		sb.WriteString("</body></html>")
		w.Write([]byte(sb.String()))
	})
	for i := 1; i <= n; i++ {
		number := i
		mux.HandleFunc(fmt.Sprintf("/%d", number), func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&s.articles, 1)
			fmt.Fprintf(w, `<html><head><link rel="stylesheet" href="/css/style.css">
<script src="//cdn.mathjax.org/mathjax/latest/MathJax.js?config=TeX-AMS-MML_HTMLorMML"></script></head><body>
<div id="header-wrapper">header</div>
<article class="entry"><h1>Title %d</h1>
<p>Body %d <img class="illustration" src="/imgs/a/%d/one.png" title="one"></p>
<span class="ref"><span class="refnum">[1]</span><span class="refbody">note %d</span></span>
</article></body></html>`, number, number, number, number)
		})
		mux.HandleFunc(fmt.Sprintf("/imgs/a/%d/one.png", number), func(w http.ResponseWriter, r *http.Request) { w.Write(img) })
		mux.HandleFunc(fmt.Sprintf("/imgs/a/%d/archive_crop.png", number), func(w http.ResponseWriter, r *http.Request) {
			if number == brokenThumb {
				w.Write([]byte("not an image"))
				return
			}
			w.Write(img)
		})
	}
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func setupRepo(t *testing.T, s *site, offline bool) (*Repository, *db.DB) {
	t.Helper()
	dir := t.TempDir()

	store, err := db.Open(filepath.Join(dir, db.DefaultDBName))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := models.DefaultConfig()
	cfg.BaseURL = s.srv.URL
	cfg.OfflineRoot = filepath.Join(dir, "offline")
	cfg.OfflineMode = offline
	cfg.WorkerCount = 3

	client := fetcher.NewFetcher(fetcher.Options{})
	return New(cfg, store, client, legacy.New(nil, nil), nil), store
}

func TestUpdateDatabaseRecordsRun(t *testing.T) {
	s := newSite(t, 3, 0)
	repo, store := setupRepo(t, s, false)
	ctx := context.Background()

	res := repo.UpdateDatabase(ctx)
	require.NoError(t, res.Err)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Len(t, res.Inserted, 3)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Title 1", list[0].Title)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, db.RunSync, runs[0].Kind)
	assert.Equal(t, string(models.StatusSuccess), runs[0].Status)
	assert.Equal(t, 3, runs[0].TotalCount)
	assert.NotNil(t, runs[0].FinishedAt)

	// the second sync finds nothing new
	res = repo.UpdateDatabase(ctx)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Inserted)
}

func TestLoadArticleOnline(t *testing.T) {
	s := newSite(t, 2, 0)
	repo, _ := setupRepo(t, s, false)
	ctx := context.Background()
	require.NoError(t, repo.UpdateDatabase(ctx).Err)

	loaded, err := repo.LoadArticle(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Number())
	assert.True(t, loaded.Article.Read)
	assert.Contains(t, loaded.HTML, "style.css")
	assert.NotContains(t, loaded.HTML, "header-wrapper")
	assert.Equal(t, []string{"note 2"}, loaded.Refs)

	unread, err := repo.Unread(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, 1, unread[0].Number)
}

func TestLoadArticleUnknown(t *testing.T) {
	s := newSite(t, 1, 0)
	repo, _ := setupRepo(t, s, false)

	_, err := repo.LoadArticle(context.Background(), 42)
	assert.True(t, models.IsNotFound(err))
}

func TestLoadArticleOfflineMissingCopy(t *testing.T) {
	s := newSite(t, 2, 0)
	repo, store := setupRepo(t, s, true)
	ctx := context.Background()
	require.NoError(t, store.InsertArticles(ctx, []models.Article{{Number: 1, Title: "Title 1"}}))

	_, err := repo.LoadArticle(ctx, 1)
	require.Error(t, err)
	assert.True(t, models.IsLocalIO(err))
	assert.Zero(t, atomic.LoadInt32(&s.articles), "offline load must not fall back to the network")
}

func TestLoadArticleOfflineUsesStoredCopy(t *testing.T) {
	s := newSite(t, 1, 0)
	repo, store := setupRepo(t, s, true)
	ctx := context.Background()
	require.NoError(t, store.InsertArticles(ctx, []models.Article{{Number: 1, Title: "Title 1"}}))

	res := repo.DownloadArticle(ctx, 1)
	require.NoError(t, res.Err)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.True(t, repo.Storage().HasFile(repo.Storage().ImagePath(1, 1)))

	fetches := atomic.LoadInt32(&s.articles)
	loaded, err := repo.LoadArticle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, fetches, atomic.LoadInt32(&s.articles))
	assert.Contains(t, loaded.HTML, "file://")
	assert.Contains(t, loaded.HTML, `src="MathJax.js"`)
}

func TestDownloadAllArticles(t *testing.T) {
	s := newSite(t, 5, 0)
	repo, store := setupRepo(t, s, true)
	ctx := context.Background()

	var events []models.Progress
	last := batch.Collect(repo.DownloadAllArticles(ctx), func(p models.Progress) {
		events = append(events, p)
	})

	require.Len(t, events, 5)
	for i, p := range events {
		assert.Equal(t, i+1, p.Completed)
		assert.Equal(t, 5, p.Total)
	}
	assert.True(t, last.Done())
	assert.Zero(t, last.Failed)

	for n := 1; n <= 5; n++ {
		assert.True(t, repo.Storage().HasFile(repo.Storage().HTMLPath(n)), "article %d", n)
	}
	// the sync ahead of the batch only records the index
	assert.Equal(t, int32(5), atomic.LoadInt32(&s.articles), "each article is fetched once")

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	kinds := make([]string, 0, len(runs))
	for _, r := range runs {
		kinds = append(kinds, r.Kind)
	}
	assert.Contains(t, kinds, db.RunDownloadAll)
	assert.Contains(t, kinds, db.RunSync)
}

func TestDownloadArchiveImagesSkipsBrokenImage(t *testing.T) {
	s := newSite(t, 4, 2)
	repo, store := setupRepo(t, s, false)
	ctx := context.Background()

	last := batch.Collect(repo.DownloadArchiveImages(ctx), nil)
	assert.Equal(t, models.Progress{Completed: 4, Total: 4, Failed: 1}, last)

	st := repo.Storage()
	assert.True(t, st.HasFile(st.OverviewImagePath(1)))
	assert.False(t, st.HasFile(st.OverviewImagePath(2)))
	assert.True(t, st.HasFile(st.OverviewImagePath(3)))
	assert.True(t, st.HasFile(st.OverviewImagePath(4)))

	runs, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, db.RunDownloadOverview, runs[0].Kind)
	assert.Equal(t, string(models.StatusPartial), runs[0].Status)
	assert.Equal(t, 3, runs[0].SuccessCount)
	assert.Equal(t, 1, runs[0].FailedCount)
}

func TestDeleteAllOfflineArticlesKeepsMetadata(t *testing.T) {
	s := newSite(t, 2, 0)
	repo, _ := setupRepo(t, s, true)
	ctx := context.Background()

	batch.Collect(repo.DownloadAllArticles(ctx), nil)
	require.True(t, repo.Storage().HasFile(repo.Storage().HTMLPath(1)))

	require.NoError(t, repo.DeleteAllOfflineArticles())
	assert.False(t, repo.Storage().HasFile(repo.Storage().HTMLPath(1)))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestFlagsAndSearch(t *testing.T) {
	s := newSite(t, 3, 0)
	repo, _ := setupRepo(t, s, false)
	ctx := context.Background()
	require.NoError(t, repo.UpdateDatabase(ctx).Err)

	require.NoError(t, repo.SetFavorite(ctx, 3, true))
	favs, err := repo.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, 3, favs[0].Number)

	require.NoError(t, repo.SetAllRead(ctx))
	unread, err := repo.Unread(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, repo.SetAllUnread(ctx))
	unread, err = repo.Unread(ctx)
	require.NoError(t, err)
	assert.Len(t, unread, 3)

	found, err := repo.Search(ctx, "title 2")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].Number)

	assert.True(t, models.IsNotFound(repo.SetRead(ctx, 99, true)))
}
