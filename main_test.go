package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/db"
	"github.com/dtnitsch/whatif/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archivePage = `<html><body>
<div><img class="archive-image" src="/imgs/a/1/archive_crop.png"><h1>Relativistic Baseball</h1></div>
<div><img class="archive-image" src="/imgs/a/2/archive_crop.png"><h1>Glass Half Empty</h1></div>
</body></html>`

func newArchive(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/archive/", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(archivePage)) })
	for n := 1; n <= 2; n++ {
		mux.HandleFunc(fmt.Sprintf("/%d", n), func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<html><head></head><body><h1>Article</h1><p>Text of the article.</p></body></html>`)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCommands(t *testing.T) {
	srv := newArchive(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "whatif.db")
	offlineRoot := filepath.Join(dir, "offline")

	global := []string{"whatif", "--config", "", "--quiet", "--db", dbPath, "--offline-root", offlineRoot, "--base-url", srv.URL}
	run := func(args ...string) error {
		return newApp().RunContext(context.Background(), append(append([]string{}, global...), args...))
	}

	require.NoError(t, run("sync"))
	require.NoError(t, run("list", "--format", "json"))
	require.NoError(t, run("favorite", "2"))
	require.NoError(t, run("mark-read", "--all"))
	require.NoError(t, run("mark-read", "--unread", "1"))
	require.NoError(t, run("search", "glass"))
	require.NoError(t, run("download", "1"))
	require.NoError(t, run("--offline", "read", "--text", "1"))
	require.NoError(t, run("runs", "--limit", "5"))

	assert.Error(t, run("read", "abc"))
	assert.Error(t, run("favorite", "99"))
	assert.Error(t, run("--offline", "read", "2"), "article 2 was never downloaded")

	store, err := db.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	list, err := store.ListArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.Article{Number: 1, Title: "Relativistic Baseball", Thumbnail: srv.URL + "/imgs/a/1/archive_crop.png", Read: true}, list[0])
	assert.True(t, list[1].Favorite)
	assert.True(t, list[1].Read)

	assets := storage.New(offlineRoot)
	assert.True(t, assets.HasFile(assets.HTMLPath(1)))

	require.NoError(t, run("delete-offline"))
	assert.False(t, assets.HasFile(assets.HTMLPath(1)))
}
