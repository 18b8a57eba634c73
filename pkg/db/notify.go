package db

import (
	"context"

	"github.com/dtnitsch/whatif/models"
)

// Subscribe streams the article list: once immediately, then after every
// successful change. Slow readers only ever see the latest list. The channel
// closes when ctx is done.
func (db *DB) Subscribe(ctx context.Context) <-chan []models.Article {
	ch := make(chan []models.Article, 1)

	db.mu.Lock()
	id := db.nextID
	db.nextID++
	db.subs[id] = ch
	db.mu.Unlock()

	if articles, err := db.ListArticles(ctx); err == nil {
		db.mu.Lock()
		if _, ok := db.subs[id]; ok {
			offer(ch, articles)
		}
		db.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		db.mu.Lock()
		delete(db.subs, id)
		close(ch)
		db.mu.Unlock()
	}()

	return ch
}

// notify pushes the current list to subscribers. It never blocks on a reader.
func (db *DB) notify(ctx context.Context) {
	db.mu.Lock()
	empty := len(db.subs) == 0
	db.mu.Unlock()
	if empty {
		return
	}

	articles, err := db.ListArticles(context.WithoutCancel(ctx))
	if err != nil {
		return
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for _, ch := range db.subs {
		offer(ch, articles)
	}
}

// offer replaces any undelivered list with articles. Callers hold db.mu.
func offer(ch chan []models.Article, articles []models.Article) {
	select {
	case <-ch:
	default:
	}
	ch <- articles
}
