package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/whatif/models"
)

const articleColumns = "number, title, thumbnail, is_favorite, is_read"

func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.Number, &a.Title, &a.Thumbnail, &a.Favorite, &a.Read); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

// CountArticles returns the number of known articles.
func (db *DB) CountArticles(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}

// ListArticles returns every article ordered by number.
func (db *DB) ListArticles(ctx context.Context) ([]models.Article, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+articleColumns+" FROM articles ORDER BY number")
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return scanArticles(rows)
}

// ListFavorites returns favorite articles ordered by number.
func (db *DB) ListFavorites(ctx context.Context) ([]models.Article, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE is_favorite = 1 ORDER BY number")
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return scanArticles(rows)
}

// ListUnread returns unread articles ordered by number.
func (db *DB) ListUnread(ctx context.Context) ([]models.Article, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE is_read = 0 ORDER BY number")
	if err != nil {
		return nil, fmt.Errorf("failed to list unread articles: %w", err)
	}
	return scanArticles(rows)
}

// GetArticle returns the article with the given number or a NotFoundError.
func (db *DB) GetArticle(ctx context.Context, number int) (*models.Article, error) {
	var a models.Article
	err := db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE number = ?", number).
		Scan(&a.Number, &a.Title, &a.Thumbnail, &a.Favorite, &a.Read)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Number: number}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %d: %w", number, err)
	}
	return &a, nil
}

// InsertArticles inserts a batch in one transaction. Either every article is
// stored or none is.
func (db *DB) InsertArticles(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (number, title, thumbnail, is_favorite, is_read)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		if _, err := stmt.ExecContext(ctx, a.Number, a.Title, a.Thumbnail, a.Favorite, a.Read); err != nil {
			return fmt.Errorf("failed to insert article %d: %w", a.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit articles: %w", err)
	}
	db.notify(ctx)
	return nil
}

func (db *DB) setFlag(ctx context.Context, column string, number int, value bool) error {
	res, err := db.ExecContext(ctx, "UPDATE articles SET "+column+" = ? WHERE number = ?", value, number)
	if err != nil {
		return fmt.Errorf("failed to update article %d: %w", number, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &models.NotFoundError{Number: number}
	}
	db.notify(ctx)
	return nil
}

func (db *DB) SetFavorite(ctx context.Context, number int, favorite bool) error {
	return db.setFlag(ctx, "is_favorite", number, favorite)
}

func (db *DB) SetRead(ctx context.Context, number int, read bool) error {
	return db.setFlag(ctx, "is_read", number, read)
}

func (db *DB) setAllRead(ctx context.Context, read bool) error {
	if _, err := db.ExecContext(ctx, "UPDATE articles SET is_read = ?", read); err != nil {
		return fmt.Errorf("failed to update read flags: %w", err)
	}
	db.notify(ctx)
	return nil
}

func (db *DB) SetAllRead(ctx context.Context) error {
	return db.setAllRead(ctx, true)
}

func (db *DB) SetAllUnread(ctx context.Context) error {
	return db.setAllRead(ctx, false)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchArticles matches query against titles, case-insensitively.
func (db *DB) SearchArticles(ctx context.Context, query string) ([]models.Article, error) {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"
	rows, err := db.QueryContext(ctx,
		"SELECT "+articleColumns+` FROM articles WHERE title LIKE ? ESCAPE '\' ORDER BY number`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	return scanArticles(rows)
}
