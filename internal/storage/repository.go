package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glabrego/postdeck/internal/post"
)

// Repository is the on-disk snapshot of the feed plus the flat key→JSON
// preference table that persists filter choices across sessions.
type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS posts (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  sub TEXT,
  title TEXT NOT NULL,
  text TEXT,
  author TEXT,
  upvotes INTEGER NOT NULL DEFAULT 0,
  url TEXT,
  comment_url TEXT,
  published_at TEXT,
  fetched_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS prefs (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SavePosts upserts a feed snapshot. Posts without an id are skipped; they
// never reach storage.
func (r *Repository) SavePosts(ctx context.Context, posts []post.Post) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO posts (id, source, sub, title, text, author, upvotes, url, comment_url, published_at, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  source=excluded.source,
  sub=excluded.sub,
  title=excluded.title,
  text=excluded.text,
  author=excluded.author,
  upvotes=excluded.upvotes,
  url=excluded.url,
  comment_url=excluded.comment_url,
  published_at=excluded.published_at,
  fetched_at=excluded.fetched_at
`)
	if err != nil {
		return fmt.Errorf("prepare save statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, p := range posts {
		if p.ID == "" {
			continue
		}
		published := ""
		if !p.PublishedAt.IsZero() {
			published = p.PublishedAt.UTC().Format(time.RFC3339Nano)
		}
		_, err := stmt.ExecContext(
			ctx,
			p.ID,
			string(p.Source),
			p.Sub,
			p.Title,
			p.Text,
			p.Author,
			p.Upvotes,
			p.URL,
			p.CommentURL,
			published,
			now,
		)
		if err != nil {
			return fmt.Errorf("save post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListPosts returns the newest snapshot rows, undated posts last.
func (r *Repository) ListPosts(ctx context.Context, limit int) ([]post.Post, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, source, sub, title, text, author, upvotes, url, comment_url, published_at
FROM posts
ORDER BY published_at = '' ASC, published_at DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]post.Post, 0, limit)
	for rows.Next() {
		var p post.Post
		var source, published string
		if err := rows.Scan(
			&p.ID,
			&source,
			&p.Sub,
			&p.Title,
			&p.Text,
			&p.Author,
			&p.Upvotes,
			&p.URL,
			&p.CommentURL,
			&published,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Source = post.Source(source)
		if published != "" {
			p.PublishedAt, err = time.Parse(time.RFC3339Nano, published)
			if err != nil {
				return nil, fmt.Errorf("parse post published_at %q: %w", published, err)
			}
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return posts, nil
}

// GetPref returns the raw JSON string stored under key, with found=false
// for an absent key.
func (r *Repository) GetPref(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query pref %s: %w", key, err)
	}
	return value, true, nil
}

// SetPref stores a raw JSON string under key, overwriting any prior value.
func (r *Repository) SetPref(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO prefs (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`, key, value)
	if err != nil {
		return fmt.Errorf("save pref %s: %w", key, err)
	}
	return nil
}
