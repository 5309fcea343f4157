package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements ArticleStore on a pgx connection pool.
type PostgresStore struct {
	pool    *pgxpool.Pool
	pending []*ArchivedEntity
}

// Connect establishes a connection pool to the database and verifies it.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// ExistingURLs returns the set of every stored article URL.
func (s *PostgresStore) ExistingURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT url FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored URLs: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan stored URL: %w", err)
		}
		urls[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stored URLs: %w", err)
	}
	return urls, nil
}

// Append buffers one entity for the next Commit, assigning an ID when the
// caller did not.
func (s *PostgresStore) Append(_ context.Context, entity *ArchivedEntity) error {
	if entity == nil {
		return fmt.Errorf("nil entity")
	}
	if entity.URL == "" {
		return fmt.Errorf("entity has no URL")
	}
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	s.pending = append(s.pending, entity)
	return nil
}

// Commit inserts the buffered batch in one transaction. ON CONFLICT (url)
// DO NOTHING makes re-runs and concurrent writers idempotent at the store
// level.
func (s *PostgresStore) Commit(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, entity := range s.pending {
		_, err := tx.Exec(ctx,
			`INSERT INTO articles (id, title, url, text_length, image_count, publish_time, publisher, content, category)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (url) DO NOTHING`,
			entity.ID, entity.Title, entity.URL, entity.TextLength, entity.ImageCount,
			entity.PublishTime, entity.Publisher, entity.Content, string(entity.Category),
		)
		if err != nil {
			return fmt.Errorf("failed to insert article %s: %w", entity.URL, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// GetByURL fetches one stored article, or nil when absent. Used by the CLI
// for spot checks, not by the pipeline.
func (s *PostgresStore) GetByURL(ctx context.Context, url string) (*ArchivedEntity, error) {
	var e ArchivedEntity
	var category string
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, url, text_length, image_count, publish_time, publisher, content, category
		 FROM articles WHERE url = $1`, url,
	).Scan(&e.ID, &e.Title, &e.URL, &e.TextLength, &e.ImageCount, &e.PublishTime, &e.Publisher, &e.Content, &category)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article %s: %w", url, err)
	}
	e.Category = categoryFromString(category)
	return &e, nil
}
