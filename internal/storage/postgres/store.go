// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

// StoreConfig controls the Postgres connection pool used by the page store.
type StoreConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store persists pages, posts, comments, and employees in Postgres.
type Store struct {
	pool querier
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewStoreWithPool(pool querier) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			page_id TEXT PRIMARY KEY,
			linkedin_id TEXT,
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			profile_picture_url TEXT,
			description TEXT,
			website TEXT,
			industry TEXT,
			follower_count INTEGER NOT NULL DEFAULT 0,
			headcount TEXT,
			specialities TEXT[],
			founded TEXT,
			headquarters TEXT,
			company_type TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			scraped_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			post_id TEXT PRIMARY KEY,
			page_id TEXT NOT NULL REFERENCES pages(page_id) ON DELETE CASCADE,
			content TEXT,
			like_count INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			share_count INTEGER NOT NULL DEFAULT 0,
			media_url TEXT,
			media_type TEXT,
			post_url TEXT,
			posted_at TIMESTAMPTZ,
			scraped_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			comment_id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL REFERENCES posts(post_id) ON DELETE CASCADE,
			page_id TEXT NOT NULL REFERENCES pages(page_id) ON DELETE CASCADE,
			author_name TEXT NOT NULL,
			author_profile_url TEXT,
			author_headline TEXT,
			content TEXT NOT NULL,
			like_count INTEGER NOT NULL DEFAULT 0,
			commented_at TIMESTAMPTZ,
			scraped_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id BIGSERIAL PRIMARY KEY,
			page_id TEXT NOT NULL REFERENCES pages(page_id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			designation TEXT,
			location TEXT,
			profile_url TEXT NOT NULL DEFAULT '',
			profile_picture_url TEXT,
			scraped_at TIMESTAMPTZ NOT NULL,
			UNIQUE (page_id, profile_url)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_industry ON pages (industry)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_follower_count ON pages (follower_count)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_page_id ON posts (page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_page_id ON comments (page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_page_id ON employees (page_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertPage inserts or refreshes one page keyed by page_id. The
// created_at of an existing row is preserved.
func (s *Store) UpsertPage(ctx context.Context, page insights.Page) error {
	if page.PageID == "" {
		return fmt.Errorf("page_id is required")
	}
	query := `
INSERT INTO pages (
	page_id, linkedin_id, name, url, profile_picture_url, description,
	website, industry, follower_count, headcount, specialities, founded,
	headquarters, company_type, created_at, updated_at, scraped_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
)
ON CONFLICT (page_id) DO UPDATE SET
	linkedin_id = EXCLUDED.linkedin_id,
	name = EXCLUDED.name,
	url = EXCLUDED.url,
	profile_picture_url = EXCLUDED.profile_picture_url,
	description = EXCLUDED.description,
	website = EXCLUDED.website,
	industry = EXCLUDED.industry,
	follower_count = EXCLUDED.follower_count,
	headcount = EXCLUDED.headcount,
	specialities = EXCLUDED.specialities,
	founded = EXCLUDED.founded,
	headquarters = EXCLUDED.headquarters,
	company_type = EXCLUDED.company_type,
	updated_at = EXCLUDED.updated_at,
	scraped_at = EXCLUDED.scraped_at`
	_, err := s.pool.Exec(ctx, query,
		page.PageID,
		page.LinkedInID,
		page.Name,
		page.URL,
		page.ProfilePictureURL,
		page.Description,
		page.Website,
		page.Industry,
		page.FollowerCount,
		page.Headcount,
		page.Specialities,
		page.Founded,
		page.Headquarters,
		page.CompanyType,
		page.CreatedAt,
		page.UpdatedAt,
		page.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}
	return nil
}

// UpsertPosts inserts or refreshes posts keyed by post_id.
func (s *Store) UpsertPosts(ctx context.Context, posts []insights.Post) error {
	query := `
INSERT INTO posts (
	post_id, page_id, content, like_count, comment_count, share_count,
	media_url, media_type, post_url, posted_at, scraped_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
ON CONFLICT (post_id) DO UPDATE SET
	content = EXCLUDED.content,
	like_count = EXCLUDED.like_count,
	comment_count = EXCLUDED.comment_count,
	share_count = EXCLUDED.share_count,
	media_url = EXCLUDED.media_url,
	media_type = EXCLUDED.media_type,
	post_url = EXCLUDED.post_url,
	posted_at = EXCLUDED.posted_at,
	scraped_at = EXCLUDED.scraped_at`
	for _, post := range posts {
		_, err := s.pool.Exec(ctx, query,
			post.PostID,
			post.PageID,
			post.Content,
			post.LikeCount,
			post.CommentCount,
			post.ShareCount,
			post.MediaURL,
			post.MediaType,
			post.PostURL,
			post.PostedAt,
			post.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert post %s: %w", post.PostID, err)
		}
	}
	return nil
}

// UpsertComments inserts or refreshes comments keyed by comment_id.
func (s *Store) UpsertComments(ctx context.Context, comments []insights.Comment) error {
	query := `
INSERT INTO comments (
	comment_id, post_id, page_id, author_name, author_profile_url,
	author_headline, content, like_count, commented_at, scraped_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
ON CONFLICT (comment_id) DO UPDATE SET
	author_name = EXCLUDED.author_name,
	author_profile_url = EXCLUDED.author_profile_url,
	author_headline = EXCLUDED.author_headline,
	content = EXCLUDED.content,
	like_count = EXCLUDED.like_count,
	commented_at = EXCLUDED.commented_at,
	scraped_at = EXCLUDED.scraped_at`
	for _, comment := range comments {
		_, err := s.pool.Exec(ctx, query,
			comment.CommentID,
			comment.PostID,
			comment.PageID,
			comment.AuthorName,
			comment.AuthorProfileURL,
			comment.AuthorHeadline,
			comment.Content,
			comment.LikeCount,
			comment.CommentedAt,
			comment.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert comment %s: %w", comment.CommentID, err)
		}
	}
	return nil
}

// UpsertEmployees inserts or refreshes employees keyed by
// (page_id, profile_url). Cards without a profile URL collapse onto one
// row per page, which matches how little the source markup gives us.
func (s *Store) UpsertEmployees(ctx context.Context, employees []insights.Employee) error {
	query := `
INSERT INTO employees (
	page_id, name, designation, location, profile_url,
	profile_picture_url, scraped_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7
)
ON CONFLICT (page_id, profile_url) DO UPDATE SET
	name = EXCLUDED.name,
	designation = EXCLUDED.designation,
	location = EXCLUDED.location,
	profile_picture_url = EXCLUDED.profile_picture_url,
	scraped_at = EXCLUDED.scraped_at`
	for _, emp := range employees {
		_, err := s.pool.Exec(ctx, query,
			emp.PageID,
			emp.Name,
			emp.Designation,
			emp.Location,
			emp.ProfileURL,
			emp.ProfilePictureURL,
			emp.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert employee %s: %w", emp.Name, err)
		}
	}
	return nil
}

const pageColumns = `page_id, linkedin_id, name, url, profile_picture_url, description,
	website, industry, follower_count, headcount, specialities, founded,
	headquarters, company_type, created_at, updated_at, scraped_at`

// GetPage loads one page or returns insights.ErrNotFound.
func (s *Store) GetPage(ctx context.Context, pageID string) (insights.Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM pages WHERE page_id = $1`, pageColumns)
	page, err := scanPage(s.pool.QueryRow(ctx, query, pageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return insights.Page{}, insights.ErrNotFound
		}
		return insights.Page{}, fmt.Errorf("get page: %w", err)
	}
	return page, nil
}

// SearchPages filters stored pages by name, industry, and follower
// range. Results are newest-first; Total counts all matches.
func (s *Store) SearchPages(ctx context.Context, q insights.PageQuery, offset, limit int) (insights.PageList, error) {
	conds := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.Name != "" {
		conds = append(conds, fmt.Sprintf("name ILIKE %s", arg("%"+q.Name+"%")))
	}
	if q.Industry != "" {
		conds = append(conds, fmt.Sprintf("industry ILIKE %s", arg("%"+q.Industry+"%")))
	}
	if q.MinFollowers != nil {
		conds = append(conds, fmt.Sprintf("follower_count >= %s", arg(*q.MinFollowers)))
	}
	if q.MaxFollowers != nil {
		conds = append(conds, fmt.Sprintf("follower_count <= %s", arg(*q.MaxFollowers)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM pages WHERE %s`, where)
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return insights.PageList{}, fmt.Errorf("count pages: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM pages WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		pageColumns, where, arg(limit), arg(offset))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return insights.PageList{}, fmt.Errorf("search pages: %w", err)
	}
	defer rows.Close()

	var pages []insights.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return insights.PageList{}, fmt.Errorf("scan page row: %w", err)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return insights.PageList{}, fmt.Errorf("search pages: %w", err)
	}
	return insights.PageList{Pages: pages, Total: total}, nil
}

// ListPosts returns one page of a company's posts plus the total count.
func (s *Store) ListPosts(ctx context.Context, pageID string, offset, limit int) ([]insights.Post, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE page_id = $1`, pageID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := `
SELECT post_id, page_id, content, like_count, comment_count, share_count,
	media_url, media_type, post_url, posted_at, scraped_at
FROM posts
WHERE page_id = $1
ORDER BY scraped_at DESC, post_id
LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, query, pageID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []insights.Post
	for rows.Next() {
		var p insights.Post
		err := rows.Scan(
			&p.PostID, &p.PageID, &p.Content,
			&p.LikeCount, &p.CommentCount, &p.ShareCount,
			&p.MediaURL, &p.MediaType, &p.PostURL,
			&p.PostedAt, &p.ScrapedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// ListComments returns one page of a company's comments plus the total count.
func (s *Store) ListComments(ctx context.Context, pageID string, offset, limit int) ([]insights.Comment, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE page_id = $1`, pageID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := `
SELECT comment_id, post_id, page_id, author_name, author_profile_url,
	author_headline, content, like_count, commented_at, scraped_at
FROM comments
WHERE page_id = $1
ORDER BY scraped_at DESC, comment_id
LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, query, pageID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []insights.Comment
	for rows.Next() {
		var c insights.Comment
		err := rows.Scan(
			&c.CommentID, &c.PostID, &c.PageID,
			&c.AuthorName, &c.AuthorProfileURL, &c.AuthorHeadline,
			&c.Content, &c.LikeCount, &c.CommentedAt, &c.ScrapedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return comments, total, nil
}

// ListEmployees returns one page of a company's employees plus the total count.
func (s *Store) ListEmployees(ctx context.Context, pageID string, offset, limit int) ([]insights.Employee, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE page_id = $1`, pageID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	query := `
SELECT id, page_id, name, designation, location, profile_url,
	profile_picture_url, scraped_at
FROM employees
WHERE page_id = $1
ORDER BY name, id
LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, query, pageID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []insights.Employee
	for rows.Next() {
		var e insights.Employee
		err := rows.Scan(
			&e.ID, &e.PageID, &e.Name, &e.Designation,
			&e.Location, &e.ProfileURL, &e.ProfilePictureURL, &e.ScrapedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan employee row: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	return employees, total, nil
}

// DeletePage removes a page; posts, comments, and employees cascade.
// It reports whether a row was actually deleted.
func (s *Store) DeletePage(ctx context.Context, pageID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pages WHERE page_id = $1`, pageID)
	if err != nil {
		return false, fmt.Errorf("delete page: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPage(row pgx.Row) (insights.Page, error) {
	var p insights.Page
	err := row.Scan(
		&p.PageID, &p.LinkedInID, &p.Name, &p.URL,
		&p.ProfilePictureURL, &p.Description, &p.Website, &p.Industry,
		&p.FollowerCount, &p.Headcount, &p.Specialities, &p.Founded,
		&p.Headquarters, &p.CompanyType,
		&p.CreatedAt, &p.UpdatedAt, &p.ScrapedAt,
	)
	return p, err
}
