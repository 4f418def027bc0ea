package insights

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// PromotionDetector decides whether a probe result warrants a headless fetch.
type PromotionDetector interface {
	ShouldPromote(probe FetchResponse) bool
}

// PageStore persists scraped company data.
type PageStore interface {
	UpsertPage(ctx context.Context, page Page) error
	UpsertPosts(ctx context.Context, posts []Post) error
	UpsertComments(ctx context.Context, comments []Comment) error
	UpsertEmployees(ctx context.Context, employees []Employee) error
	GetPage(ctx context.Context, pageID string) (Page, error)
	SearchPages(ctx context.Context, query PageQuery, offset, limit int) (PageList, error)
	ListPosts(ctx context.Context, pageID string, offset, limit int) ([]Post, int, error)
	ListComments(ctx context.Context, pageID string, offset, limit int) ([]Comment, int, error)
	ListEmployees(ctx context.Context, pageID string, offset, limit int) ([]Employee, int, error)
	DeletePage(ctx context.Context, pageID string) (bool, error)
}

// Scraper runs the full fetch-validate-extract pipeline for one company.
type Scraper interface {
	ScrapeAll(ctx context.Context, pageID string) (Bundle, error)
}

// Cache is a TTL'd read-through layer in front of repository reads.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
	Stats(ctx context.Context) (CacheStats, error)
	Close() error
}

// CacheStats describes the active cache backend.
type CacheStats struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	Enabled bool   `json:"enabled"`
}

// Summarizer turns stored page data into a prose analysis.
type Summarizer interface {
	Summarize(ctx context.Context, page Page, posts []Post, employees []Employee) (Summary, error)
	Model() string
	Available() bool
}

// SnapshotStore writes raw fetched documents and returns a URI.
type SnapshotStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes scrape-completed events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
