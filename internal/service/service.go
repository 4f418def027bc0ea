// Package service coordinates cache, store, scraper, and summarizer
// into the operations the API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Akshatb2006/Linkedin-Insights/internal/cache"
	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
	"github.com/Akshatb2006/Linkedin-Insights/internal/telemetry"
)

// Config tunes the service layer.
type Config struct {
	// CacheTTL bounds how long served pages and summaries stay cached.
	CacheTTL time.Duration
	// EventsTopic names the topic scrape events are published to.
	EventsTopic string
}

// PageService serves company pages with cache -> database -> scrape
// fallthrough.
type PageService struct {
	store      insights.PageStore
	cache      insights.Cache
	scraper    insights.Scraper
	summarizer insights.Summarizer
	publisher  insights.Publisher
	clock      insights.Clock
	logger     *zap.Logger
	cfg        Config
}

// New assembles a PageService. publisher may be nil when event
// publishing is disabled.
func New(
	store insights.PageStore,
	cacheLayer insights.Cache,
	scraper insights.Scraper,
	summarizer insights.Summarizer,
	publisher insights.Publisher,
	clock insights.Clock,
	logger *zap.Logger,
	cfg Config,
) *PageService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.EventsTopic == "" {
		cfg.EventsTopic = "scrape-events"
	}
	telemetry.Init()
	return &PageService{
		store:      store,
		cache:      cacheLayer,
		scraper:    scraper,
		summarizer: summarizer,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
		cfg:        cfg,
	}
}

// GetPage serves one company page. Without forceRefresh it reads
// through cache and database before scraping; with forceRefresh it
// scrapes unconditionally and overwrites both layers.
func (s *PageService) GetPage(ctx context.Context, pageID string, forceRefresh bool) (insights.Page, insights.Source, error) {
	key := cache.Key("page", pageID)

	if !forceRefresh {
		var cached insights.Page
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			telemetry.ObserveCacheOp("get", "error")
			s.logger.Warn("cache read failed", zap.String("page_id", pageID), zap.Error(err))
		} else if found {
			telemetry.ObserveCacheOp("get", "hit")
			return cached, insights.SourceCache, nil
		} else {
			telemetry.ObserveCacheOp("get", "miss")
		}

		stored, err := s.store.GetPage(ctx, pageID)
		if err == nil {
			s.cacheSet(ctx, key, stored)
			return stored, insights.SourceDatabase, nil
		}
		if !errors.Is(err, insights.ErrNotFound) {
			return insights.Page{}, "", fmt.Errorf("load page: %w", err)
		}
	}

	page, err := s.scrapeAndPersist(ctx, pageID)
	if err != nil {
		return insights.Page{}, "", err
	}
	s.cacheSet(ctx, key, page)
	return page, insights.SourceScraped, nil
}

// Search queries stored pages only; it never triggers a scrape.
func (s *PageService) Search(ctx context.Context, query insights.PageQuery, offset, limit int) (insights.PageList, error) {
	return s.store.SearchPages(ctx, query, offset, limit)
}

// GetPosts lists a company's stored posts, scraping the company first
// if it has never been ingested.
func (s *PageService) GetPosts(ctx context.Context, pageID string, offset, limit int) ([]insights.Post, int, error) {
	if err := s.ensurePage(ctx, pageID); err != nil {
		return nil, 0, err
	}
	return s.store.ListPosts(ctx, pageID, offset, limit)
}

// GetComments lists a company's stored comments, scraping the company
// first if it has never been ingested.
func (s *PageService) GetComments(ctx context.Context, pageID string, offset, limit int) ([]insights.Comment, int, error) {
	if err := s.ensurePage(ctx, pageID); err != nil {
		return nil, 0, err
	}
	return s.store.ListComments(ctx, pageID, offset, limit)
}

// GetEmployees lists a company's stored employees, scraping the
// company first if it has never been ingested.
func (s *PageService) GetEmployees(ctx context.Context, pageID string, offset, limit int) ([]insights.Employee, int, error) {
	if err := s.ensurePage(ctx, pageID); err != nil {
		return nil, 0, err
	}
	return s.store.ListEmployees(ctx, pageID, offset, limit)
}

// DeletePage removes a company page and all dependent rows, then
// drops every cache entry referencing it.
func (s *PageService) DeletePage(ctx context.Context, pageID string) error {
	deleted, err := s.store.DeletePage(ctx, pageID)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if !deleted {
		return insights.ErrNotFound
	}

	if err := s.cache.Delete(ctx, cache.Key("page", pageID)); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("page_id", pageID), zap.Error(err))
	}
	if _, err := s.cache.DeletePattern(ctx, cache.Key("ai_summary", pageID)+"*"); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.String("page_id", pageID), zap.Error(err))
	}
	return nil
}

// Summarize generates (or serves a cached) AI analysis of a stored
// page. Posts and employees are included in the prompt on request.
func (s *PageService) Summarize(ctx context.Context, pageID string, includePosts, includeEmployees, skipCache bool) (insights.Summary, insights.Source, error) {
	if !s.summarizer.Available() {
		return insights.Summary{}, "", insights.ErrSummarizerDisabled
	}

	key := cache.Key("ai_summary", summaryCacheID(pageID, includePosts, includeEmployees))
	if !skipCache {
		var cached insights.Summary
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			telemetry.ObserveCacheOp("get", "error")
		} else if found {
			telemetry.ObserveCacheOp("get", "hit")
			return cached, insights.SourceCache, nil
		} else {
			telemetry.ObserveCacheOp("get", "miss")
		}
	}

	page, _, err := s.GetPage(ctx, pageID, false)
	if err != nil {
		return insights.Summary{}, "", err
	}

	var posts []insights.Post
	if includePosts {
		if posts, _, err = s.store.ListPosts(ctx, pageID, 0, 5); err != nil {
			s.logger.Warn("loading posts for summary failed", zap.String("page_id", pageID), zap.Error(err))
		}
	}
	var employees []insights.Employee
	if includeEmployees {
		if employees, _, err = s.store.ListEmployees(ctx, pageID, 0, 5); err != nil {
			s.logger.Warn("loading employees for summary failed", zap.String("page_id", pageID), zap.Error(err))
		}
	}

	summary, err := s.summarizer.Summarize(ctx, page, posts, employees)
	if err != nil {
		telemetry.ObserveSummary("error")
		return insights.Summary{}, "", fmt.Errorf("generate summary: %w", err)
	}
	telemetry.ObserveSummary("success")
	s.cacheSet(ctx, key, summary)
	return summary, insights.SourceScraped, nil
}

// SummarizerInfo reports provider availability for the API.
func (s *PageService) SummarizerInfo() (model string, available bool) {
	return s.summarizer.Model(), s.summarizer.Available()
}

// CacheStats exposes backend statistics for the admin endpoint.
func (s *PageService) CacheStats(ctx context.Context) (insights.CacheStats, error) {
	return s.cache.Stats(ctx)
}

// ClearCache drops keys this service has written, optionally scoped to
// one kind prefix (e.g. "page" or "ai_summary").
func (s *PageService) ClearCache(ctx context.Context, prefix string) (int, error) {
	pattern := cache.KeyPrefix + "*"
	if prefix != "" {
		pattern = cache.KeyPrefix + prefix + ":*"
	}
	return s.cache.DeletePattern(ctx, pattern)
}

// ensurePage makes sure a page exists in the database, scraping it on
// first access.
func (s *PageService) ensurePage(ctx context.Context, pageID string) error {
	_, err := s.store.GetPage(ctx, pageID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, insights.ErrNotFound) {
		return fmt.Errorf("load page: %w", err)
	}
	if _, err := s.scrapeAndPersist(ctx, pageID); err != nil {
		return err
	}
	return nil
}

// scrapeAndPersist runs the pipeline and writes everything it produced.
func (s *PageService) scrapeAndPersist(ctx context.Context, pageID string) (insights.Page, error) {
	start := s.clock.Now()
	bundle, err := s.scraper.ScrapeAll(ctx, pageID)
	if err != nil {
		return insights.Page{}, err
	}

	if err := s.store.UpsertPage(ctx, bundle.Page); err != nil {
		return insights.Page{}, fmt.Errorf("persist page: %w", err)
	}
	if err := s.store.UpsertPosts(ctx, bundle.Posts); err != nil {
		s.logger.Warn("persist posts failed", zap.String("page_id", pageID), zap.Error(err))
	}
	if err := s.store.UpsertComments(ctx, bundle.Comments); err != nil {
		s.logger.Warn("persist comments failed", zap.String("page_id", pageID), zap.Error(err))
	}
	if err := s.store.UpsertEmployees(ctx, bundle.Employees); err != nil {
		s.logger.Warn("persist employees failed", zap.String("page_id", pageID), zap.Error(err))
	}

	s.publishEvent(ctx, bundle, start)
	return bundle.Page, nil
}

func (s *PageService) publishEvent(ctx context.Context, bundle insights.Bundle, start time.Time) {
	if s.publisher == nil {
		return
	}
	event := insights.ScrapeEvent{
		EventID:    uuid.NewString(),
		PageID:     bundle.Page.PageID,
		Posts:      len(bundle.Posts),
		Comments:   len(bundle.Comments),
		Employees:  len(bundle.Employees),
		Headless:   bundle.UsedHeadless,
		DurationMs: s.clock.Now().Sub(start).Milliseconds(),
		ScrapedAt:  bundle.Page.ScrapedAt,
	}
	if _, err := s.publisher.Publish(ctx, s.cfg.EventsTopic, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("page_id", event.PageID), zap.Error(err))
	}
}

func (s *PageService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		telemetry.ObserveCacheOp("set", "error")
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	telemetry.ObserveCacheOp("set", "ok")
}

func summaryCacheID(pageID string, includePosts, includeEmployees bool) string {
	postsPart := "no_posts"
	if includePosts {
		postsPart = "posts"
	}
	empPart := "no_emp"
	if includeEmployees {
		empPart = "emp"
	}
	return fmt.Sprintf("%s:%s:%s", pageID, postsPart, empPart)
}
