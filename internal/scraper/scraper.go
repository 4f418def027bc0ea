// Package scraper runs the fetch-validate-extract pipeline for company pages.
package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Akshatb2006/Linkedin-Insights/internal/authwall"
	"github.com/Akshatb2006/Linkedin-Insights/internal/extractor"
	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
	"github.com/Akshatb2006/Linkedin-Insights/internal/telemetry"
)

// Config tunes one pipeline instance.
type Config struct {
	// Timeout bounds one full ScrapeAll run.
	Timeout time.Duration
	// PostsLimit caps extracted posts per scrape.
	PostsLimit int
	// CommentsLimit caps extracted comments per scrape.
	CommentsLimit int
	// EmployeesLimit caps extracted employee cards per scrape.
	EmployeesLimit int
	// Scrolls is passed to the headless fetcher to render lazy feeds.
	Scrolls int
	// SnapshotPrefix is prepended to every snapshot object path.
	SnapshotPrefix string
}

// Pipeline implements insights.Scraper. The probe fetcher runs first;
// the guard decides when the page needs a real browser.
type Pipeline struct {
	probe     insights.Fetcher
	headless  insights.Fetcher
	guard     *authwall.Heuristic
	extract   *extractor.Extractor
	snapshots insights.SnapshotStore
	clock     insights.Clock
	logger    *zap.Logger
	cfg       Config
}

// New assembles a Pipeline. headless and snapshots may be nil; the
// pipeline then serves static fetches only and skips snapshot writes.
func New(
	probe insights.Fetcher,
	headless insights.Fetcher,
	guard *authwall.Heuristic,
	extract *extractor.Extractor,
	snapshots insights.SnapshotStore,
	clock insights.Clock,
	logger *zap.Logger,
	cfg Config,
) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PostsLimit <= 0 {
		cfg.PostsLimit = 20
	}
	if cfg.CommentsLimit <= 0 {
		cfg.CommentsLimit = 50
	}
	if cfg.EmployeesLimit <= 0 {
		cfg.EmployeesLimit = 20
	}
	telemetry.Init()
	return &Pipeline{
		probe:     probe,
		headless:  headless,
		guard:     guard,
		extract:   extract,
		snapshots: snapshots,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
	}
}

// ScrapeAll fetches a company's about, posts, and people documents and
// extracts everything into one Bundle. Only the about document is
// mandatory; posts and people failures degrade to empty slices.
func (p *Pipeline) ScrapeAll(ctx context.Context, pageID string) (insights.Bundle, error) {
	start := p.clock.Now()
	outcome := "error"
	usedHeadless := false
	defer func() {
		telemetry.ObserveScrape(outcome, usedHeadless, p.clock.Now().Sub(start))
	}()

	if !p.guard.IsValidCompanyName(pageID) {
		outcome = "invalid"
		return insights.Bundle{}, &insights.ScrapeError{
			PageID:  pageID,
			Message: fmt.Sprintf("invalid company identifier %q", pageID),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	aboutURL := fmt.Sprintf("%s/%s/about/", insights.CompanyBaseURL, pageID)
	about, err := p.fetchDocument(ctx, aboutURL, 0)
	if err != nil {
		return insights.Bundle{}, insights.NewScrapeError(pageID, "fetch about page", err)
	}
	usedHeadless = about.UsedHeadless

	if p.guard.IsLoginWall(about.Body) {
		outcome = "login_wall"
		telemetry.ObserveLoginWall()
		p.logger.Warn("login wall detected", zap.String("page_id", pageID))
		return insights.Bundle{}, insights.NewLoginWallError(pageID)
	}

	page, err := p.extract.Page(about.Body, pageID, about.URL)
	if err != nil {
		return insights.Bundle{}, insights.NewScrapeError(pageID, "extract page", err)
	}
	if page.Name == "" || !p.guard.IsValidCompanyName(page.Name) {
		outcome = "login_wall"
		telemetry.ObserveLoginWall()
		return insights.Bundle{}, insights.NewLoginWallError(pageID)
	}
	p.writeSnapshot(ctx, pageID, "about.html", about.Body)

	bundle := insights.Bundle{Page: page}

	postsURL := fmt.Sprintf("%s/%s/posts/", insights.CompanyBaseURL, pageID)
	if doc, err := p.fetchDocument(ctx, postsURL, p.cfg.Scrolls); err != nil {
		p.logger.Warn("posts fetch failed", zap.String("page_id", pageID), zap.Error(err))
	} else if p.guard.IsLoginWall(doc.Body) {
		p.logger.Warn("posts page behind login wall", zap.String("page_id", pageID))
	} else {
		usedHeadless = usedHeadless || doc.UsedHeadless
		bundle.Posts, err = p.extract.Posts(doc.Body, pageID, p.cfg.PostsLimit)
		if err != nil {
			p.logger.Warn("posts extraction failed", zap.String("page_id", pageID), zap.Error(err))
		}
		bundle.Comments, err = p.extract.Comments(doc.Body, pageID, p.cfg.CommentsLimit)
		if err != nil {
			p.logger.Warn("comments extraction failed", zap.String("page_id", pageID), zap.Error(err))
		}
		p.writeSnapshot(ctx, pageID, "posts.html", doc.Body)
	}

	peopleURL := fmt.Sprintf("%s/%s/people/", insights.CompanyBaseURL, pageID)
	if doc, err := p.fetchDocument(ctx, peopleURL, 0); err != nil {
		p.logger.Warn("people fetch failed", zap.String("page_id", pageID), zap.Error(err))
	} else if p.guard.IsLoginWall(doc.Body) {
		p.logger.Warn("people page behind login wall", zap.String("page_id", pageID))
	} else {
		usedHeadless = usedHeadless || doc.UsedHeadless
		bundle.Employees, err = p.extract.Employees(doc.Body, pageID, p.cfg.EmployeesLimit)
		if err != nil {
			p.logger.Warn("employees extraction failed", zap.String("page_id", pageID), zap.Error(err))
		}
		p.writeSnapshot(ctx, pageID, "people.html", doc.Body)
	}

	bundle.UsedHeadless = usedHeadless
	outcome = "success"
	p.logger.Info("scrape complete",
		zap.String("page_id", pageID),
		zap.Int("posts", len(bundle.Posts)),
		zap.Int("comments", len(bundle.Comments)),
		zap.Int("employees", len(bundle.Employees)),
		zap.Bool("headless", usedHeadless),
	)
	return bundle, nil
}

// fetchDocument probes with the static fetcher and promotes to the
// headless fetcher when the guard judges the probe result unusable.
func (p *Pipeline) fetchDocument(ctx context.Context, url string, scrolls int) (insights.FetchResponse, error) {
	request := insights.FetchRequest{URL: url, Scrolls: scrolls}

	probe, probeErr := p.probe.Fetch(ctx, request)
	if probeErr == nil && !p.guard.ShouldPromote(probe) {
		return probe, nil
	}
	if p.headless == nil {
		if probeErr != nil {
			return insights.FetchResponse{}, probeErr
		}
		// No browser available; the probe result is all we have.
		return probe, nil
	}

	telemetry.ObserveHeadlessPromotion()
	p.logger.Debug("promoting to headless fetch", zap.String("url", url))
	response, err := p.headless.Fetch(ctx, request)
	if err != nil {
		if probeErr == nil {
			return probe, nil
		}
		return insights.FetchResponse{}, fmt.Errorf("headless fetch after failed probe: %w", err)
	}
	return response, nil
}

func (p *Pipeline) writeSnapshot(ctx context.Context, pageID, name string, body []byte) {
	if p.snapshots == nil || len(body) == 0 {
		return
	}
	path := fmt.Sprintf("%s/%s/%s", pageID, p.clock.Now().UTC().Format("20060102T150405Z"), name)
	if p.cfg.SnapshotPrefix != "" {
		path = p.cfg.SnapshotPrefix + "/" + path
	}
	uri, err := p.snapshots.PutObject(ctx, path, "text/html", body)
	if err != nil {
		p.logger.Warn("snapshot write failed", zap.String("page_id", pageID), zap.Error(err))
		return
	}
	p.logger.Debug("snapshot stored", zap.String("uri", uri))
}
