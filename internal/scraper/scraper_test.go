package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Akshatb2006/Linkedin-Insights/internal/authwall"
	"github.com/Akshatb2006/Linkedin-Insights/internal/extractor"
	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
	"github.com/Akshatb2006/Linkedin-Insights/internal/snapshot/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeFetcher struct {
	responses map[string]insights.FetchResponse
	err       error
	headless  bool
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, request insights.FetchRequest) (insights.FetchResponse, error) {
	f.calls = append(f.calls, request.URL)
	if f.err != nil {
		return insights.FetchResponse{}, f.err
	}
	resp, ok := f.responses[request.URL]
	if !ok {
		return insights.FetchResponse{}, fmt.Errorf("no response for %s", request.URL)
	}
	resp.URL = request.URL
	resp.UsedHeadless = f.headless
	return resp, nil
}

const aboutHTML = `<html><body>
<h1 class="org-top-card-summary__title">Acme Robotics</h1>
<div class="org-top-card-summary-info-list__info-item">12,345 followers</div>
<dl><dt>Industry</dt><dd>Robotics</dd></dl>
</body></html>`

const postsHTML = `<html><body>
<div class="feed-shared-update-v2">
  <div class="feed-shared-update-v2__description">Launch day!</div>
</div>
</body></html>`

const peopleHTML = `<html><body>
<div class="org-people-profile-card">
  <div class="org-people-profile-card__profile-title">Alice Schmidt</div>
</div>
</body></html>`

const loginWallHTML = `<html><body>
<p>Sign in to continue</p>
<form><input name="session_key"/></form>
</body></html>`

func ok(body string) insights.FetchResponse {
	return insights.FetchResponse{StatusCode: http.StatusOK, Body: []byte(body)}
}

func companyURLs(pageID string) (about, posts, people string) {
	about = fmt.Sprintf("%s/%s/about/", insights.CompanyBaseURL, pageID)
	posts = fmt.Sprintf("%s/%s/posts/", insights.CompanyBaseURL, pageID)
	people = fmt.Sprintf("%s/%s/people/", insights.CompanyBaseURL, pageID)
	return about, posts, people
}

func newPipeline(probe, headless insights.Fetcher, snapshots insights.SnapshotStore) *Pipeline {
	clock := fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New(
		probe,
		headless,
		authwall.NewHeuristic(0),
		extractor.New(clock),
		snapshots,
		clock,
		zap.NewNop(),
		Config{},
	)
}

func TestScrapeAllSuccess(t *testing.T) {
	t.Parallel()

	about, posts, people := companyURLs("acme-robotics")
	probe := &fakeFetcher{responses: map[string]insights.FetchResponse{
		about:  ok(aboutHTML),
		posts:  ok(postsHTML),
		people: ok(peopleHTML),
	}}
	snapshots := memory.New()

	bundle, err := newPipeline(probe, nil, snapshots).ScrapeAll(context.Background(), "acme-robotics")
	require.NoError(t, err)

	require.Equal(t, "Acme Robotics", bundle.Page.Name)
	require.Equal(t, 12345, bundle.Page.FollowerCount)
	require.Len(t, bundle.Posts, 1)
	require.Equal(t, "Launch day!", bundle.Posts[0].Content)
	require.Len(t, bundle.Employees, 1)
	require.Equal(t, "Alice Schmidt", bundle.Employees[0].Name)
	require.Equal(t, 3, snapshots.Len())
}

func TestScrapeAllLoginWall(t *testing.T) {
	t.Parallel()

	about, _, _ := companyURLs("acme-robotics")
	probe := &fakeFetcher{responses: map[string]insights.FetchResponse{
		about: ok(loginWallHTML),
	}}

	_, err := newPipeline(probe, nil, nil).ScrapeAll(context.Background(), "acme-robotics")
	require.Error(t, err)
	require.True(t, insights.IsLoginWall(err))
	require.False(t, insights.IsRetryable(err))
}

func TestScrapeAllRejectsInvalidName(t *testing.T) {
	t.Parallel()

	probe := &fakeFetcher{}
	_, err := newPipeline(probe, nil, nil).ScrapeAll(context.Background(), "sign in")
	require.Error(t, err)
	require.False(t, insights.IsLoginWall(err))
	require.Empty(t, probe.calls)
}

func TestScrapeAllPromotesToHeadless(t *testing.T) {
	t.Parallel()

	about, posts, people := companyURLs("acme-robotics")
	// LinkedIn answers unauthenticated bots with status 999.
	probe := &fakeFetcher{responses: map[string]insights.FetchResponse{
		about:  {StatusCode: 999, Body: []byte("denied")},
		posts:  {StatusCode: 999, Body: []byte("denied")},
		people: {StatusCode: 999, Body: []byte("denied")},
	}}
	headless := &fakeFetcher{headless: true, responses: map[string]insights.FetchResponse{
		about:  ok(aboutHTML),
		posts:  ok(postsHTML),
		people: ok(peopleHTML),
	}}

	bundle, err := newPipeline(probe, headless, nil).ScrapeAll(context.Background(), "acme-robotics")
	require.NoError(t, err)
	require.Equal(t, "Acme Robotics", bundle.Page.Name)
	require.True(t, bundle.UsedHeadless)
	require.Len(t, headless.calls, 3)
}

func TestScrapeAllFetchFailureIsRetryable(t *testing.T) {
	t.Parallel()

	probe := &fakeFetcher{err: errors.New("connection refused")}
	_, err := newPipeline(probe, nil, nil).ScrapeAll(context.Background(), "acme-robotics")
	require.Error(t, err)
	require.True(t, insights.IsRetryable(err))
	require.False(t, insights.IsLoginWall(err))
}

func TestScrapeAllPostsFailureDegrades(t *testing.T) {
	t.Parallel()

	about, _, people := companyURLs("acme-robotics")
	probe := &fakeFetcher{responses: map[string]insights.FetchResponse{
		about:  ok(aboutHTML),
		people: ok(peopleHTML),
	}}

	bundle, err := newPipeline(probe, nil, nil).ScrapeAll(context.Background(), "acme-robotics")
	require.NoError(t, err)
	require.Empty(t, bundle.Posts)
	require.Len(t, bundle.Employees, 1)
}
