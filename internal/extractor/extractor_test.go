package extractor

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testClock = fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

const aboutHTML = `<html><body>
<h1 class="org-top-card-summary__title">Acme Robotics</h1>
<img class="org-top-card-primary-content__logo" src="https://cdn.example.com/logo.png"/>
<div class="org-top-card-summary-info-list__info-item">12,345 followers</div>
<p class="org-about-us-organization-description__text">
  We build robots that build robots.
</p>
<a data-test-id="about-us__website"><span>https://acme.example.com</span></a>
<dl>
  <dt>Industry</dt><dd>Robotics</dd>
  <dt>Company size</dt><dd>201-500 employees</dd>
  <dt>Headquarters</dt><dd>Berlin, Germany</dd>
  <dt>Founded</dt><dd>2012</dd>
  <dt>Type</dt><dd>Privately Held</dd>
  <dt>Specialities</dt><dd>Robotics, Automation, AI</dd>
</dl>
</body></html>`

func TestExtractorPage(t *testing.T) {
	t.Parallel()

	e := New(testClock)
	page, err := e.Page([]byte(aboutHTML), "acme-robotics", "https://www.linkedin.com/company/4711/about/")
	require.NoError(t, err)

	require.Equal(t, "acme-robotics", page.PageID)
	require.Equal(t, "Acme Robotics", page.Name)
	require.Equal(t, "4711", page.LinkedInID)
	require.Equal(t, "https://www.linkedin.com/company/acme-robotics/", page.URL)
	require.Equal(t, "https://cdn.example.com/logo.png", page.ProfilePictureURL)
	require.Equal(t, "We build robots that build robots.", page.Description)
	require.Equal(t, "https://acme.example.com", page.Website)
	require.Equal(t, "Robotics", page.Industry)
	require.Equal(t, 12345, page.FollowerCount)
	require.Equal(t, "201-500 employees", page.Headcount)
	require.Equal(t, "Berlin, Germany", page.Headquarters)
	require.Equal(t, "2012", page.Founded)
	require.Equal(t, "Privately Held", page.CompanyType)
	require.Equal(t, []string{"Robotics", "Automation", "AI"}, page.Specialities)
	require.Equal(t, testClock.now, page.ScrapedAt)
}

func TestExtractorPageMissingFields(t *testing.T) {
	t.Parallel()

	e := New(testClock)
	page, err := e.Page([]byte(`<html><body><h1>Bare Inc</h1></body></html>`), "bare", "https://www.linkedin.com/company/bare/")
	require.NoError(t, err)

	require.Equal(t, "Bare Inc", page.Name)
	require.Empty(t, page.LinkedInID)
	require.Empty(t, page.Industry)
	require.Zero(t, page.FollowerCount)
	require.Nil(t, page.Specialities)
}

const postsHTML = `<html><body>
<div class="feed-shared-update-v2">
  <div class="feed-shared-update-v2__description">Our new arm ships today!</div>
  <div class="social-details-social-counts">
    <span>1.2K likes</span><span>45 comments</span><span>12 reposts</span>
  </div>
  <div class="feed-shared-image"><img src="https://cdn.example.com/arm.jpg"/></div>
</div>
<div class="feed-shared-update-v2">
  <div class="feed-shared-update-v2__description"></div>
</div>
<div class="feed-shared-update-v2">
  <div class="feed-shared-update-v2__description">We are hiring.</div>
</div>
</body></html>`

func TestExtractorPosts(t *testing.T) {
	t.Parallel()

	e := New(testClock)
	posts, err := e.Posts([]byte(postsHTML), "acme-robotics", 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	require.Equal(t, "Our new arm ships today!", first.Content)
	require.Equal(t, 1200, first.LikeCount)
	require.Equal(t, 45, first.CommentCount)
	require.Equal(t, 12, first.ShareCount)
	require.Equal(t, "https://cdn.example.com/arm.jpg", first.MediaURL)
	require.Equal(t, "image", first.MediaType)
	require.Equal(t, PostID("acme-robotics", "Our new arm ships today!", 0), first.PostID)

	require.Equal(t, "We are hiring.", posts[1].Content)
}

func TestExtractorPostsLimit(t *testing.T) {
	t.Parallel()

	e := New(testClock)
	posts, err := e.Posts([]byte(postsHTML), "acme-robotics", 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
}

func TestExtractorPostsTruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// Multibyte characters straddling the cap must not be split into
	// invalid UTF-8.
	content := strings.Repeat("a", 1999) + "é…"
	html := `<html><body><div class="feed-shared-update-v2">
  <div class="feed-shared-update-v2__description">` + content + `</div>
</div></body></html>`

	e := New(testClock)
	posts, err := e.Posts([]byte(html), "acme-robotics", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.True(t, utf8.ValidString(posts[0].Content))
	require.Equal(t, 2000, utf8.RuneCountInString(posts[0].Content))
	require.Equal(t, strings.Repeat("a", 1999)+"é", posts[0].Content)
}

func TestTruncateByRunes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "héllo", truncate("héllo", 10))
	require.Equal(t, "hé", truncate("héllo", 2))
	require.Equal(t, "日本", truncate("日本語", 2))
	require.True(t, utf8.ValidString(truncate("日本語", 2)))
}

const commentsHTML = `<html><body>
<div class="feed-shared-update-v2">
  <div class="feed-shared-update-v2__description">Launch day!</div>
  <div class="comments-comment-item">
    <span class="comments-post-meta__name-text">Jane Doe</span>
    <span class="comments-post-meta__headline">CTO at Example</span>
    <a href="/in/janedoe?trk=feed">profile</a>
    <div class="comments-comment-item__main-content">Congrats to the team!</div>
    <span class="comments-comment-social-bar__reactions-count">8</span>
  </div>
  <div class="comments-comment-item">
    <span class="comments-post-meta__name-text"></span>
    <div class="comments-comment-item__main-content">orphaned</div>
  </div>
</div>
</body></html>`

func TestExtractorComments(t *testing.T) {
	t.Parallel()

	e := New(testClock)
	comments, err := e.Comments([]byte(commentsHTML), "acme-robotics", 10)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	c := comments[0]
	require.Equal(t, "Jane Doe", c.AuthorName)
	require.Equal(t, "CTO at Example", c.AuthorHeadline)
	require.Equal(t, "https://www.linkedin.com/in/janedoe", c.AuthorProfileURL)
	require.Equal(t, "Congrats to the team!", c.Content)
	require.Equal(t, 8, c.LikeCount)
	require.Equal(t, "acme-robotics", c.PageID)

	postID := PostID("acme-robotics", "Launch day!", 0)
	require.Equal(t, postID, c.PostID)
	require.Equal(t, CommentID(postID, "Jane Doe", "Congrats to the team!", 0), c.CommentID)
}

const peopleHTML = `<html><body>
<div class="org-people-profile-card">
  <div class="org-people-profile-card__profile-title">Alice Schmidt</div>
  <div class="t-14">Robotics Engineer</div>
  <a href="https://www.linkedin.com/in/alice-schmidt?miniProfile=x">x</a>
  <img class="EntityPhoto-circle-5" src="https://cdn.example.com/alice.jpg"/>
</div>
<div class="org-people-profile-card">
  <div class="org-people-profile-card__profile-title">Alice Schmidt</div>
  <a href="/in/alice-schmidt">x</a>
</div>
<div class="org-people-profile-card">
  <div class="org-people-profile-card__profile-title">Bob Lee</div>
</div>
</body></html>`

func TestExtractorEmployees(t *testing.T) {
	t.Parallel()

	e := New(testClock)
	employees, err := e.Employees([]byte(peopleHTML), "acme-robotics", 10)
	require.NoError(t, err)
	require.Len(t, employees, 2)

	require.Equal(t, "Alice Schmidt", employees[0].Name)
	require.Equal(t, "Robotics Engineer", employees[0].Designation)
	require.Equal(t, "https://www.linkedin.com/in/alice-schmidt", employees[0].ProfileURL)
	require.Equal(t, "https://cdn.example.com/alice.jpg", employees[0].ProfilePictureURL)
	require.Equal(t, "Bob Lee", employees[1].Name)
}

func TestParseFollowerCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"12,345 followers", 12345},
		{"1.2k followers", 1200},
		{"3M followers", 3_000_000},
		{"1 follower", 1},
		{"no digits here", 0},
		{"", 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, parseFollowerCount(tc.in), "input %q", tc.in)
	}
}

func TestParseEngagementCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"1.2K likes", 1200},
		{"45 comments", 45},
		{"2m reactions", 2_000_000},
		{"1,024", 1024},
		{"like", 0},
		{"", 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, parseEngagementCount(tc.in), "input %q", tc.in)
	}
}

func TestPostIDStability(t *testing.T) {
	t.Parallel()

	a := PostID("acme", "same content", 0)
	b := PostID("acme", "same content", 0)
	c := PostID("acme", "same content", 1)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Contains(t, a, "acme_")
}
