// Package insights defines core types shared across subsystems.
package insights

import (
	"net/http"
	"time"
)

// CompanyBaseURL is the root under which company pages live.
const CompanyBaseURL = "https://www.linkedin.com/company"

// Page holds the profile metadata for one company page.
// PageID is the vanity slug from the page URL and is the natural key.
type Page struct {
	PageID            string    `json:"page_id"`
	LinkedInID        string    `json:"linkedin_id,omitempty"`
	Name              string    `json:"name"`
	URL               string    `json:"url"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	Description       string    `json:"description,omitempty"`
	Website           string    `json:"website,omitempty"`
	Industry          string    `json:"industry,omitempty"`
	FollowerCount     int       `json:"follower_count"`
	Headcount         string    `json:"headcount,omitempty"`
	Specialities      []string  `json:"specialities"`
	Founded           string    `json:"founded,omitempty"`
	Headquarters      string    `json:"headquarters,omitempty"`
	CompanyType       string    `json:"company_type,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	ScrapedAt         time.Time `json:"scraped_at"`
}

// Post is one feed update published by a company page.
type Post struct {
	PostID       string     `json:"post_id"`
	PageID       string     `json:"page_id"`
	Content      string     `json:"content,omitempty"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	ShareCount   int        `json:"share_count"`
	MediaURL     string     `json:"media_url,omitempty"`
	MediaType    string     `json:"media_type,omitempty"`
	PostURL      string     `json:"post_url,omitempty"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
	ScrapedAt    time.Time  `json:"scraped_at"`
}

// Comment is a reply left under a post.
type Comment struct {
	CommentID        string     `json:"comment_id"`
	PostID           string     `json:"post_id"`
	PageID           string     `json:"page_id"`
	AuthorName       string     `json:"author_name"`
	AuthorProfileURL string     `json:"author_profile_url,omitempty"`
	AuthorHeadline   string     `json:"author_headline,omitempty"`
	Content          string     `json:"content"`
	LikeCount        int        `json:"like_count"`
	CommentedAt      *time.Time `json:"commented_at,omitempty"`
	ScrapedAt        time.Time  `json:"scraped_at"`
}

// Employee is one person card from a company's people listing.
// There is no site-side identifier; (page_id, profile_url) de-duplicates.
type Employee struct {
	ID                int64     `json:"id,omitempty"`
	PageID            string    `json:"page_id"`
	Name              string    `json:"name"`
	Designation       string    `json:"designation,omitempty"`
	Location          string    `json:"location,omitempty"`
	ProfileURL        string    `json:"profile_url,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	ScrapedAt         time.Time `json:"scraped_at"`
}

// Bundle is everything one full scrape of a company produces.
type Bundle struct {
	Page         Page       `json:"page"`
	Posts        []Post     `json:"posts"`
	Comments     []Comment  `json:"comments"`
	Employees    []Employee `json:"employees"`
	UsedHeadless bool       `json:"used_headless"`
}

// PageQuery filters a database-only page search.
type PageQuery struct {
	Name         string
	Industry     string
	MinFollowers *int
	MaxFollowers *int
}

// PageList is one page of search results plus the unpaginated total.
type PageList struct {
	Pages []Page
	Total int
}

// Source records where a served page came from.
type Source string

// Source values reported to API clients.
const (
	SourceCache    Source = "cache"
	SourceDatabase Source = "database"
	SourceScraped  Source = "scraped"
)

// FetchRequest captures everything needed to fetch one document.
type FetchRequest struct {
	URL     string
	Headers http.Header
	// Scrolls forces lazy-loaded feed content to render; only the
	// headless fetcher honors it.
	Scrolls int
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// Summary is the AI-generated analysis of a company page.
type Summary struct {
	ExecutiveSummary   string   `json:"executive_summary"`
	CompanyProfile     string   `json:"company_profile"`
	EngagementAnalysis string   `json:"engagement_analysis"`
	AudienceInsights   string   `json:"audience_insights"`
	Recommendations    []string `json:"recommendations"`
	GeneratedBy        string   `json:"generated_by"`
}

// ScrapeEvent is published after a company page is persisted.
type ScrapeEvent struct {
	EventID    string    `json:"event_id"`
	PageID     string    `json:"page_id"`
	Posts      int       `json:"posts"`
	Comments   int       `json:"comments"`
	Employees  int       `json:"employees"`
	Headless   bool      `json:"used_headless"`
	DurationMs int64     `json:"duration_ms"`
	ScrapedAt  time.Time `json:"scraped_at"`
}
