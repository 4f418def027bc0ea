// Package extractor converts rendered company-page HTML into domain records.
package extractor

import (
	"bytes"
	"crypto/md5" //nolint:gosec // natural-key fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

// Selector sets are ordered from the current page markup to older
// fallbacks; the first match wins. All of them break when the site
// reshuffles its markup, which is expected.
var (
	nameSelectors = []string{
		"h1.org-top-card-summary__title",
		"h1[class*='org-top-card']",
		"span.org-top-card-summary__title",
		"h1",
	}
	logoSelectors = []string{
		"img.org-top-card-primary-content__logo",
		"img[class*='org-top-card']",
		".org-top-card-primary-content__logo img",
		"img.EntityPhoto-square-5",
	}
	descriptionSelectors = []string{
		"p.org-about-us-organization-description__text",
		".org-about-us-organization-description__text",
		"section.org-about-module p",
		".org-page-details-module__card-spacing p",
	}
	followerSelectors = []string{
		".org-top-card-summary-info-list__info-item",
		"span[class*='followers']",
		".org-top-card-primary-actions__followers",
	}
	postContainerSelector = ".feed-shared-update-v2, .occludable-update"
	postContentSelector   = ".feed-shared-update-v2__description, .feed-shared-text, .update-components-text"
	employeeCardSelector  = ".org-people-profile-card, .artdeco-entity-lockup, .org-people-profiles-module__profile-list li"
	commentItemSelector   = ".comments-comment-item, .comments-comment-entity"
)

var linkedinIDPattern = regexp.MustCompile(`/company/(\d+)`)

const maxPostContentLen = 2000

// Extractor parses validated HTML into page, post, comment, and
// employee field sets.
type Extractor struct {
	clock insights.Clock
}

// New creates an Extractor stamping records with the given clock.
func New(clock insights.Clock) *Extractor {
	return &Extractor{clock: clock}
}

// Page parses the about document into a Page. The company name is the
// only required field; everything else is best effort.
func (e *Extractor) Page(body []byte, pageID, finalURL string) (insights.Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return insights.Page{}, fmt.Errorf("parse about document: %w", err)
	}

	now := e.clock.Now()
	page := insights.Page{
		PageID:            pageID,
		Name:              firstText(doc, nameSelectors),
		URL:               fmt.Sprintf("%s/%s/", insights.CompanyBaseURL, pageID),
		LinkedInID:        extractLinkedInID(finalURL),
		ProfilePictureURL: firstAttr(doc, logoSelectors, "src"),
		Description:       firstText(doc, descriptionSelectors),
		Website:           extractWebsite(doc),
		Industry:          detailField(doc, "industry"),
		FollowerCount:     extractFollowerCount(doc),
		Headcount:         detailFieldAny(doc, "company size", "employees"),
		Specialities:      extractSpecialities(doc),
		Founded:           detailField(doc, "founded"),
		Headquarters:      detailFieldAny(doc, "headquarters", "location"),
		CompanyType:       detailField(doc, "type"),
		CreatedAt:         now,
		UpdatedAt:         now,
		ScrapedAt:         now,
	}
	return page, nil
}

// Posts parses the posts feed document. Containers without text content
// are skipped; at most limit posts are returned.
func (e *Extractor) Posts(body []byte, pageID string, limit int) ([]insights.Post, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse posts document: %w", err)
	}

	now := e.clock.Now()
	var posts []insights.Post
	doc.Find(postContainerSelector).EachWithBreak(func(i int, container *goquery.Selection) bool {
		if limit > 0 && len(posts) >= limit {
			return false
		}
		content := cleanText(container.Find(postContentSelector).First().Text())
		if content == "" {
			return true
		}
		content = truncate(content, maxPostContentLen)

		post := insights.Post{
			PostID:    PostID(pageID, content, i),
			PageID:    pageID,
			Content:   content,
			ScrapedAt: now,
		}
		post.LikeCount, post.CommentCount, post.ShareCount = extractEngagement(container)
		post.MediaURL, post.MediaType = extractMedia(container)

		posts = append(posts, post)
		return true
	})
	return posts, nil
}

// Comments parses comment items nested under post containers. The feed
// rarely renders comments without interaction, so an empty result is
// the common case.
func (e *Extractor) Comments(body []byte, pageID string, limit int) ([]insights.Comment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse comments document: %w", err)
	}

	now := e.clock.Now()
	var comments []insights.Comment
	doc.Find(postContainerSelector).Each(func(postIdx int, container *goquery.Selection) {
		content := cleanText(container.Find(postContentSelector).First().Text())
		if content == "" {
			return
		}
		postID := PostID(pageID, truncate(content, maxPostContentLen), postIdx)

		container.Find(commentItemSelector).Each(func(i int, item *goquery.Selection) {
			if limit > 0 && len(comments) >= limit {
				return
			}
			author := cleanText(item.Find(".comments-post-meta__name-text, .comments-comment-meta__description-title").First().Text())
			text := cleanText(item.Find(".comments-comment-item__main-content, .comments-comment-entity__content").First().Text())
			if author == "" || text == "" {
				return
			}
			comment := insights.Comment{
				CommentID:  CommentID(postID, author, text, i),
				PostID:     postID,
				PageID:     pageID,
				AuthorName: author,
				Content:    text,
				ScrapedAt:  now,
			}
			if href, ok := item.Find("a[href*='/in/']").First().Attr("href"); ok {
				comment.AuthorProfileURL = absoluteProfileURL(href)
			}
			comment.AuthorHeadline = cleanText(item.Find(".comments-post-meta__headline, .comments-comment-meta__description-subtitle").First().Text())
			comment.LikeCount = parseEngagementCount(item.Find(".comments-comment-social-bar__reactions-count").First().Text())
			comments = append(comments, comment)
		})
	})
	return comments, nil
}

// Employees parses the people document into employee cards. Cards
// without a name are skipped.
func (e *Extractor) Employees(body []byte, pageID string, limit int) ([]insights.Employee, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse people document: %w", err)
	}

	now := e.clock.Now()
	var employees []insights.Employee
	seen := make(map[string]bool)
	doc.Find(employeeCardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if limit > 0 && len(employees) >= limit {
			return false
		}
		name := cleanText(card.Find(".org-people-profile-card__profile-title, .artdeco-entity-lockup__title, .lt-line-clamp--single-line").First().Text())
		if name == "" {
			return true
		}

		emp := insights.Employee{
			PageID:      pageID,
			Name:        name,
			Designation: cleanText(card.Find(".artdeco-entity-lockup__subtitle, .org-people-profile-card__profile-info, .t-14").First().Text()),
			Location:    cleanText(card.Find(".artdeco-entity-lockup__caption, .org-people-profile-card__location").First().Text()),
			ScrapedAt:   now,
		}
		if href, ok := card.Find("a[href*='/in/']").First().Attr("href"); ok {
			emp.ProfileURL = absoluteProfileURL(href)
		}
		if src, ok := card.Find("img.EntityPhoto-circle-5, img[class*='profile']").First().Attr("src"); ok {
			emp.ProfilePictureURL = src
		}

		// The card selectors overlap; nested matches produce duplicates.
		key := emp.ProfileURL
		if key == "" {
			key = emp.Name
		}
		if seen[key] {
			return true
		}
		seen[key] = true

		employees = append(employees, emp)
		return true
	})
	return employees, nil
}

// PostID derives a stable post identifier from the page, a content
// prefix, and the feed position.
func PostID(pageID, content string, index int) string {
	digest := md5.Sum([]byte(fmt.Sprintf("%s_%s_%d", pageID, truncate(content, 100), index))) //nolint:gosec
	return fmt.Sprintf("%s_%s", pageID, hex.EncodeToString(digest[:])[:12])
}

// CommentID derives a stable comment identifier scoped to its post.
func CommentID(postID, author, content string, index int) string {
	digest := md5.Sum([]byte(fmt.Sprintf("%s_%s_%s_%d", postID, author, truncate(content, 50), index))) //nolint:gosec
	return fmt.Sprintf("%s_c%s", postID, hex.EncodeToString(digest[:])[:8])
}

func extractLinkedInID(finalURL string) string {
	if m := linkedinIDPattern.FindStringSubmatch(finalURL); m != nil {
		return m[1]
	}
	return ""
}

func extractWebsite(doc *goquery.Document) string {
	website := cleanText(doc.Find("a[data-test-id='about-us__website'] span").First().Text())
	if website != "" {
		return website
	}
	var found string
	doc.Find(".org-about-us-company-module__website a, a[target='_blank']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := cleanText(a.Text())
		href, _ := a.Attr("href")
		if text != "" && (strings.Contains(text, "http") || strings.Contains(text, "www") || strings.Contains(text, ".com")) {
			found = text
			return false
		}
		if href != "" && !strings.Contains(href, "linkedin.com") && strings.HasPrefix(href, "http") {
			found = href
			return false
		}
		return true
	})
	return found
}

// detailField walks the dt/dd pairs of the about module and returns the
// dd text for the first dt whose label contains the needle.
func detailField(doc *goquery.Document, needle string) string {
	return detailFieldAny(doc, needle)
}

func detailFieldAny(doc *goquery.Document, needles ...string) string {
	var value string
	doc.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		label := strings.ToLower(cleanText(dt.Text()))
		for _, needle := range needles {
			if strings.Contains(label, needle) {
				value = cleanText(dt.NextFiltered("dd").Text())
				return false
			}
		}
		return true
	})
	return value
}

func extractSpecialities(doc *goquery.Document) []string {
	raw := detailField(doc, "specialit")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func extractFollowerCount(doc *goquery.Document) int {
	count := 0
	for _, selector := range followerSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.ToLower(cleanText(s.Text()))
			if strings.Contains(text, "follower") {
				count = parseFollowerCount(text)
				return false
			}
			return true
		})
		if count > 0 {
			return count
		}
	}
	return count
}

func extractEngagement(container *goquery.Selection) (likes, comments, shares int) {
	container.Find(".social-details-social-counts span").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(cleanText(s.Text()))
		count := parseEngagementCount(text)
		switch {
		case strings.Contains(text, "like"), strings.Contains(text, "reaction"):
			likes = count
		case strings.Contains(text, "comment"):
			comments = count
		case strings.Contains(text, "share"), strings.Contains(text, "repost"):
			shares = count
		}
	})
	return likes, comments, shares
}

func extractMedia(container *goquery.Selection) (url, mediaType string) {
	if img := container.Find(".feed-shared-image img, .update-components-image img").First(); img.Length() > 0 {
		if src, ok := img.Attr("src"); ok {
			url, mediaType = src, "image"
		}
	}
	if video := container.Find("video, .feed-shared-linkedin-video").First(); video.Length() > 0 {
		src, ok := video.Attr("src")
		if !ok {
			src, ok = video.Attr("data-sources")
		}
		if ok {
			url, mediaType = src, "video"
		}
	}
	return url, mediaType
}

// parseFollowerCount converts "12,345 followers" or "1.2M followers"
// into an integer. Unparseable text yields zero.
func parseFollowerCount(text string) int {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, " followers", "")
	text = strings.ReplaceAll(text, " follower", "")
	text = strings.TrimSpace(text)

	switch {
	case strings.Contains(text, "m"):
		f, err := strconv.ParseFloat(strings.ReplaceAll(text, "m", ""), 64)
		if err != nil {
			return 0
		}
		return int(f * 1_000_000)
	case strings.Contains(text, "k"):
		f, err := strconv.ParseFloat(strings.ReplaceAll(text, "k", ""), 64)
		if err != nil {
			return 0
		}
		return int(f * 1_000)
	default:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0
		}
		return int(f)
	}
}

var engagementPattern = regexp.MustCompile(`([\d.]+)\s*([km])?`)

// parseEngagementCount pulls the leading number (with optional k/m
// suffix) out of an engagement label like "1.2K likes".
func parseEngagementCount(text string) int {
	text = strings.TrimSpace(strings.ReplaceAll(strings.ToLower(text), ",", ""))
	if text == "" {
		return 0
	}
	m := engagementPattern.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return 0
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "k":
		return int(num * 1_000)
	case "m":
		return int(num * 1_000_000)
	default:
		return int(num)
	}
}

func absoluteProfileURL(href string) string {
	href = strings.Split(href, "?")[0]
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.linkedin.com" + href
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := cleanText(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, selector := range selectors {
		if v, ok := doc.Find(selector).First().Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate caps s at n characters, never splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
