package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

var pageCols = []string{
	"page_id", "linkedin_id", "name", "url", "profile_picture_url", "description",
	"website", "industry", "follower_count", "headcount", "specialities", "founded",
	"headquarters", "company_type", "created_at", "updated_at", "scraped_at",
}

func testPage(now time.Time) insights.Page {
	return insights.Page{
		PageID:        "acme-robotics",
		LinkedInID:    "4711",
		Name:          "Acme Robotics",
		URL:           "https://www.linkedin.com/company/acme-robotics/",
		Industry:      "Robotics",
		FollowerCount: 12345,
		Specialities:  []string{"Robotics", "Automation"},
		CreatedAt:     now,
		UpdatedAt:     now,
		ScrapedAt:     now,
	}
}

func pageRow(p insights.Page) *pgxmock.Rows {
	return pgxmock.NewRows(pageCols).AddRow(
		p.PageID, p.LinkedInID, p.Name, p.URL, p.ProfilePictureURL, p.Description,
		p.Website, p.Industry, p.FollowerCount, p.Headcount, p.Specialities, p.Founded,
		p.Headquarters, p.CompanyType, p.CreatedAt, p.UpdatedAt, p.ScrapedAt,
	)
}

func TestUpsertPage(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	page := testPage(now)

	mock.ExpectExec("INSERT INTO pages").
		WithArgs(
			page.PageID, page.LinkedInID, page.Name, page.URL,
			page.ProfilePictureURL, page.Description, page.Website, page.Industry,
			page.FollowerCount, page.Headcount, page.Specialities, page.Founded,
			page.Headquarters, page.CompanyType, page.CreatedAt, page.UpdatedAt, page.ScrapedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.UpsertPage(context.Background(), page))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPageRequiresID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	err = store.UpsertPage(context.Background(), insights.Page{})
	require.Error(t, err)
}

func TestGetPage(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	want := testPage(now)

	mock.ExpectQuery("SELECT (.+) FROM pages WHERE page_id").
		WithArgs("acme-robotics").
		WillReturnRows(pageRow(want))

	got, err := store.GetPage(context.Background(), "acme-robotics")
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPageNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM pages WHERE page_id").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetPage(context.Background(), "ghost")
	require.ErrorIs(t, err, insights.ErrNotFound)
}

func TestSearchPagesWithFilters(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	want := testPage(now)
	minFollowers := 100

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pages").
		WithArgs("%acme%", 100).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM pages WHERE (.+) ORDER BY created_at DESC").
		WithArgs("%acme%", 100, 10, 0).
		WillReturnRows(pageRow(want))

	list, err := store.SearchPages(context.Background(), insights.PageQuery{
		Name:         "acme",
		MinFollowers: &minFollowers,
	}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	require.Len(t, list.Pages, 1)
	require.Equal(t, want, list.Pages[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPosts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	post := insights.Post{
		PostID:    "acme-robotics_abc123def456",
		PageID:    "acme-robotics",
		Content:   "Launch day!",
		LikeCount: 10,
		ScrapedAt: now,
	}

	mock.ExpectExec("INSERT INTO posts").
		WithArgs(
			post.PostID, post.PageID, post.Content,
			post.LikeCount, post.CommentCount, post.ShareCount,
			post.MediaURL, post.MediaType, post.PostURL,
			post.PostedAt, post.ScrapedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.UpsertPosts(context.Background(), []insights.Post{post}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPosts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM posts").
		WithArgs("acme-robotics").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery("SELECT (.+) FROM posts").
		WithArgs("acme-robotics", 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"post_id", "page_id", "content", "like_count", "comment_count",
			"share_count", "media_url", "media_type", "post_url", "posted_at", "scraped_at",
		}).AddRow(
			"acme-robotics_abc123def456", "acme-robotics", "Launch day!",
			10, 2, 1, "", "", "", (*time.Time)(nil), now,
		))

	posts, total, err := store.ListPosts(context.Background(), "acme-robotics", 0, 10)
	require.NoError(t, err)
	require.Equal(t, 25, total)
	require.Len(t, posts, 1)
	require.Equal(t, "Launch day!", posts[0].Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePage(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM pages").
		WithArgs("acme-robotics").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM pages").
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := store.DeletePage(context.Background(), "acme-robotics")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = store.DeletePage(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStoreWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewStoreWithPool(nil)
	require.Error(t, err)
}
