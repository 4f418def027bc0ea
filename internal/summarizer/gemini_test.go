package summarizer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	page := insights.Page{
		Name:          "Acme Robotics",
		Industry:      "Robotics",
		FollowerCount: 12345,
		Headquarters:  "Berlin, Germany",
		Specialities:  []string{"Robotics", "Automation"},
		Description:   "We build robots.",
	}
	posts := []insights.Post{
		{Content: "Launch day!", LikeCount: 100, CommentCount: 10, ShareCount: 5},
	}
	employees := []insights.Employee{
		{Name: "Alice Schmidt", Designation: "Robotics Engineer"},
	}

	prompt := BuildPrompt(page, posts, employees)

	require.Contains(t, prompt, "Company: Acme Robotics")
	require.Contains(t, prompt, "Industry: Robotics")
	require.Contains(t, prompt, "Follower Count: 12345")
	require.Contains(t, prompt, "Specialities: Robotics, Automation")
	require.Contains(t, prompt, "Recent Posts:")
	require.Contains(t, prompt, "Likes: 100, Comments: 10, Shares: 5")
	require.Contains(t, prompt, "Key Employees:")
	require.Contains(t, prompt, "Alice Schmidt: Robotics Engineer")
	require.Contains(t, prompt, "Respond ONLY with the JSON object")
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(insights.Page{Name: "Bare Inc"}, nil, nil)
	require.NotContains(t, prompt, "Recent Posts:")
	require.NotContains(t, prompt, "Key Employees:")
	require.Contains(t, prompt, "Company Type: Unknown")
	require.Contains(t, prompt, "Description: Not available")
}

func TestBuildPromptCapsPosts(t *testing.T) {
	t.Parallel()

	posts := make([]insights.Post, 10)
	for i := range posts {
		posts[i] = insights.Post{Content: "post"}
	}
	prompt := BuildPrompt(insights.Page{Name: "Acme"}, posts, nil)

	require.Equal(t, maxPromptPosts, strings.Count(prompt, "- Content:"))
}

func TestParseResponsePlainJSON(t *testing.T) {
	t.Parallel()

	summary := ParseResponse(`{
		"executive_summary": "Strong presence.",
		"company_profile": "Mid-size robotics firm.",
		"engagement_analysis": "Good engagement.",
		"audience_insights": "Engineers.",
		"recommendations": ["Post more", "Use video"]
	}`)

	require.Equal(t, "Strong presence.", summary.ExecutiveSummary)
	require.Equal(t, "Mid-size robotics firm.", summary.CompanyProfile)
	require.Equal(t, []string{"Post more", "Use video"}, summary.Recommendations)
}

func TestParseResponseStripsFences(t *testing.T) {
	t.Parallel()

	summary := ParseResponse("```json\n{\"executive_summary\": \"Fenced.\"}\n```")
	require.Equal(t, "Fenced.", summary.ExecutiveSummary)
	require.Equal(t, "Profile not available", summary.CompanyProfile)
}

func TestParseResponseDegradesGracefully(t *testing.T) {
	t.Parallel()

	summary := ParseResponse("The model refused to emit JSON today.")
	require.Equal(t, "The model refused to emit JSON today.", summary.ExecutiveSummary)
	require.Equal(t, "Analysis not available", summary.EngagementAnalysis)
	require.Empty(t, summary.Recommendations)
}

func TestDisabledSummarizer(t *testing.T) {
	t.Parallel()

	var s insights.Summarizer = Disabled{}
	require.False(t, s.Available())
	require.Empty(t, s.Model())

	_, err := s.Summarize(context.Background(), insights.Page{}, nil, nil)
	require.ErrorIs(t, err, insights.ErrSummarizerDisabled)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewGemini(context.Background(), "", "gemini-1.5-flash", nil)
	require.Error(t, err)
}
