// Package summarizer generates AI analyses of stored company pages.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

const (
	maxPromptPosts     = 5
	maxPromptEmployees = 5
)

// Gemini implements insights.Summarizer on top of the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGemini creates a Gemini-backed summarizer.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize genai client: %w", err)
	}
	return &Gemini{client: client, model: model, logger: logger}, nil
}

// Model reports the configured model name.
func (g *Gemini) Model() string { return g.model }

// Available reports whether the summarizer can serve requests.
func (g *Gemini) Available() bool { return g.client != nil }

// Summarize builds the analysis prompt, calls the model, and parses
// the JSON reply into a Summary.
func (g *Gemini) Summarize(ctx context.Context, page insights.Page, posts []insights.Post, employees []insights.Employee) (insights.Summary, error) {
	if !g.Available() {
		return insights.Summary{}, insights.ErrSummarizerDisabled
	}

	prompt := BuildPrompt(page, posts, employees)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return insights.Summary{}, fmt.Errorf("generate summary: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return insights.Summary{}, fmt.Errorf("no response generated from model %s", g.model)
	}

	summary := ParseResponse(text)
	summary.GeneratedBy = g.model
	return summary, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// BuildPrompt assembles the analysis prompt from stored page data.
// Posts and employees are optional and capped so the prompt stays small.
func BuildPrompt(page insights.Page, posts []insights.Post, employees []insights.Employee) string {
	var b strings.Builder
	b.WriteString("You are a LinkedIn analytics expert. Analyze this company page data and provide a comprehensive summary.\n\n")

	fmt.Fprintf(&b, "Company: %s\n", orUnknown(page.Name))
	fmt.Fprintf(&b, "Industry: %s\n", orUnknown(page.Industry))
	fmt.Fprintf(&b, "Follower Count: %d\n", page.FollowerCount)
	fmt.Fprintf(&b, "Company Type: %s\n", orUnknown(page.CompanyType))
	fmt.Fprintf(&b, "Headquarters: %s\n", orUnknown(page.Headquarters))
	fmt.Fprintf(&b, "Founded: %s\n", orUnknown(page.Founded))
	fmt.Fprintf(&b, "Headcount: %s\n", orUnknown(page.Headcount))
	fmt.Fprintf(&b, "Specialities: %s\n", strings.Join(page.Specialities, ", "))
	fmt.Fprintf(&b, "Description: %s\n", orDefault(page.Description, "Not available"))

	if len(posts) > 0 {
		b.WriteString("\nRecent Posts:\n")
		for i, post := range posts {
			if i >= maxPromptPosts {
				break
			}
			fmt.Fprintf(&b, "- Content: %s...\n", truncate(post.Content, 200))
			fmt.Fprintf(&b, "  Likes: %d, Comments: %d, Shares: %d\n",
				post.LikeCount, post.CommentCount, post.ShareCount)
		}
	}

	if len(employees) > 0 {
		b.WriteString("\nKey Employees:\n")
		for i, emp := range employees {
			if i >= maxPromptEmployees {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", orUnknown(emp.Name), orUnknown(emp.Designation))
		}
	}

	b.WriteString(`
Please provide your analysis in the following JSON format:
{
    "executive_summary": "A 2-3 sentence overview of the company's LinkedIn presence",
    "company_profile": "Brief analysis of the company type, industry position, and size",
    "engagement_analysis": "Analysis of their content engagement based on likes, comments, shares",
    "audience_insights": "Insights about their likely audience based on follower count and content type",
    "recommendations": ["Recommendation 1", "Recommendation 2", "Recommendation 3"]
}

Respond ONLY with the JSON object, no additional text.`)

	return b.String()
}

// ParseResponse decodes the model reply, tolerating markdown code
// fences. Unparseable replies degrade to a summary carrying the raw
// text rather than failing the request.
func ParseResponse(text string) insights.Summary {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		ExecutiveSummary   string   `json:"executive_summary"`
		CompanyProfile     string   `json:"company_profile"`
		EngagementAnalysis string   `json:"engagement_analysis"`
		AudienceInsights   string   `json:"audience_insights"`
		Recommendations    []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return insights.Summary{
			ExecutiveSummary:   truncate(cleaned, 500),
			CompanyProfile:     "Profile not available",
			EngagementAnalysis: "Analysis not available",
			AudienceInsights:   "Insights not available",
		}
	}
	return insights.Summary{
		ExecutiveSummary:   orDefault(parsed.ExecutiveSummary, "Summary not available"),
		CompanyProfile:     orDefault(parsed.CompanyProfile, "Profile not available"),
		EngagementAnalysis: orDefault(parsed.EngagementAnalysis, "Analysis not available"),
		AudienceInsights:   orDefault(parsed.AudienceInsights, "Insights not available"),
		Recommendations:    parsed.Recommendations,
	}
}

// Disabled is the summarizer used when no API key is configured.
type Disabled struct{}

// Summarize always fails with insights.ErrSummarizerDisabled.
func (Disabled) Summarize(context.Context, insights.Page, []insights.Post, []insights.Employee) (insights.Summary, error) {
	return insights.Summary{}, insights.ErrSummarizerDisabled
}

// Model reports an empty model name.
func (Disabled) Model() string { return "" }

// Available reports false.
func (Disabled) Available() bool { return false }

func orUnknown(s string) string { return orDefault(s, "Unknown") }

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
