// Package authwall detects authentication walls and garbage company data.
package authwall

import (
	"bytes"
	"strings"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

// loginWallKeywords are markers the site serves on gated pages. A single
// hit is too noisy (company descriptions mention "sign up" etc); two or
// more distinct hits classify the document as a wall.
var loginWallKeywords = []string{
	"sign in",
	"sign up",
	"join linkedin",
	"login-submit",
	"session_key",
	"authwall",
	"please log in",
	"join now",
}

// invalidCompanyNames are values the name selectors match on gated or
// broken pages instead of a real company name.
var invalidCompanyNames = []string{
	"sign in",
	"linkedin",
	"join now",
	"sign up",
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte("id=\"root\""),
	[]byte("id=\"app\""),
	[]byte("data-reactroot"),
	[]byte("artdeco-"),
}

// Heuristic implements rule-based wall detection and headless promotion.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a new detector.
func NewHeuristic(threshold int) *Heuristic {
	if threshold == 0 {
		threshold = 2048
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

// IsLoginWall reports whether the document is an authentication wall
// rather than genuine company data.
func (h *Heuristic) IsLoginWall(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	lower := strings.ToLower(string(body))

	// The session_key form field only appears on the login form itself.
	if strings.Contains(lower, `name="session_key"`) || strings.Contains(lower, `id="session_key"`) {
		return true
	}

	hits := 0
	for _, keyword := range loginWallKeywords {
		if strings.Contains(lower, keyword) {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}

// IsValidCompanyName rejects names that are empty, too short, or known
// boilerplate from gated pages.
func (h *Heuristic) IsValidCompanyName(name string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if len(trimmed) < 2 {
		return false
	}
	for _, invalid := range invalidCompanyNames {
		if trimmed == invalid {
			return false
		}
	}
	return true
}

// ShouldPromote decides whether a plain-HTTP probe result requires a
// headless fetch: gated or empty documents, client-rendered shells, and
// thin script-heavy bodies all do.
func (h *Heuristic) ShouldPromote(probe insights.FetchResponse) bool {
	if probe.StatusCode != 200 {
		return true
	}
	body := probe.Body
	if len(body) == 0 {
		return true
	}
	if h.IsLoginWall(body) {
		return true
	}
	if len(body) < h.BodyLengthThreshold && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	scriptCoverage := 0
	searchPos := 0

	for {
		relativeStart := strings.Index(lower[searchPos:], openTag)
		if relativeStart == -1 {
			break
		}
		start := searchPos + relativeStart

		tagClose := strings.IndexByte(lower[start:], '>')
		if tagClose == -1 {
			// Treat the rest of the document as part of the malformed script.
			scriptCoverage += total - start
			break
		}
		contentStart := start + tagClose + 1

		relativeEnd := strings.Index(lower[contentStart:], closeTag)
		var nextSearch int
		if relativeEnd == -1 {
			// Script tag never closes; count the rest.
			nextSearch = total
		} else {
			nextSearch = contentStart + relativeEnd + len(closeTag)
		}

		scriptCoverage += nextSearch - start
		searchPos = nextSearch
	}

	if scriptCoverage == 0 {
		return false
	}
	return scriptCoverage*100/total >= 25
}
