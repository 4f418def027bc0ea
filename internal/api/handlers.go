package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

// envelope is the uniform response shape for every /api route.
type envelope struct {
	Success    bool            `json:"success"`
	Data       any             `json:"data,omitempty"`
	Pagination *paginationMeta `json:"pagination,omitempty"`
	Source     insights.Source `json:"source,omitempty"`
	Error      *errorDetail    `json:"error,omitempty"`
}

type paginationMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type errorDetail struct {
	Error     string `json:"error,omitempty"`
	Message   string `json:"message"`
	PageID    string `json:"page_id,omitempty"`
	URL       string `json:"url,omitempty"`
	LoginWall bool   `json:"login_wall,omitempty"`
	Retryable bool   `json:"retryable"`
	Note      string `json:"note,omitempty"`
}

func newPaginationMeta(page, limit, total int) *paginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &paginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page_id")
	forceRefresh := r.URL.Query().Get("force_refresh") == "true"

	page, source, err := s.service.GetPage(r.Context(), pageID, forceRefresh)
	if err != nil {
		s.writeScrapeError(w, pageID, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: page, Source: source})
}

func (s *Server) searchPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := insights.PageQuery{
		Name:     q.Get("name"),
		Industry: q.Get("industry"),
	}
	if v, ok := parseOptionalInt(q.Get("min_followers")); ok {
		query.MinFollowers = &v
	}
	if v, ok := parseOptionalInt(q.Get("max_followers")); ok {
		query.MaxFollowers = &v
	}
	page, limit := s.pagination(r)

	list, err := s.service.Search(r.Context(), query, (page-1)*limit, limit)
	if err != nil {
		s.logger.Error("page search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       list.Pages,
		Pagination: newPaginationMeta(page, limit, list.Total),
		Source:     insights.SourceDatabase,
	})
}

func (s *Server) getPosts(w http.ResponseWriter, r *http.Request) {
	s.listResource(w, r, func(pageID string, offset, limit int) (any, int, error) {
		posts, total, err := s.service.GetPosts(r.Context(), pageID, offset, limit)
		return posts, total, err
	})
}

func (s *Server) getComments(w http.ResponseWriter, r *http.Request) {
	s.listResource(w, r, func(pageID string, offset, limit int) (any, int, error) {
		comments, total, err := s.service.GetComments(r.Context(), pageID, offset, limit)
		return comments, total, err
	})
}

func (s *Server) getEmployees(w http.ResponseWriter, r *http.Request) {
	s.listResource(w, r, func(pageID string, offset, limit int) (any, int, error) {
		employees, total, err := s.service.GetEmployees(r.Context(), pageID, offset, limit)
		return employees, total, err
	})
}

// listMaxLimit caps the page size for posts/comments/people listings.
const listMaxLimit = 50

func (s *Server) listResource(w http.ResponseWriter, r *http.Request, list func(pageID string, offset, limit int) (any, int, error)) {
	pageID := chi.URLParam(r, "page_id")
	page, limit := s.pagination(r)
	if limit > listMaxLimit {
		limit = listMaxLimit
	}

	data, total, err := list(pageID, (page-1)*limit, limit)
	if err != nil {
		s.writeScrapeError(w, pageID, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       data,
		Pagination: newPaginationMeta(page, limit, total),
		Source:     insights.SourceDatabase,
	})
}

func (s *Server) deletePage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page_id")
	if err := s.service.DeletePage(r.Context(), pageID); err != nil {
		if errors.Is(err, insights.ErrNotFound) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		s.logger.Error("page delete failed", zap.String("page_id", pageID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    map[string]string{"page_id": pageID, "status": "deleted"},
	})
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page_id")
	q := r.URL.Query()
	includePosts := q.Get("include_posts") != "false"
	includeEmployees := q.Get("include_employees") != "false"
	skipCache := q.Get("skip_cache") == "true"

	summary, source, err := s.service.Summarize(r.Context(), pageID, includePosts, includeEmployees, skipCache)
	if err != nil {
		if errors.Is(err, insights.ErrSummarizerDisabled) {
			writeError(w, http.StatusServiceUnavailable, "AI summarization is not configured")
			return
		}
		s.writeScrapeError(w, pageID, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: summary, Source: source})
}

func (s *Server) getProviders(w http.ResponseWriter, _ *http.Request) {
	model, available := s.service.SummarizerInfo()
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: map[string]any{
			"model":     model,
			"available": available,
		},
	})
}

func (s *Server) getCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.CacheStats(r.Context())
	if err != nil {
		s.logger.Error("cache stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cache stats failed")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: stats})
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	cleared, err := s.service.ClearCache(r.Context(), prefix)
	if err != nil {
		s.logger.Error("cache clear failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cache clear failed")
		return
	}
	if prefix == "" {
		prefix = "all"
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    map[string]any{"cleared": cleared, "prefix": prefix},
	})
}

// writeScrapeError maps pipeline failures onto HTTP statuses: login
// walls are 503 (the page exists but cannot be read anonymously),
// everything else is 404 with a retryable hint.
func (s *Server) writeScrapeError(w http.ResponseWriter, pageID string, err error) {
	if errors.Is(err, insights.ErrNotFound) {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	var se *insights.ScrapeError
	if errors.As(err, &se) {
		detail := &errorDetail{
			Error:     "Scraping failed",
			Message:   se.Message,
			PageID:    pageID,
			LoginWall: se.LoginWall,
			Retryable: se.Retryable,
		}
		status := http.StatusNotFound
		if se.LoginWall {
			status = http.StatusServiceUnavailable
			detail.Error = "LinkedIn login wall detected"
			detail.URL = fmt.Sprintf("%s/%s/", insights.CompanyBaseURL, pageID)
			detail.Note = "LinkedIn aggressively gates company pages. Consider adding page data manually or using LinkedIn API."
		}
		writeJSON(w, status, envelope{Success: false, Error: detail})
		return
	}
	s.logger.Error("request failed", zap.String("page_id", pageID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// pagination reads page/limit query params and clamps them.
func (s *Server) pagination(r *http.Request) (page, limit int) {
	page = 1
	if v, ok := parseOptionalInt(r.URL.Query().Get("page")); ok && v > 0 {
		page = v
	}
	limit = s.cfg.DefaultLimit
	if v, ok := parseOptionalInt(r.URL.Query().Get("limit")); ok && v > 0 {
		limit = v
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return page, limit
}

func parseOptionalInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: &errorDetail{Message: msg}})
}
