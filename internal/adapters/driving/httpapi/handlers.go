package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type uploadResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type questionsRequest struct {
	Questions []string `json:"questions" binding:"required"`
}

type askRequest struct {
	Documents string   `json:"documents" binding:"required"`
	Questions []string `json:"questions" binding:"required"`
}

type answersResponse struct {
	Answers []string `json:"answers"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type risksResponse struct {
	Findings []riskFinding `json:"findings"`
}

type riskFinding struct {
	Category    string `json:"category"`
	Quote       string `json:"quote"`
	Explanation string `json:"explanation"`
}

type cacheStatsResponse struct {
	CachedDocuments int      `json:"cached_documents"`
	Documents       []string `json:"documents"`
	ActiveSessions  int      `json:"active_sessions"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// upload ingests a URL or file as the caller's active document and sets the session cookie.
func (s *Server) upload(c *gin.Context) {
	upload, err := readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}

	token, _ := c.Cookie(SessionCookie)
	token, err = s.qa.Upload(c.Request.Context(), token, upload)
	if err != nil {
		writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, uploadResponse{
		Message:   "Document processed and session is active.",
		SessionID: token,
	})
}

// readUpload reads exactly one of the url form field and the file part.
func readUpload(c *gin.Context) (domain.Upload, error) {
	url := strings.TrimSpace(c.PostForm("url"))
	fileHeader, fileErr := c.FormFile("file")
	hasFile := fileErr == nil && fileHeader != nil

	if (url == "") == !hasFile {
		return domain.Upload{}, fmt.Errorf("%w: Provide either a URL or a file, but not both.", domain.ErrInvalidInput)
	}
	if url != "" {
		return domain.Upload{URL: url}, nil
	}

	f, err := fileHeader.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("%w: reading upload: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.Upload{}, fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrInvalidInput, maxErr.Limit)
		}
		return domain.Upload{}, fmt.Errorf("%w: reading upload: %w", domain.ErrInvalidInput, err)
	}

	return domain.Upload{Raw: &domain.RawContent{
		Source:   fileHeader.Filename,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Content:  content,
	}}, nil
}

// run answers questions about the session's document.
func (s *Server) run(c *gin.Context) {
	var req questionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	token, _ := c.Cookie(SessionCookie)
	answers, err := s.qa.AskSession(c.Request.Context(), token, req.Questions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answersResponse{Answers: answers})
}

// ask answers questions about a document URL without a session.
func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	answers, err := s.qa.Ask(c.Request.Context(), req.Documents, req.Questions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answersResponse{Answers: answers})
}

func (s *Server) summarize(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	summary, err := s.analysis.Summarize(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{Summary: summary})
}

func (s *Server) risks(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	findings, err := s.analysis.ScanRisks(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := risksResponse{Findings: make([]riskFinding, len(findings))}
	for i, f := range findings {
		resp.Findings[i] = riskFinding{Category: f.Category, Quote: f.Quote, Explanation: f.Explanation}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) cacheStats(c *gin.Context) {
	stats := s.qa.CacheStats(c.Request.Context())
	docs := stats.Documents
	if docs == nil {
		docs = []string{}
	}
	c.JSON(http.StatusOK, cacheStatsResponse{
		CachedDocuments: stats.CachedDocuments,
		Documents:       docs,
		ActiveSessions:  stats.ActiveSessions,
	})
}
