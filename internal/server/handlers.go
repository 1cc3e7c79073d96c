package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dshills/redline/internal/analysis"
	"github.com/gin-gonic/gin"
)

type analyzeRequest struct {
	Text *string `json:"text" binding:"required"`
}

type analyzeResponse struct {
	Suggestions []analysis.Suggestion  `json:"suggestions"`
	Failures    []analysis.FailureInfo `json:"failures,omitempty"`
}

type applyRequest struct {
	Text             *string              `json:"text" binding:"required"`
	Suggestion       *analysis.Suggestion `json:"suggestion" binding:"required"`
	ImprovementIndex int                  `json:"improvementIndex"`
}

type applyResponse struct {
	Text string `json:"text"`
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := analysis.ValidateDocument(*req.Text); err != nil {
		detail(c, http.StatusBadRequest, "No text provided")
		return
	}

	res, err := s.analyzer.Analyze(c.Request.Context(), *req.Text)
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}

	failures := make([]analysis.FailureInfo, 0, len(res.Failures))
	for _, f := range res.Failures {
		fmt.Fprintf(gin.DefaultErrorWriter, "[redline] WARNING: %s\n", f.Error())
		failures = append(failures, analysis.FailureInfo{Segment: f.Index, Offset: f.Offset, Error: f.Err.Error()})
	}

	// Nothing to show and nothing succeeded: surface it as a server error.
	if len(res.Failures) > 0 && len(res.Failures) == res.Segments {
		detail(c, http.StatusInternalServerError, res.Failures[0].Error())
		return
	}

	suggestions := res.Suggestions
	if s.maxSuggestions > 0 && len(suggestions) > s.maxSuggestions {
		suggestions = suggestions[:s.maxSuggestions]
	}

	c.JSON(http.StatusOK, analyzeResponse{Suggestions: suggestions, Failures: failures})
}

func (s *Server) handleApply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	text, err := analysis.Apply(*req.Text, *req.Suggestion, req.ImprovementIndex)
	switch {
	case errors.Is(err, analysis.ErrStaleSpan):
		detail(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, analysis.ErrIndexOutOfRange), errors.Is(err, analysis.ErrSpanOutOfRange):
		detail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, applyResponse{Text: text})
}
