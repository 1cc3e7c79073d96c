package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dshills/redline/internal/analysis"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// wholeSegment suggests replacing each segment's first word. Test inputs
// are ASCII so byte and rune offsets agree.
func wholeSegment(_ context.Context, text string) ([]analysis.Draft, error) {
	start := len(text) - len(strings.TrimLeft(text, " "))
	end := strings.IndexByte(text[start:], ' ')
	if end < 0 {
		end = len(text)
	} else {
		end += start
	}
	return []analysis.Draft{{
		Category:     analysis.CategoryStyle,
		Span:         analysis.Span{Start: start, End: end},
		Rationale:    "Vary openings.",
		Improvements: []analysis.Improvement{{Text: "The", Explanation: "Article"}},
	}}, nil
}

func newTestServer(capability analysis.CapabilityFunc, opts Options) http.Handler {
	a := analysis.New(capability, analysis.Options{SegmentSize: 20})
	return New(a, opts).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestAnalyze(t *testing.T) {
	h := newTestServer(wholeSegment, Options{})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":"Patient had fever. Patient recovered."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, analysis.Span{Start: 0, End: 7}, resp.Suggestions[0].Span)
	assert.Equal(t, analysis.Span{Start: 19, End: 26}, resp.Suggestions[1].Span)
	assert.Equal(t, "Patient", resp.Suggestions[1].Excerpt)
	assert.NotEmpty(t, resp.Suggestions[0].ID)
	assert.Empty(t, resp.Failures)
}

func TestAnalyze_MaxSuggestions(t *testing.T) {
	h := newTestServer(wholeSegment, Options{MaxSuggestions: 1})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":"Patient had fever. Patient recovered."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Suggestions, 1)
}

func TestAnalyze_EmptyText(t *testing.T) {
	called := false
	h := newTestServer(func(ctx context.Context, text string) ([]analysis.Draft, error) {
		called = true
		return nil, nil
	}, Options{})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No text provided", decodeDetail(t, rec))
	assert.False(t, called)
}

func TestAnalyze_BadBody(t *testing.T) {
	h := newTestServer(wholeSegment, Options{})

	for _, body := range []string{``, `{`, `{}`, `{"text": 5}`} {
		rec := do(t, h, http.MethodPost, "/api/analyze", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "body %q", body)
	}
}

func TestAnalyze_PartialFailure(t *testing.T) {
	h := newTestServer(func(ctx context.Context, text string) ([]analysis.Draft, error) {
		if strings.HasPrefix(text, " Patient") {
			return nil, errors.New("model unavailable")
		}
		return wholeSegment(ctx, text)
	}, Options{})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":"Patient had fever. Patient recovered."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Suggestions, 1)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, 18, resp.Failures[0].Offset)
	assert.Equal(t, "model unavailable", resp.Failures[0].Error)
}

func TestAnalyze_AllSegmentsFail(t *testing.T) {
	h := newTestServer(func(ctx context.Context, text string) ([]analysis.Draft, error) {
		return nil, errors.New("invalid api key")
	}, Options{})

	rec := do(t, h, http.MethodPost, "/api/analyze", `{"text":"Patient had fever."}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeDetail(t, rec), "invalid api key")
}

func applyBody(t *testing.T, text string, s analysis.Suggestion, index int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
		"text":             text,
		"suggestion":       s,
		"improvementIndex": index,
	}))
	return buf.String()
}

func TestApply(t *testing.T) {
	h := newTestServer(wholeSegment, Options{})
	s := analysis.Suggestion{
		ID:       "x",
		Category: analysis.CategoryTerminology,
		Span:     analysis.Span{Start: 12, End: 17},
		Improvements: []analysis.Improvement{
			{Text: "pyrexia"},
			{Text: "a raised temperature"},
		},
		Excerpt: "fever",
	}

	rec := do(t, h, http.MethodPost, "/api/apply", applyBody(t, "Patient had fever.", s, 1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp applyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Patient had a raised temperature.", resp.Text)
}

func TestApply_Errors(t *testing.T) {
	h := newTestServer(wholeSegment, Options{})
	s := analysis.Suggestion{
		Span:         analysis.Span{Start: 12, End: 17},
		Improvements: []analysis.Improvement{{Text: "pyrexia"}},
		Excerpt:      "fever",
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"index out of range", applyBody(t, "Patient had fever.", s, 1), http.StatusBadRequest},
		{"negative index", applyBody(t, "Patient had fever.", s, -1), http.StatusBadRequest},
		{"span out of range", applyBody(t, "Short.", s, 0), http.StatusBadRequest},
		{"stale span", applyBody(t, "Patient had chills.", s, 0), http.StatusConflict},
		{"missing suggestion", `{"text":"Patient had fever."}`, http.StatusUnprocessableEntity},
		{"bad span", `{"text":"a","suggestion":{"span":[1]}}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/apply", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeDetail(t, rec))
		})
	}
}

func TestHealthz(t *testing.T) {
	a := analysis.New(analysis.CapabilityFunc(wholeSegment), analysis.Options{})
	h := New(a, Options{Provider: "openai", Model: "gpt-4"}).Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","provider":"openai","model":"gpt-4"}`, rec.Body.String())
}
