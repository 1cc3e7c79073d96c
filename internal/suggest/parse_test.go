package suggest

import (
	"testing"

	"github.com/dshills/redline/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDrafts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    int
		wantErr string
	}{
		{
			name:    "single object",
			content: feverReply,
			n:       18,
			want:    1,
		},
		{
			name:    "array",
			content: "[" + feverReply + "," + feverReply + "]",
			n:       18,
			want:    2,
		},
		{
			name:    "empty array",
			content: "[]",
			n:       18,
			want:    0,
		},
		{
			name:    "fenced",
			content: "```json\n" + feverReply + "\n```",
			n:       18,
			want:    1,
		},
		{
			name:    "empty",
			content: "  ",
			wantErr: "empty response",
		},
		{
			name:    "not json",
			content: "I think the text is fine.",
			wantErr: "invalid JSON",
		},
		{
			name:    "unknown category",
			content: `{"type":"GRAMMAR","span":[0,1],"rationale":"r","improvements":[{"text":"a","explanation":"b"}]}`,
			n:       5,
			wantErr: "unknown category",
		},
		{
			name:    "span past end",
			content: feverReply,
			n:       10,
			wantErr: "outside passage",
		},
		{
			name:    "span wrong arity",
			content: `{"type":"STYLE","span":[1],"rationale":"r","improvements":[{"text":"a","explanation":"b"}]}`,
			n:       5,
			wantErr: "2 offsets",
		},
		{
			name:    "no improvements",
			content: `{"type":"STYLE","span":[0,1],"rationale":"r","improvements":[]}`,
			n:       5,
			wantErr: "no improvements",
		},
		{
			name:    "blank improvement",
			content: `{"type":"STYLE","span":[0,1],"rationale":"r","improvements":[{"text":"  ","explanation":"b"}]}`,
			n:       5,
			wantErr: "empty text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts, err := ParseDrafts(tt.content, tt.n)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, drafts, tt.want)
		})
	}
}

func TestParseDrafts_MissingSpanCoversPassage(t *testing.T) {
	drafts, err := ParseDrafts(`{"category":"clarity","rationale":"r","improvements":[{"text":"a","explanation":"b"}]}`, 42)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, analysis.CategoryClarity, drafts[0].Category)
	assert.Equal(t, analysis.Span{Start: 0, End: 42}, drafts[0].Span)
}
