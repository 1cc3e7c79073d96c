package suggest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/redline/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRules(t, `
focus: [terminology, regulatory]
required:
  - id: AE-01
    text: Adverse events must state severity grade.
terminology:
  heart attack: myocardial infarction
categories: [TERMINOLOGY, regulatory]
`)

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.NotNil(t, rules)
	assert.Equal(t, []string{"terminology", "regulatory"}, rules.Focus)
	require.Len(t, rules.Required, 1)
	assert.Equal(t, "AE-01", rules.Required[0].ID)
	assert.Equal(t, "myocardial infarction", rules.Terminology["heart attack"])
	assert.True(t, rules.Allows(analysis.CategoryRegulatory))
	assert.False(t, rules.Allows(analysis.CategoryStyle))
}

func TestLoadRules_EmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Nil(t, rules)
	assert.True(t, rules.Allows(analysis.CategoryStyle), "nil rules allow everything")
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadRules(writeRules(t, "focus: [unclosed"))
	assert.Error(t, err)

	_, err = LoadRules(writeRules(t, "categories: [GRAMMAR]"))
	assert.ErrorContains(t, err, "unknown category")
}

func TestBuildRulesPromptSection(t *testing.T) {
	assert.Empty(t, BuildRulesPromptSection(nil))

	section := BuildRulesPromptSection(&Rules{
		Focus:       []string{"clarity"},
		Required:    []RequiredCheck{{ID: "R1", Text: "State the dose unit."}},
		Terminology: map[string]string{"b": "beta", "a": "alpha"},
	})
	assert.Contains(t, section, "Focus areas: clarity")
	assert.Contains(t, section, "[R1] State the dose unit.")
	assert.Less(t, strings.Index(section, `"alpha"`), strings.Index(section, `"beta"`), "terminology is sorted")
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := BuildUserPrompt("Dose was 5 mg.", nil)
	assert.Contains(t, prompt, "14 characters long")
	assert.Contains(t, prompt, "--- BEGIN PASSAGE ---\nDose was 5 mg.\n--- END PASSAGE ---")
}
