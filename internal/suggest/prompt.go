package suggest

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced medical writer specializing in clinical study reports. Your job is to review a passage of clinical prose and propose localized improvements in JSON format.

Rules:
1. Focus on one specific issue at a time.
2. Identify the exact span of the passage that needs improvement as [start, end] character offsets into the passage, end exclusive. Offsets count Unicode characters starting at 0. Omit the span only when the issue concerns the whole passage.
3. Classify each issue as one of:
   - STYLE: Issues with writing style, tone, or flow
   - CONTENT: Inaccurate or missing clinical information
   - TERMINOLOGY: Incorrect or inconsistent medical terminology
   - CLARITY: Unclear or ambiguous statements
   - REGULATORY: Non-compliance with regulatory guidelines
   - CONSISTENCY: Inconsistencies within the document
4. Provide a detailed medical rationale for the improvement.
5. Suggest two different ways to improve the text using appropriate medical writing standards. Each improvement replaces the text of the span.
6. Maintain scientific accuracy. Never invent clinical data.
7. Passages may contain masked characters (█). Leave them untouched.

You MUST respond with ONLY JSON. No markdown, no explanation, no preamble.

Each suggestion must have this exact structure:
{
  "type": "STYLE|CONTENT|TERMINOLOGY|CLARITY|REGULATORY|CONSISTENCY",
  "span": [0, 10],
  "rationale": "Why this improvement is needed",
  "improvements": [
    {"text": "Replacement text", "explanation": "What this version changes"},
    {"text": "Alternative replacement", "explanation": "What this version changes"}
  ]
}

Respond with a single suggestion object or a JSON array of suggestions. If the passage needs no improvement, respond with an empty array: []`

// SystemPrompt returns the system prompt for the LLM.
func SystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt constructs the user prompt for one passage.
func BuildUserPrompt(text string, rules *Rules) string {
	var b strings.Builder

	b.WriteString("Analyze the following passage and suggest improvements.\n")
	fmt.Fprintf(&b, "The passage is %d characters long.\n", len([]rune(text)))

	if section := BuildRulesPromptSection(rules); section != "" {
		b.WriteString(section)
	}

	b.WriteString("\n--- BEGIN PASSAGE ---\n")
	b.WriteString(text)
	b.WriteString("\n--- END PASSAGE ---\n")

	return b.String()
}

// buildRepairPrompt asks the model to correct a reply that failed to parse.
func buildRepairPrompt(previous string, err error) string {
	return fmt.Sprintf(
		"Your previous response was not valid. The error was: %s\n\nPlease fix it and respond with ONLY valid JSON in the required structure.\n\nYour previous response was:\n%s",
		err.Error(), previous,
	)
}
