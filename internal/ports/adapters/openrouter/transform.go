package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const defaultSummaryWords = 250

func (a *Adapter) Summarize(ctx context.Context, script string, maxWords int) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", nil
	}
	if maxWords <= 0 {
		maxWords = defaultSummaryWords
	}
	prompt := fmt.Sprintf(
		"Summarize the following podcast narration script in at most %d words. "+
			"Keep it spoken-word friendly: full sentences, no lists, no markdown, no headings. "+
			"Return only the summary text.\n\nScript:\n%s",
		maxWords, script,
	)
	out, err := a.complete(ctx, prompt, "", nil)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return cleanScript(out), nil
}

func (a *Adapter) Translate(ctx context.Context, script, language string) (string, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		return "", errors.New("translate: target language is empty")
	}
	if strings.TrimSpace(script) == "" {
		return "", nil
	}
	prompt := fmt.Sprintf(
		"Translate the following podcast narration script into %s. "+
			"Preserve paragraph breaks and sentence boundaries. "+
			"Return only the translated text, no commentary and no markdown.\n\nScript:\n%s",
		language, script,
	)
	out, err := a.complete(ctx, prompt, "", nil)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return cleanScript(out), nil
}

// Highlights asks for the n most quotable sentences, copied verbatim.
func (a *Adapter) Highlights(ctx context.Context, script string, n int) ([]string, error) {
	if n <= 0 || strings.TrimSpace(script) == "" {
		return nil, nil
	}
	prompt := fmt.Sprintf(
		"Pick up to %d highlight sentences from the podcast script below: the most informative or "+
			"attention-grabbing moments. Copy each sentence verbatim from the script. "+
			"Return strictly valid JSON (no markdown, no code fences) matching the provided schema."+
			"\n\nScript:\n%s",
		n, script,
	)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"highlights": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":   map[string]any{"type": "string"},
						"reason": map[string]any{"type": "string"},
					},
					"required": []string{"text", "reason"},
				},
			},
		},
		"required": []string{"highlights"},
	}
	content, err := a.complete(ctx, prompt, "blogcast_highlights", schema)
	if err != nil {
		return nil, fmt.Errorf("highlights: %w", err)
	}
	return parseHighlights(content, n)
}

func parseHighlights(content string, n int) ([]string, error) {
	clean, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("highlights: %w", err)
	}
	var out struct {
		Highlights []struct {
			Text   string `json:"text"`
			Reason string `json:"reason"`
		} `json:"highlights"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("highlights: decode: %w", err)
	}
	res := make([]string, 0, len(out.Highlights))
	for _, h := range out.Highlights {
		t := strings.TrimSpace(h.Text)
		if t == "" {
			continue
		}
		res = append(res, t)
		if len(res) >= n {
			break
		}
	}
	return res, nil
}

// Merge combines several scripts into one episode with smooth transitions.
func (a *Adapter) Merge(ctx context.Context, scripts []string) (string, error) {
	var parts []string
	for _, s := range scripts {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	}

	var b strings.Builder
	b.WriteString("Merge the following podcast narration scripts into a single episode script. ")
	b.WriteString("Keep one intro and one outro, add short spoken transitions between parts, ")
	b.WriteString("and keep all substantive content. Return only the merged script, no markdown.")
	for i, p := range parts {
		fmt.Fprintf(&b, "\n\n--- Part %d ---\n%s", i+1, p)
	}
	out, err := a.complete(ctx, b.String(), "", nil)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	return cleanScript(out), nil
}
