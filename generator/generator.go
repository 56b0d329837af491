// Package generator turns a player profile into roast candidates through a
// text generation provider.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"roast-board/models"
)

// CandidateCount is how many roasts are requested per generation.
const CandidateCount = 5

// Subject is everything the prompt is built from.
type Subject struct {
	Name     string
	Position string
	Team     string
	Bio      string
	Hometown string
	College  string
	Stats    map[string]any
	News     []string
}

type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

type RequestLog struct {
	Prompt       string     `json:"prompt"`
	Response     string     `json:"response"`
	LatencyMs    int64      `json:"latency_ms"`
	TokenUsage   TokenUsage `json:"token_usage"`
	ModelName    string     `json:"model_name"`
	ModelVersion string     `json:"model_version"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

type Result struct {
	Candidates []string
	Log        *RequestLog
}

type Generator interface {
	Generate(ctx context.Context, subject Subject) (*Result, error)
}

const guidelines = `Guidelines:
- Keep roasts sports-related and performance-based
- Use stats, college, hometown, or recent news as material. Make it personal to their sports career and use specific numbers
- Avoid anything related to appearance, family, or sensitive topics
- Focus on performance, team loyalty, career moves, or funny incidents
- Each roast is one sentence at most
- Make them quotable and shareable
- Never state anything that could be read as defamatory. This outranks every other guideline
- Write in the second person, directed at the player, as if shouted from the sideline

Format the answer as a JSON array of %d strings. Do not wrap it in a markdown code block.`

// BuildPrompt renders the generation prompt. prefix is prepended verbatim.
func BuildPrompt(prefix string, s Subject) string {
	stats := "{}"
	if len(s.Stats) > 0 {
		if b, err := json.Marshal(s.Stats); err == nil {
			stats = string(b)
		}
	}

	background := strings.TrimSpace(s.Position + " for " + s.Team + ". " + s.Bio)
	var extra []string
	if s.Hometown != "" {
		extra = append(extra, "from "+s.Hometown)
	}
	if s.College != "" {
		extra = append(extra, "played college ball at "+s.College)
	}
	if len(extra) > 0 {
		background += " (" + strings.Join(extra, ", ") + ")"
	}

	var b strings.Builder
	b.WriteString(prefix)
	fmt.Fprintf(&b, "\nGenerate %d creative, mean and extremely concise roasts for %s, a professional athlete.\n\n", CandidateCount, s.Name)
	b.WriteString("Player Information:\n")
	fmt.Fprintf(&b, "- Stats: %s\n", stats)
	fmt.Fprintf(&b, "- Background: %s\n", background)
	fmt.Fprintf(&b, "- Recent News: %s\n\n", strings.Join(s.News, ", "))
	fmt.Fprintf(&b, guidelines, CandidateCount)
	b.WriteString("\n")
	return b.String()
}

// ParseCandidates reads the JSON array answer. Code fences are tolerated and
// blank entries dropped; an answer without any usable entry fails with
// models.ErrGenerationFailed.
func ParseCandidates(text string) ([]string, error) {
	raw := stripCodeFence(text)

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON array of strings: %v", models.ErrGenerationFailed, err)
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no candidates returned", models.ErrGenerationFailed)
	}
	return out, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
