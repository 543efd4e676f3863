// Package anthropic is the concrete Tier-2 reasoning oracle: it sends a
// detected error plus feature metadata to the Anthropic Messages API and
// parses a structured fix recommendation back.
//
// It plays the same role original_source/geofix/decision/llm_reasoner.py's
// LLMReasoner does, but talks to the real Anthropic API directly via
// github.com/anthropics/anthropic-sdk-go rather than langchain-ollama /
// langchain-google-genai, per the substitution recorded in SPEC_FULL.md's
// domain stack.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/geofix-project/geofix-core/internal/oracle"
)

// systemPrompt is carried over near-verbatim from llm_reasoner.py's
// SYSTEM_PROMPT, adjusted for the closed fix-kind set this package
// actually executes (human_review excluded — the oracle only ever
// recommends a real, registrable fix).
const systemPrompt = `You are GeoFix, an expert geospatial data quality engineer.

You are given a detected spatial error with metadata about the affected
features. Your job is to recommend the best fix strategy.

Available fix types: snap, trim, merge, delete, make_valid, simplify, clip, nudge, flag

Respond ONLY with valid JSON in this format:
{
  "fix_type": "<one of the fix types above>",
  "confidence": <0.0 to 1.0>,
  "reasoning": "<one-line explanation>",
  "parameters": {}
}

Consider:
- Feature accuracy (lower accuracy_m = more positional trust)
- Source reliability (survey > digitized > osm > unknown)
- Overlap magnitude (ratio, area)
- Risk of the fix (prefer conservative actions)`

// Oracle is a Tier-2 reasoning oracle backed by the Anthropic Messages API.
type Oracle struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New constructs an Oracle. apiKey is passed explicitly rather than read
// from the environment so callers control credential sourcing; model
// follows config.OracleConfig.Model (default "claude-3-5-haiku-latest").
func New(apiKey, model string) *Oracle {
	return &Oracle{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 1024,
	}
}

// Reason implements oracle.Oracle.
func (o *Oracle) Reason(ctx context.Context, err *model.DetectedError, meta map[string]model.FeatureMetadata, ruleAttempt *model.FixStrategy) (*oracle.Recommendation, error) {
	prompt := buildPrompt(err, meta, ruleAttempt)

	resp, apiErr := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(o.model),
		MaxTokens: o.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if apiErr != nil {
		return nil, fmt.Errorf("anthropic messages.new: %w", apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return parseResponse(text.String())
}

func buildPrompt(err *model.DetectedError, meta map[string]model.FeatureMetadata, ruleAttempt *model.FixStrategy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Detected Error\n- Type: %s\n- Severity: %s\n", err.Kind, err.Severity)
	for k, v := range err.Properties {
		fmt.Fprintf(&b, "- %s: %v\n", k, v)
	}
	for k, v := range err.PropertyTags {
		fmt.Fprintf(&b, "- %s: %s\n", k, v)
	}

	b.WriteString("\n## Affected Features\n")
	for _, fid := range err.AffectedFeatures {
		m := meta[fid]
		if m.Source == "" {
			m = model.DefaultFeatureMetadata(fid)
		}
		fmt.Fprintf(&b, "- Feature %s: source=%s, accuracy=%.1fm, confidence=%.2f\n",
			fid, m.Source, m.AccuracyM, m.Confidence)
	}

	if ruleAttempt != nil {
		fmt.Fprintf(&b, "\n## Rule Engine Attempt\n- Suggested: %s\n- Confidence: %.2f\n- Reasoning: %s\nThe confidence was too low for auto-fix.\n",
			ruleAttempt.Kind, ruleAttempt.Confidence, ruleAttempt.Rationale)
	}

	b.WriteString("\nWhat fix do you recommend?")
	return b.String()
}

type rawRecommendation struct {
	FixType    string         `json:"fix_type"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Parameters map[string]any `json:"parameters"`
}

// parseResponse strips a markdown code fence if present (llm_reasoner.py's
// _parse_response does the same split-on-backtick dance) and decodes the
// structured recommendation.
func parseResponse(content string) (*oracle.Recommendation, error) {
	text := strings.TrimSpace(content)
	if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = strings.TrimPrefix(strings.TrimSpace(parts[1]), "json")
			text = strings.TrimSpace(text)
		}
	}

	var raw rawRecommendation
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse oracle response: %w", err)
	}

	return &oracle.Recommendation{
		FixKind:    model.FixKind(raw.FixType),
		Confidence: raw.Confidence,
		Rationale:  raw.Reasoning,
		Parameters: raw.Parameters,
	}, nil
}
