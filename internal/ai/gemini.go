package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"ledgerlens/internal/domain"
)

// DefaultGeminiModel is used when the config does not name a model.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiAssistant implements Assistant on top of the Google GenAI API.
type GeminiAssistant struct {
	client *genai.Client
	model  string
}

// NewGeminiAssistant creates a client for the Gemini Developer API. The API
// key is read from GEMINI_API_KEY / GOOGLE_API_KEY by the SDK itself; Vertex
// routing is controlled through the usual GOOGLE_GENAI_* env vars.
func NewGeminiAssistant(ctx context.Context, model string) (*GeminiAssistant, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiAssistant{client: client, model: model}, nil
}

func (g *GeminiAssistant) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GeminiAssistant) Categorize(ctx context.Context, txns []TransactionRef, categories []string) ([]CategoryAssignment, error) {
	raw, err := g.generate(ctx, buildCategorizePrompt(txns, categories))
	if err != nil {
		return nil, err
	}
	knownIDs := make(map[string]bool, len(txns))
	for _, t := range txns {
		knownIDs[t.ID] = true
	}
	return parseAssignments(raw, knownIDs, categories)
}

func (g *GeminiAssistant) MineRules(ctx context.Context, txns []domain.Transaction) ([]RuleSuggestion, error) {
	raw, err := g.generate(ctx, buildMineRulesPrompt(txns))
	if err != nil {
		return nil, err
	}
	return parseRuleSuggestions(raw)
}

func (g *GeminiAssistant) Analyze(ctx context.Context, query string, txns []domain.Transaction) (*AnalysisResult, error) {
	raw, err := g.generate(ctx, buildAnalyzePrompt(query, txns))
	if err != nil {
		return nil, err
	}
	return parseAnalysis(raw)
}
