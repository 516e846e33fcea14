package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ledgerlens/internal/domain"
)

// DefaultClaudeModel is used when the config does not name a model.
const DefaultClaudeModel = "claude-sonnet-4-5-20250929"

const claudeMaxTokens = 8192

// ClaudeAssistant implements Assistant on top of the Anthropic Messages API.
type ClaudeAssistant struct {
	client anthropic.Client
	model  string
}

// NewClaudeAssistant creates a client with an explicit API key.
func NewClaudeAssistant(apiKey, model string) *ClaudeAssistant {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeAssistant{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *ClaudeAssistant) generate(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: claudeMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}
	if len(message.Content) == 0 {
		return "", ErrEmptyResponse
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *ClaudeAssistant) Categorize(ctx context.Context, txns []TransactionRef, categories []string) ([]CategoryAssignment, error) {
	raw, err := c.generate(ctx, buildCategorizePrompt(txns, categories))
	if err != nil {
		return nil, err
	}
	knownIDs := make(map[string]bool, len(txns))
	for _, t := range txns {
		knownIDs[t.ID] = true
	}
	return parseAssignments(raw, knownIDs, categories)
}

func (c *ClaudeAssistant) MineRules(ctx context.Context, txns []domain.Transaction) ([]RuleSuggestion, error) {
	raw, err := c.generate(ctx, buildMineRulesPrompt(txns))
	if err != nil {
		return nil, err
	}
	return parseRuleSuggestions(raw)
}

func (c *ClaudeAssistant) Analyze(ctx context.Context, query string, txns []domain.Transaction) (*AnalysisResult, error) {
	raw, err := c.generate(ctx, buildAnalyzePrompt(query, txns))
	if err != nil {
		return nil, err
	}
	return parseAnalysis(raw)
}
