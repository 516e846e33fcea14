package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cleanModelJSON strips Markdown code fences and surrounding prose that
// models emit despite instructions, keeping only the outermost JSON value.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only from the first opening bracket to its matching last close.
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if end := strings.LastIndex(s, "]"); end > arrStart {
			return strings.TrimSpace(s[arrStart : end+1])
		}
	}
	if objStart != -1 {
		if end := strings.LastIndex(s, "}"); end > objStart {
			return strings.TrimSpace(s[objStart : end+1])
		}
	}
	return s
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return s, nil
}

// parseAssignments decodes and validates a categorization response. Unknown
// transaction ids and categories outside the allowed set are dropped rather
// than trusted.
func parseAssignments(raw string, knownIDs map[string]bool, categories []string) ([]CategoryAssignment, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var decoded []CategoryAssignment
	if err := json.Unmarshal([]byte(clean), &decoded); err != nil {
		return nil, fmt.Errorf("parsing categorization response: %w", err)
	}

	allowed := make(map[string]string, len(categories))
	for _, c := range categories {
		allowed[strings.ToLower(strings.TrimSpace(c))] = c
	}

	result := make([]CategoryAssignment, 0, len(decoded))
	for _, a := range decoded {
		if !knownIDs[a.ID] {
			continue
		}
		canonical, ok := allowed[strings.ToLower(strings.TrimSpace(a.Category))]
		if !ok {
			continue
		}
		result = append(result, CategoryAssignment{ID: a.ID, Category: canonical})
	}
	return result, nil
}

// parseRuleSuggestions decodes a rule-mining response, dropping suggestions
// without a keyword or category.
func parseRuleSuggestions(raw string) ([]RuleSuggestion, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var decoded []RuleSuggestion
	if err := json.Unmarshal([]byte(clean), &decoded); err != nil {
		return nil, fmt.Errorf("parsing rule suggestions: %w", err)
	}

	result := make([]RuleSuggestion, 0, len(decoded))
	for _, s := range decoded {
		s.Keyword = strings.TrimSpace(s.Keyword)
		s.Category = strings.TrimSpace(s.Category)
		if s.Keyword == "" || s.Category == "" {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

// parseAnalysis decodes an analytics response. The model answers either with
// a JSON object {"text": ..., "chart": {...}} or with plain prose, which is
// passed through as text.
func parseAnalysis(raw string) (*AnalysisResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	clean := cleanModelJSON(trimmed)
	var envelope map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &envelope); err != nil {
		// Not JSON at all: treat the whole reply as free text.
		return &AnalysisResult{Text: trimmed}, nil
	}

	result := &AnalysisResult{}
	result.Text, _ = getStringField(envelope, "text", false)

	if rawChart, ok := envelope["chart"].(map[string]interface{}); ok {
		chart, err := ParseChartConfig(rawChart)
		if err != nil {
			return nil, fmt.Errorf("analysis response: %w", err)
		}
		result.Chart = chart
	} else if _, ok := envelope["chartType"]; ok {
		// Some replies are the bare chart object.
		chart, err := ParseChartConfig(envelope)
		if err != nil {
			return nil, fmt.Errorf("analysis response: %w", err)
		}
		result.Chart = chart
	}

	if result.Text == "" && result.Chart == nil {
		return nil, fmt.Errorf("analysis response carries neither text nor chart")
	}
	return result, nil
}
