package ai

import (
	"encoding/json"
	"strings"

	"ledgerlens/internal/domain"
)

func buildCategorizePrompt(txns []TransactionRef, categories []string) string {
	var b strings.Builder
	b.WriteString("You are a personal-finance transaction categorizer.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Assign each transaction below to the most appropriate category.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a JSON array of objects {\"id\": string, \"category\": string}.\n")
	b.WriteString("- Return exactly one object per input transaction, same ids.\n\n")

	b.WriteString("Use ONLY the following categories:\n")
	for _, c := range categories {
		b.WriteString("- " + c + "\n")
	}
	b.WriteString("\nIf you are unsure, use \"" + domain.Uncategorized + "\".\n")
	b.WriteString("Do NOT wrap the response in code fences.\n\n")

	b.WriteString("Transactions:\n")
	data, _ := json.MarshalIndent(txns, "", "  ")
	b.Write(data)
	return b.String()
}

func buildMineRulesPrompt(txns []domain.Transaction) string {
	type sample struct {
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	samples := make([]sample, 0, len(txns))
	for _, t := range txns {
		if t.Category == domain.Uncategorized || t.Category == "" {
			continue
		}
		samples = append(samples, sample{Description: t.Description, Category: t.Category})
	}

	var b strings.Builder
	b.WriteString("You derive reusable categorization rules from categorized bank transactions.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Find recurring merchant keywords that reliably predict a category.\n")
	b.WriteString("- Output STRICT JSON only: an array of {\"keyword\": string, \"category\": string}.\n")
	b.WriteString("- Keywords must be lowercase literal substrings of the descriptions, as specific as possible.\n")
	b.WriteString("- Skip one-off transactions; only suggest keywords that appear repeatedly.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n\n")

	b.WriteString("Categorized history:\n")
	data, _ := json.MarshalIndent(samples, "", "  ")
	b.Write(data)
	return b.String()
}

func buildAnalyzePrompt(query string, txns []domain.Transaction) string {
	var b strings.Builder
	b.WriteString("You are a personal-finance analytics assistant answering questions about the user's transactions.\n\n")
	b.WriteString("Answer with STRICT JSON: {\"text\": string} for a prose answer, or\n")
	b.WriteString("{\"text\": string, \"chart\": {...}} when a chart helps.\n\n")
	b.WriteString("A chart object has these fields:\n")
	b.WriteString("- \"chartType\": one of \"bar\", \"line\", \"area\", \"pie\"\n")
	b.WriteString("- \"title\": string\n")
	b.WriteString("- \"xAxisKey\": string (bar/line/area only)\n")
	b.WriteString("- \"series\": array of {\"key\": string, \"label\": string} (bar/line/area only)\n")
	b.WriteString("- \"data\": array of objects; pie data points are {\"name\": string, \"value\": number}\n\n")
	b.WriteString("Do NOT wrap the response in code fences.\n\n")

	b.WriteString("Question: " + query + "\n\n")
	b.WriteString("Transactions:\n")
	data, _ := json.MarshalIndent(txns, "", "  ")
	b.Write(data)
	return b.String()
}
