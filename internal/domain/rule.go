package domain

// Rule is a categorization directive: transactions whose description matches
// Keyword (a literal substring, or a regular expression when IsRegex is set)
// are assigned Category. When several rules match the same description, the
// one with the longest keyword wins.
type Rule struct {
	ID       string `json:"id"`
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	IsRegex  bool   `json:"isRegex"`
}
