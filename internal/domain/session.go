package domain

// Asset is a tracked net-worth position (account balance, property, ...).
type Asset struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Goal is a savings goal tracked on the dashboard.
type Goal struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	TargetDate    string  `json:"targetDate,omitempty"` // YYYY-MM-DD
}

// WidgetConfig is the dashboard placement of one chart widget. Rendering is
// the client's concern; the server only stores the configuration.
type WidgetConfig struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}
