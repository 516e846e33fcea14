package ai

import (
	"fmt"
	"strings"
)

// ChartKind discriminates the supported chart configurations.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartArea ChartKind = "area"
	ChartPie  ChartKind = "pie"
)

// Series describes one plotted series; Key selects the field in each data
// point.
type Series struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
}

// DataPoint is one row of chart data: the x-axis value plus one numeric value
// per series key.
type DataPoint map[string]interface{}

// ChartConfig is a declarative chart description returned by the model and
// rendered client-side. Axis-based kinds (bar, line, area) require XAxisKey
// and at least one series; pie charts carry name/value pairs instead.
type ChartConfig struct {
	Kind     ChartKind   `json:"chartType"`
	Title    string      `json:"title"`
	XAxisKey string      `json:"xAxisKey,omitempty"`
	Series   []Series    `json:"series,omitempty"`
	Data     []DataPoint `json:"data"`
}

// ParseChartConfig validates a raw model payload into a ChartConfig. The
// model is untrusted: malformed payloads are rejected with an error rather
// than passed through.
func ParseChartConfig(raw map[string]interface{}) (*ChartConfig, error) {
	kindStr, err := getStringField(raw, "chartType", true)
	if err != nil {
		return nil, fmt.Errorf("chart config: %w", err)
	}

	cfg := &ChartConfig{
		Kind: ChartKind(strings.ToLower(strings.TrimSpace(kindStr))),
	}
	cfg.Title, _ = getStringField(raw, "title", false)

	switch cfg.Kind {
	case ChartBar, ChartLine, ChartArea:
		if err := parseAxisChart(raw, cfg); err != nil {
			return nil, err
		}
	case ChartPie:
		if err := parsePieChart(raw, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("chart config: unsupported chartType %q", kindStr)
	}

	return cfg, nil
}

func parseAxisChart(raw map[string]interface{}, cfg *ChartConfig) error {
	xKey, err := getStringField(raw, "xAxisKey", true)
	if err != nil {
		return fmt.Errorf("%s chart: %w", cfg.Kind, err)
	}
	cfg.XAxisKey = xKey

	series, err := parseSeries(raw)
	if err != nil {
		return fmt.Errorf("%s chart: %w", cfg.Kind, err)
	}
	if len(series) == 0 {
		return fmt.Errorf("%s chart: no series", cfg.Kind)
	}
	cfg.Series = series

	data, err := parseData(raw)
	if err != nil {
		return fmt.Errorf("%s chart: %w", cfg.Kind, err)
	}
	for i, point := range data {
		if _, ok := point[xKey]; !ok {
			return fmt.Errorf("%s chart: data point %d is missing x-axis key %q", cfg.Kind, i, xKey)
		}
		for _, s := range series {
			v, ok := point[s.Key]
			if !ok {
				continue
			}
			if _, ok := v.(float64); !ok {
				return fmt.Errorf("%s chart: data point %d field %q is %T, want number", cfg.Kind, i, s.Key, v)
			}
		}
	}
	cfg.Data = data
	return nil
}

func parsePieChart(raw map[string]interface{}, cfg *ChartConfig) error {
	data, err := parseData(raw)
	if err != nil {
		return fmt.Errorf("pie chart: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("pie chart: no data")
	}
	for i, point := range data {
		if _, ok := point["name"].(string); !ok {
			return fmt.Errorf("pie chart: data point %d is missing string field \"name\"", i)
		}
		if _, ok := point["value"].(float64); !ok {
			return fmt.Errorf("pie chart: data point %d is missing numeric field \"value\"", i)
		}
	}
	cfg.Data = data
	return nil
}

func parseSeries(raw map[string]interface{}) ([]Series, error) {
	v, ok := raw["series"]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field \"series\" is %T, want array", v)
	}

	series := make([]Series, 0, len(items))
	for i, item := range items {
		switch s := item.(type) {
		case string:
			series = append(series, Series{Key: s})
		case map[string]interface{}:
			key, err := getStringField(s, "key", true)
			if err != nil {
				return nil, fmt.Errorf("series %d: %w", i, err)
			}
			label, _ := getStringField(s, "label", false)
			series = append(series, Series{Key: key, Label: label})
		default:
			return nil, fmt.Errorf("series %d is %T, want string or object", i, item)
		}
	}
	return series, nil
}

func parseData(raw map[string]interface{}) ([]DataPoint, error) {
	v, ok := raw["data"]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing required field \"data\"")
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field \"data\" is %T, want array", v)
	}

	data := make([]DataPoint, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("data point %d is %T, want object", i, item)
		}
		data = append(data, DataPoint(obj))
	}
	return data, nil
}
