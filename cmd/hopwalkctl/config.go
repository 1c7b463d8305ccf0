package main

import (
	"encoding/json"
	"fmt"
	"os"

	hopapi "hopwalk/pkg/hopwalk"
)

func loadRunRequestFromConfig(path string) (hopapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hopapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return hopapi.RunRequest{}, err
	}

	var req hopapi.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := raw["patterns"]; ok {
		patterns, err := asPatterns(v)
		if err != nil {
			return hopapi.RunRequest{}, err
		}
		req.Patterns = patterns
	}
	if v, ok := asFloat64(raw["temp"]); ok {
		req.Temp = v
	}
	if v, ok := asInt64(raw["steps"]); ok {
		req.Steps = v
	}
	if v, ok := asInt64(raw["refine_every"]); ok {
		req.RefineEvery = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asBool(raw["fixed_temperature"]); ok {
		req.FixedTemperature = v
	}
	if v, ok := asString(raw["resume_from"]); ok {
		req.ResumeFrom = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (hopapi.RunRequest, error) {
	if configPath == "" {
		return hopapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return hopapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *hopapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "temp":
			req.Temp = v.(float64)
		case "steps":
			req.Steps = v.(int64)
		case "refine-every":
			req.RefineEvery = v.(int64)
		case "seed":
			req.Seed = v.(int64)
		case "fixed-temp":
			req.FixedTemperature = v.(bool)
		case "resume-from":
			req.ResumeFrom = v.(string)
		}
	}
}

// loadPatterns reads a JSON array of patterns. Each pattern is either an
// array of booleans / 0-1 numbers, or a string of '+'/'-' characters.
func loadPatterns(path string) ([][]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("patterns %s: %w", path, err)
	}
	patterns, err := asPatterns(raw)
	if err != nil {
		return nil, fmt.Errorf("patterns %s: %w", path, err)
	}
	return patterns, nil
}

func asPatterns(v any) ([][]bool, error) {
	rows, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("patterns must be a JSON array, got %T", v)
	}
	patterns := make([][]bool, 0, len(rows))
	for i, row := range rows {
		pattern, err := asPattern(row)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

func asPattern(v any) ([]bool, error) {
	switch row := v.(type) {
	case string:
		pattern := make([]bool, 0, len(row))
		for _, ch := range row {
			switch ch {
			case '+', '1':
				pattern = append(pattern, true)
			case '-', '0':
				pattern = append(pattern, false)
			default:
				return nil, fmt.Errorf("unexpected pattern character %q", ch)
			}
		}
		return pattern, nil
	case []any:
		pattern := make([]bool, 0, len(row))
		for _, cell := range row {
			b, err := asSpin(cell)
			if err != nil {
				return nil, err
			}
			pattern = append(pattern, b)
		}
		return pattern, nil
	default:
		return nil, fmt.Errorf("pattern must be a string or array, got %T", v)
	}
}

func asSpin(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		switch x {
		case 0, -1:
			return false, nil
		case 1:
			return true, nil
		}
		return false, fmt.Errorf("numeric pattern cell must be -1, 0, or 1, got %g", x)
	default:
		return false, fmt.Errorf("pattern cell must be a boolean or number, got %T", v)
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}
