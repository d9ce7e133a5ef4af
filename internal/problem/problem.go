package problem

import (
	"encoding/json"
	"fmt"
	"os"
)

// TestCase is a visible example shown to the solver
type TestCase struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// StartCode is the starter template for one language
type StartCode struct {
	Language    string `json:"language"`
	InitialCode string `json:"initialCode"`
}

// Problem describes the problem currently open in the workspace
type Problem struct {
	ID               string      `json:"_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Difficulty       string      `json:"difficulty,omitempty"`
	Tags             string      `json:"tags,omitempty"`
	VisibleTestCases []TestCase  `json:"visibleTestCases"`
	StartCode        []StartCode `json:"startCode"`
}

// LoadFile reads a problem descriptor from a JSON file
func LoadFile(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}

	var p Problem
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem: %w", err)
	}
	return &p, nil
}
