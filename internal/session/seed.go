package session

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSeed reads initial turns from a JSON array of {"role","text"} objects.
// An empty path means no seed.
func LoadSeed(path string) ([]Seed, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed []Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed: %w", err)
	}
	for i, s := range seed {
		if s.Role != RoleUser && s.Role != RoleAssistant {
			return nil, fmt.Errorf("seed turn %d: unknown role %q", i, s.Role)
		}
		if s.Text == "" {
			return nil, fmt.Errorf("seed turn %d: empty text", i)
		}
	}
	return seed, nil
}
