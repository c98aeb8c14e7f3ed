package health

import (
	"encoding/json"
	"os"

	"stockpulse/internal/model"
)

// LoadState reads the health state from a JSON file. Returns a zero state
// if the file doesn't exist.
func LoadState(filePath string) (*model.HealthState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.HealthState{}, nil
		}
		return nil, err
	}
	var state model.HealthState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the health state to a JSON file.
func SaveState(filePath string, state *model.HealthState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
