// Package profile persists the collector's identity between sessions so
// every utterance carries the same speaker metadata.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"voxcollect/logger"
)

// Profile is the speaker metadata attached to every upload. UserID is
// assigned on first run and kept stable afterwards.
type Profile struct {
	UserID     string `json:"userId"`
	Gender     string `json:"gender"`
	UserAge    int    `json:"userAge"`
	DeviceType string `json:"deviceType"`
}

// Store reads and writes a profile at a fixed path.
type Store struct {
	path string
}

// NewStore creates a profile store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the stored profile. When no profile exists yet, a fresh
// one with a new user ID is created and persisted.
func (s *Store) Load() (Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		p := Profile{UserID: uuid.NewString()}
		if err := s.Save(p); err != nil {
			return Profile{}, err
		}
		logger.Info("created new user profile", logger.String("userId", p.UserID))
		return p, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if p.UserID == "" {
		p.UserID = uuid.NewString()
		if err := s.Save(p); err != nil {
			return Profile{}, err
		}
	}
	return p, nil
}

// Save writes the profile to disk, creating parent directories as needed.
func (s *Store) Save(p Profile) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create profile dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
