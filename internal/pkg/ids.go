package pkg

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateGameID - generates a unique identifier for the game.
func GenerateGameID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate game id: %w", err)
	}

	return id.String(), nil
}

// GenerateNewSessionID - generates a new unique player id.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
