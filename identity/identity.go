// Package identity provides the persistent agent identity the slave uses to
// authenticate to the channel and the controller.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const idFileName = "slave-id.txt"

// Load resolves the slave id. A configured id wins; otherwise the id is
// loaded from the data directory, or generated and persisted there on first
// run so the identity survives restarts.
func Load(dataDir, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	filePath := filepath.Join(dataDir, idFileName)

	if data, err := os.ReadFile(filePath); err == nil {
		id := strings.TrimSpace(string(data))
		if _, err := uuid.Parse(id); err != nil {
			return "", fmt.Errorf("invalid slave id in %s: %w", filePath, err)
		}
		return id, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read slave id file %s: %w", filePath, err)
	}

	id := uuid.New().String()

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dataDir, err)
	}
	if err := os.WriteFile(filePath, []byte(id+"\n"), 0644); err != nil {
		return "", fmt.Errorf("failed to write slave id to %s: %w", filePath, err)
	}

	return id, nil
}
