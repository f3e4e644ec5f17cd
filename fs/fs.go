// Package fs provides filesystem-backed attachment retrieval and deep-link
// location persistence.
package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// DefaultStateDir returns the directory reportview keeps location files in.
// Uses XDG_STATE_HOME if set, otherwise falls back to ~/.local/state/reportview,
// or system temp directory if home is unavailable.
func DefaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "reportview")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "reportview")
	}
	return filepath.Join(home, ".local", "state", "reportview")
}

// DefaultLocationFile returns the location file for a report document. Each
// report gets its own file, keyed by a hash of its absolute path.
func DefaultLocationFile(stateDir, reportPath string) string {
	if abs, err := filepath.Abs(reportPath); err == nil {
		reportPath = abs
	}
	sum := sha256.Sum256([]byte(reportPath))
	return filepath.Join(stateDir, hex.EncodeToString(sum[:8])+".fragment")
}
