package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"resume-matcher/internal/shared/telemetry"
)

// loadEnvFiles loads the given .env files if they exist. Variables already set
// in the process environment win.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			telemetry.Warn("config.dotenv_failed", map[string]any{"path": path, "error": err})
		}
	}
}
