package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envFileVar names the variable holding the dotenv file path.
const envFileVar = "ENV_FILE"

// parseEnv overlays HEALTH_* environment variables onto config.
//
// A dotenv file (path from ENV_FILE, ".env" by default) is loaded first if it
// exists; variables already present in the process environment win over the
// file. Unset variables leave the current values untouched. A malformed
// dotenv file or an unparsable value panics, like the other config loaders.
func parseEnv(config *Config) {
	path := os.Getenv(envFileVar)
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
