package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"permit-tracker-go/pkg/logger"
)

const dotenvFilename = ".env"

// loadDotEnv applies ENV_FILE when set. Otherwise it finds the nearest .env
// walking up from the working directory and layers .env.<ENV> from the
// same directory over it. Variables already in the process environment
// always win. A missing .env is reported as os.ErrNotExist; a missing
// ENV_FILE is an error.
func loadDotEnv(log logger.Logger) error {
	files, err := dotEnvFiles()
	if err != nil {
		return err
	}

	values := make(map[string]string)
	for _, path := range files {
		fileValues, err := godotenv.Read(path)
		if err != nil {
			return err
		}
		for key, value := range fileValues {
			values[key] = value
		}
	}

	loaded, skipped, err := applyEnv(values)
	if err != nil {
		return err
	}
	log.Info("dotenv: loaded variables", "count", loaded, "skipped", skipped, "files", files)
	return nil
}

func dotEnvFiles() ([]string, error) {
	if explicit := strings.TrimSpace(os.Getenv("ENV_FILE")); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("ENV_FILE: %v", err)
		}
		return []string{explicit}, nil
	}

	base, err := findUp(dotenvFilename)
	if err != nil {
		return nil, err
	}
	files := []string{base}

	if env := strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))); env != "" {
		overlay := base + "." + env
		if info, err := os.Stat(overlay); err == nil && !info.IsDir() {
			files = append(files, overlay)
		}
	}
	return files, nil
}

func findUp(filename string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func applyEnv(values map[string]string) (loaded, skipped int, err error) {
	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists {
			skipped++
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return loaded, skipped, err
		}
		loaded++
	}
	return loaded, skipped, nil
}
