// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves credentials from a directory of plain-text
// files, falling back to environment variables. Each file holds one
// secret: the filename is the key and the trimmed contents the value.
//
// Known keys: openai-api-key, openalex-email.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Keys read by advisor-match.
const (
	OpenAIAPIKey  = "openai-api-key"
	OpenAlexEmail = "openalex-email"
)

// Set is a resolved collection of secrets.
type Set struct {
	files  map[string]string
	getenv func(string) string
}

// Load reads every regular, non-hidden file in dir. A missing directory
// is not an error and yields a Set backed only by the environment.
// Unreadable or empty files are skipped with a warning.
func Load(dir string) (*Set, error) {
	s := &Set{files: make(map[string]string), getenv: os.Getenv}
	if dir == "" {
		return s, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "key", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s.files[name] = value
		}
	}
	return s, nil
}

// Get returns the secret for key. A file wins over the environment
// variable derived from key ("openai-api-key" reads OPENAI_API_KEY).
func (s *Set) Get(key string) string {
	if v, ok := s.files[key]; ok {
		return v
	}
	if s.getenv == nil {
		return ""
	}
	return strings.TrimSpace(s.getenv(EnvName(key)))
}

// Keys returns the names of the file-backed secrets.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	return keys
}

// EnvName maps a secret key to its environment variable name.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
