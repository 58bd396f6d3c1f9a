// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  []string
	}{
		{
			name: "reads key files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIAPIKey, "  sk-abc123  \n")
				writeFile(t, dir, OpenAlexEmail, "user@example.com\n")
				return dir
			},
			want: []string{OpenAIAPIKey, OpenAlexEmail},
		},
		{
			name: "nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: []string{},
		},
		{
			name: "skips empty files dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				writeFile(t, dir, ".hidden-key", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: []string{OpenAIAPIKey},
		},
		{
			name:  "empty path",
			setup: func(t *testing.T) string { return "" },
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got.Keys())
		})
	}
}

func TestGetTrimsFileValue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, OpenAIAPIKey, "  sk-abc123  \n")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-abc123", s.Get(OpenAIAPIKey))
}

func TestGetFallsBackToEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, OpenAIAPIKey, "from-file")
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("OPENALEX_EMAIL", "env@example.com")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-file", s.Get(OpenAIAPIKey))
	assert.Equal(t, "env@example.com", s.Get(OpenAlexEmail))
	assert.Empty(t, s.Get("missing-key"))
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"good-key"}, got.Keys())
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "OPENAI_API_KEY", EnvName(OpenAIAPIKey))
	assert.Equal(t, "OPENALEX_EMAIL", EnvName(OpenAlexEmail))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
