package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPresets = `version: "1"
presets:
  - id: critical
    size: 16
    beta: 0.4407
    coupling: 1.0
    field: 0.0
  - id: field
    size: 32
    beta: 0.5
    coupling: 1.0
    field: 0.2
`

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	return path
}

func TestGetPreset_Found(t *testing.T) {
	path := writePresets(t, testPresets)

	p, err := GetPreset(path, "field")
	require.NoError(t, err)
	assert.Equal(t, Preset{ID: "field", Size: 32, Beta: 0.5, Coupling: 1.0, Field: 0.2}, p)
}

func TestGetPreset_NotFound(t *testing.T) {
	path := writePresets(t, testPresets)

	_, err := GetPreset(path, "nonexistent")
	assert.ErrorContains(t, err, "nonexistent")
}

func TestGetPreset_MissingFile(t *testing.T) {
	_, err := GetPreset(filepath.Join(t.TempDir(), "absent.yaml"), "critical")
	assert.Error(t, err)
}

func TestGetPreset_MalformedYAML(t *testing.T) {
	path := writePresets(t, "presets: [unclosed")
	_, err := GetPreset(path, "critical")
	assert.Error(t, err)
}
