package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_InvalidGraph(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		pass "Clear" "A" {
			color = [1, 0, 0, 1]
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, []string{filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should fail on a graph description with a syntax error")
	require.Contains(t, runErr.Error(), "failed to load graph description")
}

func TestRun_RendersGraph(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
graph "Smoke" {
  libraries = ["CorePasses"]
}

pass "Clear" "Fill" {
  color = [1, 1, 1, 1]
}

pass "Scale" "Dim" {
  factor = 0.5
}

edge {
  from = "Fill.out"
  to   = "Dim.in"
}

output "Dim.out" {}
`
	filePath := filepath.Join(t.TempDir(), "smoke.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(src), 0600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, []string{"--frames", "2", "--width", "4", "--height", "4", "--log-format", "text", filePath})

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, strings.Contains(out.String(), "Rendering finished."), "expected the finish log line")
	require.Contains(t, out.String(), "output=Dim.out")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
