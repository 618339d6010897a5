//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedOptiscanPath holds the path to a shared optiscan binary built once for all tests.
	sharedOptiscanPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getOptiscanBinary returns the path to the optiscan binary, building it once if needed.
func getOptiscanBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "optiscan-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		optiscanPath := filepath.Join(tempDir, "optiscan")
		buildCmd := exec.Command("go", "build", "-o", optiscanPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build optiscan: %v", err))
		}

		sharedOptiscanPath = optiscanPath
	})

	return sharedOptiscanPath
}

// writeSampleProject creates a small source tree for analyze runs.
func writeSampleProject(dir string) error {
	files := map[string]string{
		"app.py": `import os
import sys

def main():
    """Entry point."""
    for i in range(10):
        if i % 2 == 0:
            print(i)
    return 0
`,
		"util.py": `def helper(x):
    # doubles the input
    return x * 2

def other(y):
    return y + 1
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
