// Package weidu drives the external weidu binary component-by-component,
// classifying each invocation's outcome from its exit status and log
// output.
package weidu

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Locate finds the weidu executable: a configured path first, then
// `weidu`/`weidu.exe` inside gameDir, then the same names on PATH. Missing
// weidu is a fatal setup error, reported before any mod is processed.
func Locate(configuredPath, gameDir string) (string, error) {
	if configuredPath != "" {
		if _, err := os.Stat(configuredPath); err != nil {
			return "", fmt.Errorf("configured weidu_path %s: %w", configuredPath, err)
		}
		return configuredPath, nil
	}

	binName := "weidu"
	if runtime.GOOS == "windows" {
		binName = "weidu.exe"
	}

	inGameDir := filepath.Join(gameDir, binName)
	if _, err := os.Stat(inGameDir); err == nil {
		return inGameDir, nil
	}

	path, err := exec.LookPath(binName)
	if err != nil {
		return "", fmt.Errorf("weidu executable not found in game directory or PATH: %w", err)
	}
	return path, nil
}
