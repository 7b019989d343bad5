// Package project locates the scoring workspace a command runs in: the
// nearest directory holding a model file or run settings file.
package project

import (
	"os"
	"path/filepath"

	"github.com/dotcommander/farol/internal/config"
)

// Info describes a detected workspace. Model and Settings are empty when the
// workspace has no such file.
type Info struct {
	Root     string
	Model    string
	Settings string
}

// FindProjectRoot searches for a workspace root starting from the given path
// and climbing up the directory tree if needed. When none is found the
// absolute start path is returned.
func FindProjectRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	currentDir := absPath
	for {
		if isProjectRoot(currentDir) {
			return currentDir, nil
		}
		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		currentDir = parent
	}
	return absPath, nil
}

// isProjectRoot reports whether path holds a model or settings file.
func isProjectRoot(path string) bool {
	if fileExists(filepath.Join(path, config.DefaultModelFile)) {
		return true
	}
	return settingsFile(path) != ""
}

// Detect describes the workspace rooted at rootPath.
func Detect(rootPath string) (*Info, error) {
	info := &Info{Root: rootPath}
	if model := filepath.Join(rootPath, config.DefaultModelFile); fileExists(model) {
		info.Model = model
	}
	info.Settings = settingsFile(rootPath)
	return info, nil
}

// settingsFile returns the first run settings file in dir, or "".
func settingsFile(dir string) string {
	for _, name := range config.ConfigFiles {
		if path := filepath.Join(dir, name); fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
