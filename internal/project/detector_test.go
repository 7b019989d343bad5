package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMarker(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Base(path), err)
	}
}

func mkdir(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}
	return path
}

// TestFindProjectRoot tests workspace root detection climbing up the directory tree
func TestFindProjectRoot(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (string, string) // returns (startPath, expectedRoot)
	}{
		{
			name: "finds root with model file",
			setupFunc: func(t *testing.T) (string, string) {
				tmpDir := t.TempDir()
				writeMarker(t, filepath.Join(tmpDir, "farol.yaml"))
				return mkdir(t, filepath.Join(tmpDir, "data", "2024")), tmpDir
			},
		},
		{
			name: "finds root with settings file",
			setupFunc: func(t *testing.T) (string, string) {
				tmpDir := t.TempDir()
				writeMarker(t, filepath.Join(tmpDir, ".farolrc.yaml"))
				return mkdir(t, filepath.Join(tmpDir, "reports")), tmpDir
			},
		},
		{
			name: "no workspace - returns start path",
			setupFunc: func(t *testing.T) (string, string) {
				subDir := mkdir(t, filepath.Join(t.TempDir(), "no-markers"))
				return subDir, subDir
			},
		},
		{
			name: "directory named like the model is ignored",
			setupFunc: func(t *testing.T) (string, string) {
				subDir := mkdir(t, filepath.Join(t.TempDir(), "inner"))
				mkdir(t, filepath.Join(subDir, "farol.yaml"))
				return subDir, subDir
			},
		},
		{
			name: "nested workspaces - stops at nearest",
			setupFunc: func(t *testing.T) (string, string) {
				tmpDir := t.TempDir()
				writeMarker(t, filepath.Join(tmpDir, "farol.yaml"))
				inner := mkdir(t, filepath.Join(tmpDir, "regions", "south"))
				writeMarker(t, filepath.Join(inner, "farol.yaml"))
				return inner, inner
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			startPath, expectedRoot := tt.setupFunc(t)

			got, err := FindProjectRoot(startPath)
			if err != nil {
				t.Fatalf("FindProjectRoot() error = %v", err)
			}

			// Resolve symlinks (macOS /var -> /private/var)
			absGot, err := filepath.EvalSymlinks(got)
			if err != nil {
				absGot, _ = filepath.Abs(got)
			}
			absExpected, err := filepath.EvalSymlinks(expectedRoot)
			if err != nil {
				absExpected, _ = filepath.Abs(expectedRoot)
			}
			if absGot != absExpected {
				t.Errorf("FindProjectRoot() = %v, want %v", absGot, absExpected)
			}
		})
	}
}

// TestDetect tests workspace file detection
func TestDetect(t *testing.T) {
	tests := []struct {
		name         string
		files        []string
		wantModel    bool
		wantSettings string
	}{
		{name: "model and json settings", files: []string{"farol.yaml", ".farolrc.json"}, wantModel: true, wantSettings: ".farolrc.json"},
		{name: "settings only", files: []string{".farolrc.yml"}, wantSettings: ".farolrc.yml"},
		{name: "json settings preferred", files: []string{".farolrc.yaml", ".farolrc.json"}, wantSettings: ".farolrc.json"},
		{name: "empty", files: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			for _, f := range tt.files {
				writeMarker(t, filepath.Join(tmpDir, f))
			}

			info, err := Detect(tmpDir)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if info.Root != tmpDir {
				t.Errorf("Root = %v, want %v", info.Root, tmpDir)
			}
			if (info.Model != "") != tt.wantModel {
				t.Errorf("Model = %q, want model %v", info.Model, tt.wantModel)
			}
			wantSettings := ""
			if tt.wantSettings != "" {
				wantSettings = filepath.Join(tmpDir, tt.wantSettings)
			}
			if info.Settings != wantSettings {
				t.Errorf("Settings = %q, want %q", info.Settings, wantSettings)
			}
		})
	}
}
