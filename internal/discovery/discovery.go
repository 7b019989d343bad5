package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dotcommander/farol/internal/types"
)

var (
	ErrNoMatch   = fmt.Errorf("%w: no table file matches", types.ErrLookup)
	ErrAmbiguous = fmt.Errorf("%w: more than one table file matches", types.ErrLookup)
)

// Format is the on-disk encoding of a table.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatJSON
	FormatYAML
	FormatXLSX
)

// String returns the human-readable name of the format.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// Binary reports whether the format is not plain text.
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return FormatUnknown, fmt.Errorf("invalid format %q: valid formats are csv, json, yaml, xlsx", s)
	}
}

// FormatPattern maps a basename glob to a Format. Patterns are matched in
// order against the lowercased basename; first match wins.
type FormatPattern struct {
	Pattern string
	Format  Format
}

var formatPatterns = []FormatPattern{
	{"*.csv", FormatCSV},
	{"*.json", FormatJSON},
	{"*.{yaml,yml}", FormatYAML},
	{"*.xlsx", FormatXLSX},
}

// DetectFormat determines the table format of path from its extension.
func DetectFormat(path string) (Format, error) {
	base := strings.ToLower(filepath.Base(path))
	for _, fp := range formatPatterns {
		matched, err := doublestar.Match(fp.Pattern, base)
		if err != nil {
			continue
		}
		if matched {
			return fp.Format, nil
		}
	}

	switch ext := filepath.Ext(path); ext {
	case "":
		return FormatUnknown, fmt.Errorf("unsupported file: %s has no extension. farol reads .csv, .json, .yaml and .xlsx tables", filepath.Base(path))
	case ".parquet":
		return FormatUnknown, fmt.Errorf("unsupported file type: %s. Convert parquet tables to .csv or .xlsx first", ext)
	default:
		return FormatUnknown, fmt.Errorf("unsupported file type: %s. farol reads .csv, .json, .yaml and .xlsx tables", ext)
	}
}

// ValidateFilePath checks that path is a readable, non-empty table file and
// returns its absolute path. Text formats are also checked for binary content.
func ValidateFilePath(path string) (absPath string, err error) {
	absPath, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", absPath)
		}
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", absPath)
		}
		return "", fmt.Errorf("cannot access file: %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", absPath)
	}

	if info.Size() == 0 {
		return "", fmt.Errorf("file is empty: %s", absPath)
	}

	format, err := DetectFormat(absPath)
	if err != nil {
		return "", err
	}
	if format.Binary() {
		return absPath, nil
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", absPath, err)
	}
	if bytes.Contains(buf[:n], []byte{0}) {
		return "", fmt.Errorf("file appears to be binary, not %s: %s", format, absPath)
	}

	return absPath, nil
}

// File is a discovered table file.
type File struct {
	Path    string
	RelPath string
	Size    int64
	Format  Format
}

// FileDiscovery resolves table files relative to a root directory.
type FileDiscovery struct {
	rootPath string
}

// NewFileDiscovery creates a new FileDiscovery instance
func NewFileDiscovery(rootPath string) *FileDiscovery {
	if rootPath == "" {
		rootPath = "."
	}
	return &FileDiscovery{rootPath: rootPath}
}

// Root returns the directory patterns are resolved against.
func (fd *FileDiscovery) Root() string {
	return fd.rootPath
}

// Find returns every table file matching pattern, sorted by path. Absolute
// patterns are split at their first glob segment. Directories and files of an
// unknown format are skipped.
func (fd *FileDiscovery) Find(pattern string) ([]File, error) {
	root, rel := fd.rootPath, filepath.ToSlash(pattern)
	if filepath.IsAbs(pattern) {
		root, rel = doublestar.SplitPattern(filepath.ToSlash(pattern))
	}

	matches, err := doublestar.Glob(os.DirFS(root), rel)
	if err != nil {
		return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
	}
	sort.Strings(matches)

	var files []File
	for _, match := range matches {
		full := filepath.Join(root, filepath.FromSlash(match))
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		format, err := DetectFormat(full)
		if err != nil {
			continue
		}
		files = append(files, File{
			Path:    full,
			RelPath: match,
			Size:    info.Size(),
			Format:  format,
		})
	}
	return files, nil
}

// FindOne resolves pattern to exactly one table file.
func (fd *FileDiscovery) FindOne(pattern string) (File, error) {
	files, err := fd.Find(pattern)
	if err != nil {
		return File{}, err
	}
	switch len(files) {
	case 0:
		return File{}, fmt.Errorf("%w %q under %s", ErrNoMatch, pattern, fd.rootPath)
	case 1:
		return files[0], nil
	default:
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.RelPath
		}
		return File{}, fmt.Errorf("%w %q: %s", ErrAmbiguous, pattern, strings.Join(names, ", "))
	}
}

// IsLookupError reports whether err came from pattern resolution.
func IsLookupError(err error) bool {
	return errors.Is(err, ErrNoMatch) || errors.Is(err, ErrAmbiguous)
}
