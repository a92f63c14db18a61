// Package imagefile finds and validates the image files the pipeline works on.
package imagefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrImageNotFound is returned when an image path does not exist.
	ErrImageNotFound = errors.New("image file not found")

	// ErrNotRegularFile is returned when an image path is a directory or device.
	ErrNotRegularFile = errors.New("path is not a regular file")

	// ErrUnsupportedFormat is returned for files whose extension is not a supported image type.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// supportedExtensions lists the image types the OCR engine is asked to read.
var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".gif", ".webp"}

// SupportedExtensions returns a copy of the supported extensions, lower case with a leading dot.
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// IsSupported reports whether path has a supported image extension, ignoring case.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range supportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Find returns the supported images directly inside dir, sorted by path.
// A directory that does not exist yields an empty result, not an error.
func Find(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read image directory %s: %w", dir, err)
	}

	seen := make(map[string]bool, len(entries))
	images := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if seen[path] {
			continue
		}
		seen[path] = true
		images = append(images, path)
	}

	sort.Strings(images)
	return images, nil
}

// Validate checks that path exists, is a regular file and has a supported extension.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return fmt.Errorf("error accessing image file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	if !IsSupported(path) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}

// Resolve turns a name typed by the user into an existing path. It tries the
// name as given, then inside dir, then inside dir with each supported extension
// appended.
func Resolve(name, dir string) (string, error) {
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" {
		return "", fmt.Errorf("%w: empty path", ErrImageNotFound)
	}

	candidates := []string{name}
	if dir != "" {
		candidates = append(candidates, filepath.Join(dir, name))
		for _, ext := range supportedExtensions {
			candidates = append(candidates, filepath.Join(dir, name+ext))
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrImageNotFound, name)
}

// HumanSize formats a file size the way the image menu shows it.
func HumanSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "N/A"
	}
	size := info.Size()
	switch {
	case size < 1024:
		return fmt.Sprintf("%dB", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(size)/(1024*1024))
	}
}
