// Package fileutils provides common file operations used throughout the application.
package fileutils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// FindInputCSV locates a CSV export under dataDir by base name.
// CRM downloads arrive with name variants ("reserva.csv", "reserva (1).csv")
// and are sometimes filed into backup subdirectories, so the exact name is
// tried first and then a recursive prefix search.
func FindInputCSV(dataDir, baseName string) (string, error) {
	exact := filepath.Join(dataDir, baseName+".csv")
	if FileExists(exact) {
		return exact, nil
	}

	var match string
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || match != "" {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, baseName) && strings.HasSuffix(name, ".csv") {
			match = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("error searching for %s.csv in %s: %w", baseName, dataDir, err)
	}
	if match == "" {
		return "", fmt.Errorf("no %s.csv found in %s", baseName, dataDir)
	}
	return match, nil
}
