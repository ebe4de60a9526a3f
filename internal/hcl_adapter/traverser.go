package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/framegraph/internal/ctxlog"
)

// resolvePaths returns every .hcl file named by paths. A file path must have
// the .hcl extension; a directory is scanned recursively and its files are
// returned in lexical order. Files named twice are returned once.
func resolvePaths(ctx context.Context, paths []string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, path := range paths {
		logger.Debug("Resolving graph path.", "path", path)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("graph path not found: %s", path)
		}
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) != ".hcl" {
				return nil, fmt.Errorf("specified file is not an .hcl file: %s", path)
			}
			add(path)
			continue
		}

		logger.Debug("Path is a directory, scanning for HCL files.", "directory", path)
		found, err := findHCLFilesRecursive(path)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

// findHCLFilesRecursive scans a directory recursively for files with the .hcl extension.
func findHCLFilesRecursive(rootDir string) ([]string, error) {
	var hclFiles []string
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".hcl" {
			hclFiles = append(hclFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(hclFiles)
	return hclFiles, nil
}
