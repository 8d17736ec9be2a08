// Package files loads file contents for inclusion in a deliberation
// prompt: explicit paths, glob patterns with recursive "**" support, and
// XML-style wrapping the models are prompted to read.
package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Expand resolves a glob pattern to the sorted list of matching files.
// Patterns containing "**" match recursively through subdirectories;
// everything else follows filepath.Match semantics.
func Expand(pattern string) ([]string, error) {
	if !strings.Contains(pattern, "**") {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		return onlyFiles(matches), nil
	}
	return expandRecursive(pattern)
}

// expandRecursive handles "root/**/tail" patterns by walking root and
// matching tail against the trailing path segments of each file.
func expandRecursive(pattern string) ([]string, error) {
	idx := strings.Index(pattern, "**")
	root := filepath.Dir(pattern[:idx] + "x")
	tail := strings.TrimPrefix(pattern[idx+2:], string(filepath.Separator))
	tail = strings.TrimPrefix(tail, "/")

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		ok, err := matchTail(tail, rel)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// matchTail reports whether the tail pattern matches the trailing
// segments of rel. An empty tail means "every file under root".
func matchTail(tail, rel string) (bool, error) {
	if tail == "" {
		return true, nil
	}
	relParts := strings.Split(filepath.ToSlash(rel), "/")
	tailParts := strings.Split(filepath.ToSlash(tail), "/")
	if len(tailParts) > len(relParts) {
		return false, nil
	}
	suffix := strings.Join(relParts[len(relParts)-len(tailParts):], "/")
	return filepath.Match(filepath.ToSlash(tail), suffix)
}

func onlyFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Load reads the given explicit paths and expanded patterns and returns
// their contents wrapped in <file path="..."> tags, joined by blank
// lines. Duplicates are dropped preserving first occurrence; unreadable
// files are skipped.
func Load(paths, patterns []string) (string, error) {
	all := make([]string, 0, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			all = append(all, p)
		}
	}
	for _, pattern := range patterns {
		expanded, err := Expand(pattern)
		if err != nil {
			return "", err
		}
		all = append(all, expanded...)
	}

	seen := make(map[string]bool)
	var blocks []string
	for _, p := range all {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		content, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("<file path=%q>\n%s\n</file>", p, content))
	}
	return strings.Join(blocks, "\n\n"), nil
}

// BuildPrompt prepends the loaded file contents to the query. With no
// files the query passes through unchanged.
func BuildPrompt(query string, paths, patterns []string) (string, error) {
	content, err := Load(paths, patterns)
	if err != nil {
		return "", err
	}
	if content == "" {
		return query, nil
	}
	return content + "\n\n" + query, nil
}
