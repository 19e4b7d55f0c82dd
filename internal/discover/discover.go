// Package discover expands command line paths into blueprint files.
package discover

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tonistiigi/fsutil"
)

// ErrNoIgnoreFile indicates a directory has no .smithyignore.
var ErrNoIgnoreFile = errors.New("no ignore file found")

// ErrNoFiles is returned when the given paths hold no blueprint files.
var ErrNoFiles = errors.New("no blueprint files found")

const (
	_ignoreFile = ".smithyignore"
	_extension  = ".kdl"
)

// Files expands paths into blueprint files. Files are kept whatever their
// extension; directories are walked for *.kdl files, skipping anything
// matched by the directory's .smithyignore. The result keeps the order of
// paths, directory contents sorted, with duplicates dropped.
func Files(ctx context.Context, paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := walk(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}

	seen := make(map[string]struct{}, len(out))
	out = slices.DeleteFunc(out, func(p string) bool {
		key := filepath.Clean(p)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		return false
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, strings.Join(paths, ", "))
	}
	return out, nil
}

func walk(ctx context.Context, dir string) ([]string, error) {
	excludes, err := LoadIgnorePatterns(dir)
	if err != nil && !errors.Is(err, ErrNoIgnoreFile) {
		return nil, err
	}

	base, err := fsutil.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dir, err)
	}
	filtered, err := fsutil.NewFilterFS(base, &fsutil.FilterOpt{ExcludePatterns: excludes})
	if err != nil {
		return nil, fmt.Errorf("filtering %s: %w", dir, err)
	}

	var found []string
	err = filtered.Walk(ctx, "", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != _extension {
			return nil
		}
		found = append(found, filepath.Join(dir, path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	slices.Sort(found)
	return found, nil
}

// LoadIgnorePatterns reads .smithyignore from dir. Returns ErrNoIgnoreFile
// when there is none.
func LoadIgnorePatterns(dir string) ([]string, error) {
	patterns, err := readPatternFile(filepath.Join(dir, _ignoreFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoIgnoreFile
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", _ignoreFile, err)
	}
	return patterns, nil
}

// readPatternFile parses a newline-delimited ignore file.
// Blank lines and comments (lines starting with #) are skipped.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	patterns := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning ignore file: %w", err)
	}
	return patterns, nil
}
