package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Storage struct{}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// ListFiles returns the regular files in dir with the given extension,
// sorted by name. An empty ext matches every file.
func (s *Storage) ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// NewestFile resolves path to a single file. A regular file is returned as
// is. For a directory, the most recently modified file whose name contains
// match and whose extension is one of exts is chosen. Subdirectories are
// searched one level down, limited to those whose name contains match, so a
// parent holding one folder per bucket works too. No exts means any file.
func (s *Storage) NewestFile(path, match string, exts ...string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	var (
		newest    string
		newestMod time.Time
	)
	consider := func(p string, mod time.Time) {
		if newest == "" || mod.After(newestMod) {
			newest, newestMod = p, mod
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("error listing %s: %w", path, err)
	}
	for _, e := range entries {
		full := filepath.Join(path, e.Name())
		if e.IsDir() {
			if !strings.Contains(e.Name(), match) {
				continue
			}
			sub, err := s.ListFiles(full, "")
			if err != nil {
				return "", err
			}
			for _, f := range sub {
				if !hasExt(f, exts) {
					continue
				}
				if st, err := s.GetFileStats(f); err == nil {
					consider(f, st.ModTime)
				}
			}
			continue
		}
		if !e.Type().IsRegular() || !hasExt(e.Name(), exts) {
			continue
		}
		if !strings.Contains(e.Name(), match) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		consider(full, fi.ModTime())
	}

	if newest == "" {
		return "", fmt.Errorf("no files matching %q in %s", match, path)
	}
	return newest, nil
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
