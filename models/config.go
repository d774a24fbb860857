// Package models defines data structures for configuration and run options.
package models

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/dtnitsch/dats-exporter/pkg/router"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is looked up in the working directory when --config is
// not given.
const DefaultConfigName = "dats.yaml"

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the file-backed configuration. CLI flags override it.
type Config struct {
	APIURL          string            `yaml:"api_url"`
	OutDir          string            `yaml:"out_dir"`
	Encoding        string            `yaml:"encoding"`
	Timeout         time.Duration     `yaml:"timeout"`
	SkipIdentifiers []string          `yaml:"skip_identifiers"`
	Buckets         map[string]string `yaml:"buckets"`
	Routing         router.Table      `yaml:"routing"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	return cfg, nil
}

// LoadConfig layers, lowest priority first: the embedded defaults, <name>.<ext>
// and <name>.local.<ext>. Missing files are skipped.
func LoadConfig(name string) (Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return cfg, err
	}
	if name == "" {
		name = DefaultConfigName
	}

	ext := filepath.Ext(name)
	local := strings.TrimSuffix(name, ext) + ".local" + ext

	for _, path := range []string{name, local} {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		var override Config
		if err := yaml.Unmarshal(data, &override); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
			return cfg, fmt.Errorf("failed to merge config %s: %w", path, err)
		}
		slog.Debug("merged config file", "path", path)
	}

	if err := cfg.Routing.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultBucketExt is the extension of buckets without a configured file.
const DefaultBucketExt = ".txt"

// ExportExtensions lists the file extensions bucket files are written with,
// starting with DefaultBucketExt.
func (c Config) ExportExtensions() []string {
	exts := []string{DefaultBucketExt}
	names := make([]string, 0, len(c.Buckets))
	for name := range c.Buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(c.Buckets[name]))
		if ext != "" && !slices.Contains(exts, ext) {
			exts = append(exts, ext)
		}
	}
	return exts
}

// BucketPath returns where a bucket's rows are written. Relative paths are
// resolved against outDir.
func (c Config) BucketPath(outDir, bucket string) string {
	file, ok := c.Buckets[bucket]
	if !ok || file == "" {
		file = bucket + DefaultBucketExt
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(outDir, file)
}

// SkipIdentifier reports whether id is a placeholder that cannot be fetched.
func (c Config) SkipIdentifier(id string) bool {
	if strings.TrimSpace(id) == "" || id == "null" {
		return true
	}
	for _, s := range c.SkipIdentifiers {
		if id == s {
			return true
		}
	}
	return false
}
