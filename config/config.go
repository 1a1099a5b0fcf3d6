// Package config loads .wdlconfig.yaml: the per-workspace default
// version assumption, glob-based per-file version overrides, and a
// suppressed-rule allowlist.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned by Find when no config file exists
// between dir and the filesystem root.
var ErrConfigNotFound = errors.New("wdl/config: no .wdlconfig.yaml found")

// WorkspaceConfig is the decoded shape of .wdlconfig.yaml.
type WorkspaceConfig struct {
	// DefaultVersion is assumed for any document search glob doesn't
	// override (rarely needed; WDL documents normally declare their own
	// `version` statement, but a workspace editing pre-1.0 drafts or
	// fragments may want a floor).
	DefaultVersion string `yaml:"defaultVersion,omitempty"`

	// Versions maps a glob pattern (matched against a document's path
	// relative to the config file's directory) to a version override,
	// applied before the document's own `version` statement is trusted —
	// useful for flagging a file that declares the wrong version during a
	// migration.
	Versions map[string]string `yaml:"versions,omitempty"`

	// SuppressedRules lists diagnostic codes disabled workspace-wide, in
	// addition to any `#@ except:` directives in source.
	SuppressedRules []string `yaml:"suppressedRules,omitempty"`

	// ImportRoots are additional base directories searched when
	// resolving a bare (non-relative, non-http) import path.
	ImportRoots []string `yaml:"importRoots,omitempty"`
}

// DefaultNames are the filenames searched for, in preference order.
var DefaultNames = []string{".wdlconfig.yaml", ".wdlconfig.yml", "wdlconfig.yaml"}

// Find searches for a config file starting at dir and walking up to the
// filesystem root.
func Find(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for cur := absDir; ; {
		for _, name := range DefaultNames {
			path := filepath.Join(cur, name)

			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", ErrConfigNotFound
		}

		cur = parent
	}
}

// Load finds and decodes the nearest config walking up from dir. A
// missing config is not an error at this call site's caller discretion;
// callers that want to fall back to defaults should check
// errors.Is(err, ErrConfigNotFound).
func Load(dir string) (*WorkspaceConfig, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}

	return LoadFile(path)
}

// LoadFile decodes a config from a specific path.
func LoadFile(path string) (*WorkspaceConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg WorkspaceConfig

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// VersionFor returns the version override for relPath, if any pattern in
// Versions matches, else "".
func (c *WorkspaceConfig) VersionFor(relPath string) string {
	for pattern, v := range c.Versions {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return v
		}
	}

	return ""
}

// Suppresses reports whether ruleCode is disabled workspace-wide.
func (c *WorkspaceConfig) Suppresses(ruleCode string) bool {
	for _, code := range c.SuppressedRules {
		if code == ruleCode {
			return true
		}
	}

	return false
}
