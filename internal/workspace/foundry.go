// Package workspace implements Foundry-style workspace discovery,
// configuration profiles, remappings, and the import resolution
// algorithm.
package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// foundryToml mirrors the subset of foundry.toml this engine consumes.
// Unknown keys are ignored, matching settings.go's "unknown keys are
// warnings, not errors" tolerance.
type foundryToml struct {
	Profile map[string]profile `toml:"profile"`
}

type profile struct {
	SrcDir      string   `toml:"src"`
	OutDir      string   `toml:"out"`
	LibDirs     []string `toml:"libs"`
	Remappings  []string `toml:"remappings"`
	SolcVersion string   `toml:"solc_version"`
}

// Config is the resolved, profile-selected configuration for a
// workspace root.
type Config struct {
	Root        string
	Profile     string
	SrcDir      string
	LibDirs     []string
	Remappings  []Remapping
	SolcVersion string
}

// Remapping is a from=to rewrite, optionally scoped by a context prefix.
type Remapping struct {
	From    string
	To      string
	Context string // "" if unscoped
}

// DiscoverRoot walks up from startDir looking for a file named
// foundry.toml; the first ancestor containing it becomes the workspace
// root. If none is found, ok is false and the caller should fall back
// to the client's root URI.
func DiscoverRoot(fs afero.Fs, startDir string) (root string, ok bool) {
	dir := filepath.Clean(startDir)
	for {
		candidate := filepath.Join(dir, "foundry.toml")
		if exists(fs, candidate) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func exists(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}

// LoadConfig parses root/foundry.toml (selecting profileName, or
// "default" if empty) and root/remappings.txt, merging both remapping
// sources.
func LoadConfig(fs afero.Fs, root, profileName string) (Config, error) {
	if profileName == "" {
		profileName = "default"
	}
	cfg := Config{Root: root, Profile: profileName, SrcDir: "src"}

	tomlPath := filepath.Join(root, "foundry.toml")
	if exists(fs, tomlPath) {
		b, err := afero.ReadFile(fs, tomlPath)
		if err != nil {
			return cfg, fmt.Errorf("read foundry.toml: %w", err)
		}
		var ft foundryToml
		if err := toml.Unmarshal(b, &ft); err != nil {
			return cfg, fmt.Errorf("parse foundry.toml: %w", err)
		}
		if p, ok := ft.Profile[profileName]; ok {
			if p.SrcDir != "" {
				cfg.SrcDir = p.SrcDir
			}
			cfg.LibDirs = p.LibDirs
			cfg.SolcVersion = p.SolcVersion
			for _, r := range p.Remappings {
				if rm, ok := parseRemappingLine(r); ok {
					cfg.Remappings = append(cfg.Remappings, rm)
				}
			}
		}
	}

	rtPath := filepath.Join(root, "remappings.txt")
	if exists(fs, rtPath) {
		b, err := afero.ReadFile(fs, rtPath)
		if err != nil {
			return cfg, fmt.Errorf("read remappings.txt: %w", err)
		}
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if rm, ok := parseRemappingLine(line); ok {
				cfg.Remappings = append(cfg.Remappings, rm)
			}
		}
	}

	return cfg, nil
}

// parseRemappingLine parses "from=to" or "context:from=to" remapping
// syntax.
func parseRemappingLine(line string) (Remapping, bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return Remapping{}, false
	}
	left, to := line[:eq], line[eq+1:]
	if colon := strings.IndexByte(left, ':'); colon >= 0 {
		return Remapping{Context: left[:colon], From: left[colon+1:], To: to}, true
	}
	return Remapping{From: left, To: to}, true
}
