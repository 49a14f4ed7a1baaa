package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRulesFile is the default rules file name.
const DefaultRulesFile = ".favilink"

// ErrRulesNotFound is returned when the rules file does not exist.
// Callers should handle this error based on whether the rules file path
// was explicitly specified by the user.
var ErrRulesNotFound = errors.New("rules file not found")

// LoadRulesFile loads site rules from a YAML file and merges them over the
// built-in defaults. If the file does not exist, it returns ErrRulesNotFound.
func LoadRulesFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided rules path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRulesNotFound
		}
		return nil, err
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, err
	}

	return DefaultRules().Merge(&loaded), nil
}

// FindRulesFile searches for the rules file in the following order:
//  1. If rulesPath is specified, use it directly
//  2. Look for .favilink in the site directory
//  3. Look for .favilink in the current directory
//  4. Look for .favilink in the user's home directory
//
// Returns the path to the rules file if found, or empty string if not.
func FindRulesFile(rulesPath, siteDir string) string {
	if rulesPath != "" {
		if _, err := os.Stat(rulesPath); err == nil {
			return rulesPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if siteDir != "" {
		candidates = append(candidates, filepath.Join(siteDir, DefaultRulesFile))
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultRulesFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultRulesFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
