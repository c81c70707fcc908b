package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromDir reads yaml profiles from dirPath and returns them ahead of the
// built-ins, so a user-supplied profile wins over a built-in with the same
// key. A missing directory is not an error. Files that fail to load are
// reported together after the loadable ones are collected.
func LoadFromDir(dirPath string) ([]*Profile, error) {
	trimmed := strings.TrimSpace(dirPath)
	if trimmed == "" {
		return Defaults(), nil
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("read profiles dir: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(files)

	loaded := make([]*Profile, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	problems := make([]string, 0)

	for _, filePath := range files {
		content, err := os.ReadFile(filePath)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}

		var p Profile
		if err := yaml.Unmarshal(content, &p); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		if !p.IsEnabled() {
			continue
		}
		if err := p.normalizeAndValidate(); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}

		loaded = append(loaded, &p)
		seen[p.Key] = struct{}{}
	}

	for _, builtin := range Defaults() {
		if _, overridden := seen[builtin.Key]; !overridden {
			loaded = append(loaded, builtin)
		}
	}

	if len(problems) > 0 {
		return loaded, fmt.Errorf("profiles failed to load: %s", strings.Join(problems, " | "))
	}

	return loaded, nil
}
