package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Pair describes a generated up/down migration file pair
type Pair struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreatePair writes timestamped up and down SQL skeletons into dir. The
// version is the creation time formatted as YYYYMMDDHHMMSS, which keeps
// lexical and chronological order aligned.
func CreatePair(dir, name, description string) (*Pair, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("migration: create directory %s: %w", dir, err)
	}

	now := time.Now()
	p := &Pair{
		Version: now.Format("20060102150405"),
		Name:    slugify(name),
	}
	base := p.Version + "_" + p.Name
	p.UpPath = filepath.Join(dir, base+".up.sql")
	p.DownPath = filepath.Join(dir, base+".down.sql")

	stamp := now.Format(time.RFC3339)
	up := fmt.Sprintf(`-- %s (up)
-- Created: %s
-- %s

-- Write the forward migration below.

`, p.Name, stamp, description)
	down := fmt.Sprintf(`-- %s (down)
-- Created: %s
-- Reverts: %s

-- Write the rollback below.

`, p.Name, stamp, base+".up.sql")

	if err := os.WriteFile(p.UpPath, []byte(up), 0644); err != nil {
		return nil, fmt.Errorf("migration: write %s: %w", p.UpPath, err)
	}
	if err := os.WriteFile(p.DownPath, []byte(down), 0644); err != nil {
		os.Remove(p.UpPath)
		return nil, fmt.Errorf("migration: write %s: %w", p.DownPath, err)
	}
	return p, nil
}

// ListPairs returns the base names of the migration pairs in dir, sorted
// by version. A missing directory yields an empty list.
func ListPairs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("migration: read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".up.sql"))
	}
	sort.Strings(names)
	return names, nil
}

// slugify folds a human name into the lowercase snake_case form used in
// migration file names.
func slugify(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
