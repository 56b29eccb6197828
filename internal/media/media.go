package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atomicstack/dwin-panel/internal/logging/events"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrNotMounted is returned when the media slot is empty.
var ErrNotMounted = errors.New("media not mounted")

var printable = map[string]bool{
	".gcode": true,
	".gco":   true,
	".g":     true,
}

// Dir stands in for the SD card: a directory whose G-code files are listed
// in name order. A missing directory reads as removed media.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Mounted reports whether the directory exists.
func (d *Dir) Mounted() bool {
	if d == nil || d.Root == "" {
		return false
	}
	info, err := os.Stat(d.Root)
	return err == nil && info.IsDir()
}

// List returns the printable files.
func (d *Dir) List() ([]string, error) {
	if !d.Mounted() {
		return nil, ErrNotMounted
	}
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		events.Media.List(d.Root, 0, err)
		return nil, fmt.Errorf("list %s: %w", d.Root, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if printable[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	events.Media.List(d.Root, len(files), nil)
	return files, nil
}

// Sizes maps each printable file to its size in bytes.
func (d *Dir) Sizes() (map[string]int64, error) {
	files, err := d.List()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(files))
	for _, name := range files {
		info, err := os.Stat(filepath.Join(d.Root, name))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		out[name] = info.Size()
	}
	return out, nil
}

// Find returns the file that best matches query: exact, then prefix, then
// the closest fuzzy match.
func Find(files []string, query string) (string, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || len(files) == 0 {
		return "", false
	}
	lower := strings.ToLower(trimmed)
	for _, f := range files {
		if strings.EqualFold(f, trimmed) || strings.EqualFold(strings.TrimSuffix(f, filepath.Ext(f)), trimmed) {
			return f, true
		}
	}
	for _, f := range files {
		if strings.HasPrefix(strings.ToLower(f), lower) {
			return f, true
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, files)
	if len(ranks) == 0 {
		return "", false
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
			continue
		}
		if rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex {
			best = rank
		}
	}
	return files[best.OriginalIndex], true
}
