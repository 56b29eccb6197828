package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

// MediaDir creates a temporary SD stand-in holding files of the given sizes.
func MediaDir(t *testing.T, files map[string]int) string {
	t.Helper()
	dir := t.TempDir()
	for name, size := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(strings.Repeat(";", size)), 0o644); err != nil {
			t.Fatalf("write media file %s: %v", name, err)
		}
	}
	return dir
}

// FakeMedia is an in-memory card whose presence tests can toggle.
type FakeMedia struct {
	mu      sync.Mutex
	mounted bool
	files   []string
}

// NewFakeMedia returns a mounted card listing files.
func NewFakeMedia(files ...string) *FakeMedia {
	m := &FakeMedia{mounted: true}
	m.SetFiles(files...)
	return m
}

func (m *FakeMedia) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}

func (m *FakeMedia) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.files...), nil
}

// SetMounted inserts or removes the card.
func (m *FakeMedia) SetMounted(mounted bool) {
	m.mu.Lock()
	m.mounted = mounted
	m.mu.Unlock()
}

// SetFiles replaces the listing.
func (m *FakeMedia) SetFiles(files ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append([]string(nil), files...)
	sort.Strings(m.files)
}
