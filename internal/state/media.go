package state

import "sync"

// MediaStore remembers the last seen media listing.
type MediaStore interface {
	Mounted() bool
	Files() []string
	// SetMedia stores a listing and reports whether it differs from the
	// previous one.
	SetMedia(mounted bool, files []string) bool
}

type mediaStore struct {
	mu      sync.RWMutex
	seen    bool
	mounted bool
	files   []string
}

// NewMediaStore returns an empty store.
func NewMediaStore() MediaStore {
	return &mediaStore{}
}

func (s *mediaStore) Mounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

func (s *mediaStore) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.files...)
}

func (s *mediaStore) SetMedia(mounted bool, files []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := !s.seen || mounted != s.mounted || !sameFiles(s.files, files)
	s.seen = true
	s.mounted = mounted
	s.files = append(s.files[:0], files...)
	return changed
}

func sameFiles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
