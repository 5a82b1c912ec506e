package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	errs "audiofetch/pkg/errors"
)

// Key identifies a downloaded file by category directory and file name
type Key struct {
	Category string
	Filename string
}

func (k Key) String() string {
	return k.Category + "/" + k.Filename
}

// SavedFile describes a file written by Save
type SavedFile struct {
	Path   string
	Size   int64
	SHA256 string
}

// Manager handles file storage operations and duplicate detection
type Manager struct {
	outputDir string
	known     map[Key]bool
	mu        sync.RWMutex
}

// NewManager creates the output directory and one subdirectory per category,
// then indexes the files already present
func NewManager(outputDir string, categories []string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.New(errs.ErrorTypeStorage, 0, "failed to create output directory: %v", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		known:     make(map[Key]bool),
	}

	for _, category := range categories {
		dir := filepath.Join(outputDir, category)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errs.New(errs.ErrorTypeStorage, 0, "failed to create category directory %s: %v", dir, err)
		}
		if err := manager.scanCategory(category); err != nil {
			return nil, fmt.Errorf("failed to scan existing files: %w", err)
		}
	}

	return manager, nil
}

// Open returns a Manager over an existing tree without creating directories
// or indexing files. Exists falls back to checking the file system.
func Open(outputDir string) *Manager {
	return &Manager{
		outputDir: outputDir,
		known:     make(map[Key]bool),
	}
}

// Index records the files present in the given category directories.
// Missing directories are treated as empty.
func (m *Manager) Index(categories ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, category := range categories {
		if err := m.scanCategory(category); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// scanCategory records the files already present in a category directory
func (m *Manager) scanCategory(category string) error {
	entries, err := os.ReadDir(filepath.Join(m.outputDir, category))
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		m.known[Key{Category: category, Filename: entry.Name()}] = true
	}

	return nil
}

// Path returns the absolute-or-relative file path for key
func (m *Manager) Path(key Key) string {
	return filepath.Join(m.outputDir, key.Category, key.Filename)
}

// Exists reports whether a file is already stored under key
func (m *Manager) Exists(key Key) bool {
	m.mu.RLock()
	cached := m.known[key]
	m.mu.RUnlock()

	if cached {
		return true
	}

	if _, err := os.Stat(m.Path(key)); err == nil {
		m.mu.Lock()
		m.known[key] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// Save writes r to the key's path through a temporary file and rename
func (m *Manager) Save(key Key, r io.Reader) (SavedFile, error) {
	filename := m.Path(key)
	dir := filepath.Dir(filename)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return SavedFile{}, errs.New(errs.ErrorTypeStorage, 0, "failed to create directory: %v", err)
	}

	out, err := os.CreateTemp(dir, "."+key.Filename+".tmp-*")
	if err != nil {
		return SavedFile{}, errs.New(errs.ErrorTypeStorage, 0, "failed to create temporary file: %v", err)
	}
	tempFile := out.Name()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(out, hash), r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return SavedFile{}, errs.New(errs.ErrorTypeStorage, 0, "failed to write %s: %v", key, err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return SavedFile{}, errs.New(errs.ErrorTypeStorage, 0, "failed to close %s: %v", key, closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return SavedFile{}, errs.New(errs.ErrorTypeStorage, 0, "failed to rename temporary file: %v", err)
	}

	m.mu.Lock()
	m.known[key] = true
	m.mu.Unlock()

	return SavedFile{
		Path:   filename,
		Size:   size,
		SHA256: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// Count returns the number of files known in a category
func (m *Manager) Count(category string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for k := range m.known {
		if k.Category == category {
			n++
		}
	}
	return n
}
