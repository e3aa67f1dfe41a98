// Package storage implements the flat on-disk image store backing uploads,
// try-on results and wardrobe copies.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fitroom-server/internal/domain"
)

// Reserved singleton filenames. ModelPhotoName holds the current model photo
// and is overwritten on every upload; BaseModelName is a static default that
// upload endpoints never touch.
const (
	ModelPhotoName = "model.jpg"
	BaseModelName  = "base_model.jpg"
)

// Filename prefixes for request-scoped and generated files. Cleanup removes
// anything carrying one of these prefixes; wardrobe copies deliberately use a
// prefix outside this set so they survive.
const (
	transientPrefix = "tryon_tmp_"
	resultPrefix    = "result_"
	processedPrefix = "processed_"
	wardrobePrefix  = "wardrobe_"
)

var cleanupPrefixes = []string{transientPrefix, resultPrefix, processedPrefix}

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// AllowedName reports whether a filename carries one of the accepted image
// extensions. The check is case-insensitive and requires an extension to be
// present at all.
func AllowedName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[ext]
	return ok
}

// Store is a flat directory of image files. Writes to the reserved model
// photo slot are serialized so concurrent uploads cannot interleave the
// remove/write pair.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New initializes a Store rooted at dir, creating it when missing.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute path of a stored name. It does not imply the
// file exists.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Save writes data under name. The reserved model photo slot gets overwrite
// semantics: any existing file is removed first. The static base model is
// not writable through Save.
func (s *Store) Save(name string, data []byte) error {
	name, err := sanitizeName(name)
	if err != nil {
		return err
	}
	if name == BaseModelName {
		return fmt.Errorf("storage: %s is read-only: %w", BaseModelName, domain.ErrValidation)
	}
	if name == ModelPhotoName {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage: clear model slot: %w", err)
		}
	}
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

// SeedBaseModel installs the bundled default model photo when the slot is
// still empty. It never overwrites an existing file.
func (s *Store) SeedBaseModel(data []byte) error {
	if s.Exists(BaseModelName) {
		return nil
	}
	if err := os.WriteFile(s.Path(BaseModelName), data, 0o644); err != nil {
		return fmt.Errorf("storage: seed base model: %w", err)
	}
	return nil
}

// Exists reports whether name is present in the store.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// Read returns the stored bytes for name, or domain.ErrNotFound.
func (s *Store) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Delete removes a stored file, failing with domain.ErrNotFound when absent.
func (s *Store) Delete(name string) error {
	name, err := sanitizeName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage: %s: %w", name, domain.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// Discard removes a file if present. It is safe to call on names that were
// already cleaned up.
func (s *Store) Discard(name string) {
	_ = os.Remove(s.Path(name))
}

// List returns all stored filenames carrying an allowed extension, sorted.
// Files smuggled into the directory with other extensions never appear.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !AllowedName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// SaveTransient writes a request-scoped file under a fresh unique name and
// returns that name. The caller owns the file and must Discard it before the
// request returns.
func (s *Store) SaveTransient(ext string, data []byte) (string, error) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("storage: extension %q not allowed: %w", ext, domain.ErrValidation)
	}
	name := transientPrefix + uuid.NewString() + ext
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write transient: %w", err)
	}
	return name, nil
}

// SaveProcessed stores an enhanced variant of an uploaded image and returns
// its stored name.
func (s *Store) SaveProcessed(original string, data []byte) (string, error) {
	base, err := sanitizeName(original)
	if err != nil {
		return "", err
	}
	name := processedPrefix + base
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write processed: %w", err)
	}
	return name, nil
}

// ImportResult moves a synthesized image from srcPath into the store under a
// fresh result name, falling back to a copy when rename crosses filesystems.
func (s *Store) ImportResult(srcPath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(srcPath))
	if _, ok := allowedExtensions[ext]; !ok {
		ext = ".png"
	}
	name := resultPrefix + uuid.NewString() + ext
	dst := s.Path(name)
	if err := os.Rename(srcPath, dst); err != nil {
		if err := copyFile(srcPath, dst); err != nil {
			return "", fmt.Errorf("storage: import result: %w", err)
		}
		_ = os.Remove(srcPath)
	}
	return name, nil
}

// Materialize copies a bundled wardrobe image into the store under a name
// derived from its source, reusing the existing copy on repeat calls.
func (s *Store) Materialize(source string, data []byte) (string, error) {
	name := wardrobePrefix + filepath.Base(source)
	if !AllowedName(name) {
		return "", fmt.Errorf("storage: wardrobe source %q: %w", source, domain.ErrValidation)
	}
	if s.Exists(name) {
		return name, nil
	}
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: materialize %s: %w", name, err)
	}
	return name, nil
}

// Cleanup removes every transient and result file, skipping the reserved
// singleton names and any names passed in exclude. It is best-effort: a
// failure on one file does not stop the rest, and the number of removed
// files is returned.
func (s *Store) Cleanup(exclude ...string) int {
	keep := map[string]struct{}{
		ModelPhotoName: {},
		BaseModelName:  {},
	}
	for _, name := range exclude {
		keep[name] = struct{}{}
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := keep[name]; ok {
			continue
		}
		if !hasCleanupPrefix(name) {
			continue
		}
		if err := os.Remove(s.Path(name)); err == nil {
			removed++
		}
	}
	return removed
}

func hasCleanupPrefix(name string) bool {
	for _, prefix := range cleanupPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// sanitizeName strips any path component and validates the extension.
func sanitizeName(name string) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("storage: empty name: %w", domain.ErrValidation)
	}
	if !AllowedName(name) {
		return "", fmt.Errorf("storage: name %q not allowed: %w", name, domain.ErrValidation)
	}
	return name, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
