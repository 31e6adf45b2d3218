package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadResult is the typed outcome of a successful save. Path is relative
// to the storage root, URL is what gets persisted on the entity.
type UploadResult struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Storage saves and deletes image files under a local root directory.
type Storage struct {
	Root    string
	BaseURL string
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Save writes the file under Root/folder with a unique name built from the
// prefix, a fresh UUID and the original extension.
func (s *Storage) Save(folder, prefix, originalName string, r io.Reader) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}

	dir := filepath.Join(s.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), ext)
	full := filepath.Join(dir, name)

	dst, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(full)
		return nil, fmt.Errorf("write file: %w", err)
	}

	rel := path.Join(folder, name)
	return &UploadResult{
		Path: rel,
		URL:  strings.TrimRight(s.BaseURL, "/") + "/uploads/" + rel,
	}, nil
}

// DeleteByURL removes the file a previously persisted URL points at.
// URLs outside this store's base are ignored.
func (s *Storage) DeleteByURL(url string) error {
	prefix := strings.TrimRight(s.BaseURL, "/") + "/uploads/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	return s.Delete(strings.TrimPrefix(url, prefix))
}

// Delete removes a previously saved file by its relative path. Missing
// files are not an error: replacing an image must not fail because the old
// one is already gone.
func (s *Storage) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	full := filepath.Join(s.Root, filepath.Clean("/"+relPath))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
