package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	root := t.TempDir()
	s := &Storage{Root: root, BaseURL: "http://localhost:8080"}

	result, err := s.Save("products", "product", "photo.JPG", strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.URL, "http://localhost:8080/uploads/products/product-"))
	require.True(t, strings.HasSuffix(result.Path, ".jpg"))

	data, err := os.ReadFile(filepath.Join(root, result.Path))
	require.NoError(t, err)
	require.Equal(t, "fake image bytes", string(data))
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	s := &Storage{Root: t.TempDir(), BaseURL: "http://localhost:8080"}

	_, err := s.Save("products", "product", "malware.exe", strings.NewReader("nope"))
	require.Error(t, err)
}

func TestSaveUniqueNames(t *testing.T) {
	s := &Storage{Root: t.TempDir(), BaseURL: "http://localhost:8080"}

	a, err := s.Save("sellers", "logo", "logo.png", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save("sellers", "logo", "logo.png", strings.NewReader("b"))
	require.NoError(t, err)
	require.NotEqual(t, a.Path, b.Path)
}

func TestDeleteByURL(t *testing.T) {
	root := t.TempDir()
	s := &Storage{Root: root, BaseURL: "http://localhost:8080"}

	result, err := s.Save("products", "product", "photo.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteByURL(result.URL))
	_, err = os.Stat(filepath.Join(root, result.Path))
	require.True(t, os.IsNotExist(err))

	// Foreign URLs are left alone.
	require.NoError(t, s.DeleteByURL("https://cdn.example.com/banner.png"))
}

func TestDeleteTolerant(t *testing.T) {
	root := t.TempDir()
	s := &Storage{Root: root, BaseURL: "http://localhost:8080"}

	result, err := s.Save("products", "product", "photo.png", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(result.Path))
	// Deleting a path that is already gone is not an error.
	require.NoError(t, s.Delete(result.Path))
	require.NoError(t, s.Delete("never/existed.png"))
}
