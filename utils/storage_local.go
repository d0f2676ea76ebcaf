package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

func localStorageRoot() string {
	root := strings.TrimSpace(os.Getenv("STORAGE_ROOT"))
	if root == "" {
		root = "./storage"
	}
	return root
}

// SaveLocalObject writes the stream to {STORAGE_ROOT}/{objectKey}, creating
// the root on demand.
func SaveLocalObject(objectKey string, r io.Reader) error {
	root := localStorageRoot()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(root, objectKey))
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Close()
}

func OpenLocalObject(objectKey string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(localStorageRoot(), objectKey))
}
