package utils

import (
	"context"
	"io"
	"os"
	"strings"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider == "" {
		return StorageProviderLocal
	}
	return provider
}

// SaveObject writes the full stream under objectKey on the configured
// provider. No partial-write cleanup is attempted: a failure mid-write can
// leave a truncated object at the key.
func SaveObject(ctx context.Context, objectKey string, r io.Reader) error {
	if GetStorageProvider() == StorageProviderGCS {
		return UploadVendorFileToGCS(ctx, objectKey, r)
	}
	return SaveLocalObject(objectKey, r)
}

// OpenObject opens a previously stored object for reading.
func OpenObject(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if GetStorageProvider() == StorageProviderGCS {
		return OpenGCSObject(ctx, objectKey)
	}
	return OpenLocalObject(objectKey)
}
