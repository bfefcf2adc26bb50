package storage

import (
	"fmt"

	"docarchive/internal/config"
)

// Open returns the backend selected by STORAGE_BACKEND.
func Open(store config.StoreConfig, mc config.MinIOConfig) (Storage, error) {
	switch store.Backend {
	case "fs", "":
		return NewFilesystem(store.Root)
	case "minio":
		return NewMinIO(mc)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", store.Backend)
	}
}
