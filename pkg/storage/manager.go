package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/logger"
)

var (
	mu          sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the local disk, plus the s3 disk when S3_BUCKET is set.
// A misconfigured s3 disk is logged and skipped; Default then falls back to
// local.
func Connect(ctx context.Context) error {
	local, err := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return err
	}
	Register(local)

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx)
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			Register(d)
		}
	}

	mu.Lock()
	defaultDisk = config.StorageDefault()
	mu.Unlock()
	return nil
}

// Register adds or replaces a disk under its Name.
func Register(d Disk) {
	mu.Lock()
	disks[d.Name()] = d
	mu.Unlock()
}

// SetDefault selects the disk Default returns.
func SetDefault(name string) {
	mu.Lock()
	defaultDisk = name
	mu.Unlock()
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the STORAGE_DISK disk, or local when that is unavailable.
func Default() Disk {
	mu.RLock()
	defer mu.RUnlock()
	if d, ok := disks[defaultDisk]; ok {
		return d
	}
	return disks["local"]
}

// Local returns the local disk when it is the default, for static serving.
func Local() (*LocalDisk, bool) {
	d, ok := Default().(*LocalDisk)
	return d, ok
}
