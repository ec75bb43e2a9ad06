package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Usage is the on-disk footprint of kiji's data files.
type Usage struct {
	DatabaseBytes int64 `json:"database_bytes"`
	IndexBytes    int64 `json:"index_bytes"`
}

// Total returns the combined size.
func (u Usage) Total() int64 {
	return u.DatabaseBytes + u.IndexBytes
}

// MeasureUsage sums the database file (with its WAL and shared-memory siblings) and the
// link index directory.
func MeasureUsage(dbPath, indexPath string) (Usage, error) {
	db, err := DiskUsageBytes(dbPath, dbPath+"-wal", dbPath+"-shm")
	if err != nil {
		return Usage{}, err
	}
	idx, err := DiskUsageBytes(indexPath)
	if err != nil {
		return Usage{}, err
	}
	return Usage{DatabaseBytes: db, IndexBytes: idx}, nil
}

// DiskUsageBytes returns the total size in bytes of paths. Directories are summed
// recursively; missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
			return nil
		})
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
