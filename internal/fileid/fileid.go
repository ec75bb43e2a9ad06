// Package fileid derives deterministic document IDs from file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const prefix = "file-"

// FileDocID returns a stable document ID for the given absolute path.
// Re-indexing the same path updates the same document instead of adding another.
func FileDocID(absolutePath string) string {
	normalized := filepath.ToSlash(filepath.Clean(absolutePath))
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:16])
}

// IsFileDocID reports whether id was produced by FileDocID.
func IsFileDocID(id string) bool {
	return strings.HasPrefix(id, prefix) && len(id) == len(prefix)+32
}
