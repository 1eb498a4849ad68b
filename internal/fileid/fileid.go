// Package fileid derives deterministic document IDs from file paths, so
// watched files can be reingested and removed under a stable identity.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// FileDocID returns the document ID for a file at absolutePath. The same
// path always maps to the same ID, so a rewrite of a watched file replaces
// its previous chunks instead of adding a second copy.
func FileDocID(absolutePath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(absolutePath)))
	return "file-" + hex.EncodeToString(sum[:8])
}
