package util

import (
	"crypto/sha256"
	"encoding/hex"
)

func SHA256Hex(b []byte) string {
	x := sha256.Sum256(b)
	return hex.EncodeToString(x[:])
}

// DocIDFromFilename derives a stable document id from a source filename.
// Every chunk of the same file carries the same id.
func DocIDFromFilename(filename string) string {
	return SHA256Hex([]byte(filename))[:12]
}
