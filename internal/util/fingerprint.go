package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint computes a stable identity for a finding, used by baseline
// suppression across runs.
func Fingerprint(detectorID, path string, line int, context string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", detectorID, path, line, context)
	return hex.EncodeToString(h.Sum(nil))
}
