package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Digest returns the hex-encoded SHA3-256 fingerprint of a normalized
// configuration. It is used to tell whether a device configuration changed
// between two stored analyses.
func Digest(normalized string) string {
	sum := sha3.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
