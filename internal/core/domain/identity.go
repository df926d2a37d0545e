package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// DocIDLen is the length of a document identifier in hex characters.
// 16 hex characters carry 64 bits of hash material, enough to make
// collisions operationally negligible at this scale.
const DocIDLen = 16

// DocIDFromBytes derives the document identifier from the full byte
// content. Identical bytes always yield the identical identifier;
// filename and time never participate.
func DocIDFromBytes(data []byte) string {
	return SHA256FromBytes(data)[:DocIDLen]
}

// SHA256FromBytes returns the full hex-encoded SHA-256 of the content,
// recorded on the manifest for verification.
func SHA256FromBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
