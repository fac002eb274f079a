package store

import (
	"crypto/sha256"
	"encoding/hex"
)

const MaximumOwnerNameLength = 24

// hashOwner keeps owner names out of the log.
func hashOwner(name string) string {
	sum := sha256.Sum256([]byte("btrievedb owner:" + name))
	return hex.EncodeToString(sum[:])
}
