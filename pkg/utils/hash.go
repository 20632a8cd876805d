package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// StableDigest returns a deterministic SHA-256 hex digest of v. Values are
// serialized via encoding/json, which sorts map keys, so logically equal
// payloads always hash to the same digest. Values that cannot be marshalled
// fall back to their fmt representation.
func StableDigest(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", v))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
