package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// keyHashLen is the number of hex characters kept from the SHA-256 digest.
// 160 bits leaves collision probability negligible for any plausible corpus.
const keyHashLen = 40

// MakeKey deterministically hashes a canonical parameter map into an opaque
// cache key, prefixed with the application tag so identical parameters under
// different applications can never collide, even under hash truncation.
//
// encoding/json marshals map keys in lexicographic order at every depth, so
// the serialized form is stable for deeply equal canonical maps.
func MakeKey(app model.Application, canonical map[string]any) (string, error) {
	encoded, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("encode canonical params: %w", err)
	}

	digest := sha256.Sum256(encoded)
	return string(app) + ":" + hex.EncodeToString(digest[:])[:keyHashLen], nil
}

// ParamsHash returns the bare truncated digest without the application
// prefix, for the params_hash bookkeeping column.
func ParamsHash(canonical map[string]any) (string, error) {
	encoded, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("encode canonical params: %w", err)
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:])[:keyHashLen], nil
}
