package store

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Run is one recorded translation: a single (model, backend) emission with
// the lint findings that accompanied it.
type Run struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	SourceHash  string    `json:"source_hash"`
	Backend     string    `json:"backend"`
	Diagnostics string    `json:"diagnostics"` // JSON array of lint diagnostics
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"created_at"`
}

// SourceHash returns the hex sha256 of an interchange document, the stable
// identity of a model version across runs.
func SourceHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
