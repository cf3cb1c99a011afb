// Package compdb reads, reduces and writes compilation databases
// (compile_commands.json).
//
// Only the "file" field of an entry is interpreted. Every entry is kept as
// the raw JSON object it was read from, so unknown fields, key order and
// number formatting survive a reduction unchanged.
package compdb

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

// Entry is a single compile command.
type Entry struct {
	// File is the source file the entry compiles, exactly as written in the input.
	File string

	// Raw is the JSON object the entry was read from.
	Raw json.RawMessage
}

// MarshalJSON emits the entry verbatim.
func (e Entry) MarshalJSON() ([]byte, error) {
	if len(e.Raw) == 0 {
		return []byte("{}"), nil
	}
	return e.Raw, nil
}

// Fingerprint returns the xxHash64 of the entry's compacted JSON as a hex string.
// Two entries with the same fingerprint differ at most in whitespace.
func (e Entry) Fingerprint() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, e.Raw); err != nil {
		return hashBytes(e.Raw)
	}
	return hashBytes(buf.Bytes())
}

// hashBytes computes xxHash64 of bytes, returns hex string.
func hashBytes(data []byte) string {
	h := xxhash.Sum64(data)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h)
	return hex.EncodeToString(buf[:])
}
