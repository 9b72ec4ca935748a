// Package uuid generates the UUIDv7 correlation identifiers attached
// to every transaction. The time-ordered prefix keeps ids roughly
// sortable by creation time in exports and external references.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New returns a fresh UUIDv7 string.
//
// Layout per RFC 4122: 48 bits of Unix milliseconds, 4 version bits
// (7), 12 random bits, 2 variant bits (10), 62 random bits.
func New() string {
	var id [16]byte

	millis := uint64(time.Now().UnixMilli())
	binary.BigEndian.PutUint64(id[0:8], millis<<16)

	if _, err := rand.Read(id[6:]); err != nil {
		// No randomness available; a v4 from the library still
		// satisfies every caller, it just loses time ordering.
		return googleuuid.New().String()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return format(id)
}

func format(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// Parse normalizes a UUID string, rejecting malformed input.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
