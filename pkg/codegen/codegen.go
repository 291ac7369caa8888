// Package codegen mints opaque identifiers and human-legible tracking codes.
package codegen

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewID returns a globally unique opaque identifier. Pure randomness; no
// central allocator.
func NewID() string {
	return uuid.NewString()
}

// NewTrackingCode derives an uppercase alphanumeric code of at most 10
// characters from a hint string, padded with random characters. The caller
// must still check the result against the link registry; uniqueness is not
// guaranteed here.
func NewTrackingCode(hint string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(hint) {
		if b.Len() >= 6 {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err == nil {
		for _, v := range suffix {
			b.WriteByte(codeAlphabet[int(v)%len(codeAlphabet)])
		}
	}
	return b.String()
}
