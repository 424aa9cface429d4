package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// FormatChecksum renders a checksum as lowercase hex.
func FormatChecksum(sum [32]byte) string {
	return hex.EncodeToString(sum[:])
}

// ParseChecksum parses a hex checksum written by FormatChecksum.
func ParseChecksum(s string) ([32]byte, error) {
	var sum [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return sum, fmt.Errorf("invalid checksum %q: %w", s, err)
	}
	if len(b) != len(sum) {
		return sum, fmt.Errorf("invalid checksum %q: got %d bytes, want %d", s, len(b), len(sum))
	}
	copy(sum[:], b)
	return sum, nil
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return fmt.Errorf("%w: computed %s, stored %s",
			ErrChecksumMismatch, FormatChecksum(computed), FormatChecksum(stored))
	}
	return nil
}
