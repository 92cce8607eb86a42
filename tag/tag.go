// Package tag implements the fixed-size content/identity identifier used
// throughout tagnet: a 256-bit value with an XOR metric, a hex codec, and
// the digest/fingerprint operations the rest of the node builds on.
package tag

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Size is the length of a Tag in bytes (256 bits).
const Size = 32

// Tag is a fixed 32-byte identifier. The zero Tag is the "collision
// sentinel" used when two tags are equal (see Level).
type Tag [Size]byte

// ErrMalformed is returned by Parse when the input is not 64 lowercase hex
// characters.
var ErrMalformed = fmt.Errorf("malformed tag")

// Digest returns the SHA3-256 digest of data as a Tag.
func Digest(data []byte) Tag {
	return Tag(sha3.Sum256(data))
}

// Parse decodes a lowercase hex string into a Tag. It rejects malformed
// input (wrong length, uppercase, non-hex) with ErrMalformed.
func Parse(s string) (Tag, error) {
	var t Tag
	if len(s) != Size*2 {
		return t, ErrMalformed
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return t, ErrMalformed
		}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return t, ErrMalformed
	}
	copy(t[:], b)
	return t, nil
}

// String renders the Tag as 64 lowercase hex characters.
func (t Tag) String() string {
	return hex.EncodeToString(t[:])
}

// IsZero reports whether t is the all-zero tag.
func (t Tag) IsZero() bool {
	return t == Tag{}
}

// Xor returns the byte-wise XOR distance between t and other.
func (t Tag) Xor(other Tag) Tag {
	var d Tag
	for i := range t {
		d[i] = t[i] ^ other[i]
	}
	return d
}

// Less reports whether t is strictly less than other when both are read as
// 256-bit big-endian unsigned integers. Network byte order means plain byte
// lexicographic comparison suffices.
func (t Tag) Less(other Tag) bool {
	for i := range t {
		if t[i] != other[i] {
			return t[i] < other[i]
		}
	}
	return false
}

// Level returns the Kademlia "bucket index" of a distance value: 255 minus
// the index (from the high end) of the most-significant set bit. The
// all-zero tag (no set bits, i.e. equal source tags) maps to level 0, the
// collision sentinel.
func (t Tag) Level() int {
	for i := 0; i < Size; i++ {
		b := t[i]
		if b == 0 {
			continue
		}
		bit := 0
		for m := byte(0x80); m != 0; m >>= 1 {
			if b&m != 0 {
				break
			}
			bit++
		}
		msbIndex := i*8 + bit
		return Size*8 - 1 - msbIndex
	}
	return 0
}

// Level is a convenience wrapper returning xor(a, b).Level().
func Level(a, b Tag) int {
	return a.Xor(b).Level()
}
