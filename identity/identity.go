// Package identity implements the node's cryptographic identity: an RSA
// keypair fingerprinted into a tag.Tag, with the private identity's keypair
// derived deterministically from a seed tag.
package identity

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20"

	"github.com/tagnet/tagnet/internal/wordlist"
	"github.com/tagnet/tagnet/tag"
)

// KeyBits is the RSA modulus size used for all node identities.
const KeyBits = 2048

// ErrKeyMismatch describes a PublicId whose carried tag does not match the
// recomputed fingerprint of its key. No function in this package returns
// it: the tag is always recomputed from the key. A tag supplied alongside
// a key is never trusted; callers should always use NewPublicId /
// UnmarshalPublicId rather than constructing a PublicId by hand.
var ErrKeyMismatch = errors.New("identity: tag does not match key fingerprint")

// PublicId binds an RSA public key to its fingerprint tag.
type PublicId struct {
	Tag tag.Tag
	Key *rsa.PublicKey
}

// NewPublicId derives a PublicId from an RSA public key, computing its tag
// as Fingerprint(key). The tag is never taken on faith from a caller.
func NewPublicId(key *rsa.PublicKey) PublicId {
	return PublicId{Tag: Fingerprint(key), Key: key}
}

// Fingerprint computes the tag of an RSA public key: the digest of a
// canonical little-endian encoding of the modulus, followed by the public
// exponent as a little-endian uint64.
func Fingerprint(key *rsa.PublicKey) tag.Tag {
	n := key.N.Bytes() // big-endian
	le := make([]byte, len(n))
	for i, b := range n {
		le[len(n)-1-i] = b
	}
	var expBuf [8]byte
	binary.LittleEndian.PutUint64(expBuf[:], uint64(key.E))

	buf := make([]byte, 0, len(le)+len(expBuf))
	buf = append(buf, le...)
	buf = append(buf, expBuf[:]...)
	return tag.Digest(buf)
}

// Marshal serializes the public key alone (PKCS#1 DER); the tag is not
// carried, since it is always recomputed on deserialization.
func (p PublicId) Marshal() []byte {
	return x509.MarshalPKCS1PublicKey(p.Key)
}

// UnmarshalPublicId parses a PKCS#1 DER-encoded RSA public key and
// re-fingerprints it, producing a PublicId whose tag cannot be forged by
// the wire.
func UnmarshalPublicId(der []byte) (PublicId, error) {
	key, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return PublicId{}, err
	}
	return NewPublicId(key), nil
}

// Equal compares two PublicIds by key (the tag is derived, so key equality
// implies tag equality).
func (p PublicId) Equal(other PublicId) bool {
	if p.Key == nil || other.Key == nil {
		return p.Key == other.Key
	}
	return p.Key.E == other.Key.E && p.Key.N.Cmp(other.Key.N) == 0
}

// Nickname renders a human-legible handle for the identity by indexing the
// first n bytes of the tag into the fixed wordlist and joining with "_".
func (p PublicId) Nickname(n int) string {
	return Nickname(p.Tag, n)
}

// Nickname renders t's nickname directly, for callers that only have a tag
// (e.g. a remote peer's advertised tag before its key has been confirmed).
func Nickname(t tag.Tag, n int) string {
	if n > tag.Size {
		n = tag.Size
	}
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += "_"
		}
		out += wordlist.Word(t[i])
	}
	return out
}

// PrivateId is a node's full identity: its public half plus the RSA private
// key and the seed tag that generated it.
type PrivateId struct {
	Pub     PublicId
	PrivTag tag.Tag
	PrivKey *rsa.PrivateKey
}

// Generate draws a fresh random 32-byte seed and derives a PrivateId from
// it.
func Generate() (PrivateId, error) {
	var seed [tag.Size]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return PrivateId{}, err
	}
	return FromSeed(seed[:])
}

// FromSeed deterministically derives a PrivateId from an arbitrary-length
// seed: priv_tag = digest(seed), and the RSA keypair is generated using a
// ChaCha20 keystream seeded by priv_tag as the sole source of randomness.
// Because the keystream is a pure function of priv_tag, two calls with the
// same seed produce byte-identical keys — required for reproducible test
// identities.
func FromSeed(seed []byte) (PrivateId, error) {
	privTag := tag.Digest(seed)

	rng, err := newSeededRNG(privTag)
	if err != nil {
		return PrivateId{}, err
	}

	key, err := rsa.GenerateKey(rng, KeyBits)
	if err != nil {
		return PrivateId{}, err
	}

	return PrivateId{
		Pub:     NewPublicId(&key.PublicKey),
		PrivTag: privTag,
		PrivKey: key,
	}, nil
}

// seededRNG is a deterministic io.Reader backed by a ChaCha20 keystream
// keyed by the seed tag, with an all-zero nonce: it exists solely to drive
// a single rsa.GenerateKey call per seed, so nonce reuse across calls is not
// a concern — each seed gets its own cipher instance.
type seededRNG struct {
	cipher *chacha20.Cipher
}

func newSeededRNG(seed tag.Tag) (io.Reader, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &seededRNG{cipher: c}, nil
}

func (r *seededRNG) Read(p []byte) (int, error) {
	zero := bytes.Repeat([]byte{0}, len(p))
	r.cipher.XORKeyStream(p, zero)
	return len(p), nil
}
