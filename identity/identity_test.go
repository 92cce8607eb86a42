package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagnet/tagnet/tag"
)

func TestFromSeedDeterministic(t *testing.T) {
	seed := []byte("reproducible test identity seed")

	a, err := FromSeed(seed)
	require.NoError(t, err)
	b, err := FromSeed(seed)
	require.NoError(t, err)

	assert.Equal(t, a.PrivTag, b.PrivTag)
	assert.True(t, a.Pub.Equal(b.Pub))
	assert.Equal(t, a.PrivKey.N, b.PrivKey.N)
	assert.Equal(t, a.PrivKey.D, b.PrivKey.D)
}

func TestFromSeedDistinctSeedsDiffer(t *testing.T) {
	a, err := FromSeed([]byte("seed-one"))
	require.NoError(t, err)
	b, err := FromSeed([]byte("seed-two"))
	require.NoError(t, err)

	assert.NotEqual(t, a.PrivTag, b.PrivTag)
	assert.False(t, a.Pub.Equal(b.Pub))
}

func TestFingerprintMatchesPublicIdTag(t *testing.T) {
	priv, err := FromSeed([]byte("fingerprint check"))
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(&priv.PrivKey.PublicKey), priv.Pub.Tag)
}

func TestPublicIdMarshalRoundTrip(t *testing.T) {
	priv, err := FromSeed([]byte("round trip"))
	require.NoError(t, err)

	der := priv.Pub.Marshal()
	parsed, err := UnmarshalPublicId(der)
	require.NoError(t, err)

	assert.Equal(t, priv.Pub.Tag, parsed.Tag)
	assert.True(t, priv.Pub.Equal(parsed))
}

func TestUnmarshalRecomputesTagRatherThanTrustingWire(t *testing.T) {
	priv, err := FromSeed([]byte("untrusted tag"))
	require.NoError(t, err)

	der := priv.Pub.Marshal()
	parsed, err := UnmarshalPublicId(der)
	require.NoError(t, err)

	// An attacker cannot make a key claim a different tag: UnmarshalPublicId
	// never reads a tag off the wire, it always recomputes one.
	assert.Equal(t, Fingerprint(parsed.Key), parsed.Tag)
}

func TestNicknameIsDeterministicAndBounded(t *testing.T) {
	var tg tag.Tag
	for i := range tg {
		tg[i] = byte(i)
	}
	n1 := Nickname(tg, 4)
	n2 := Nickname(tg, 4)
	assert.Equal(t, n1, n2)
	assert.NotEmpty(t, n1)

	// n beyond tag.Size is clamped, not a panic.
	assert.NotPanics(t, func() { Nickname(tg, tag.Size+10) })
}
