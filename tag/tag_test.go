package tag

import (
	"crypto/rand"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTag(t *testing.T) Tag {
	t.Helper()
	var tg Tag
	_, err := rand.Read(tg[:])
	require.NoError(t, err)
	return tg
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("hello"))
	b := Digest([]byte("hello"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Digest([]byte("other")))
}

func TestHexRoundTrip(t *testing.T) {
	f := func(b [Size]byte) bool {
		tg := Tag(b)
		parsed, err := Parse(tg.String())
		return err == nil && parsed == tg
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("not-hex")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse("0123")
	assert.ErrorIs(t, err, ErrMalformed)

	upper := randomTag(t).String()
	for i := range upper {
		if upper[i] >= 'a' && upper[i] <= 'f' {
			bs := []byte(upper)
			bs[i] = bs[i] - 'a' + 'A'
			_, err := Parse(string(bs))
			assert.ErrorIs(t, err, ErrMalformed)
			break
		}
	}
}

func TestXorSelfIsZero(t *testing.T) {
	f := func(b [Size]byte) bool {
		tg := Tag(b)
		return tg.Xor(tg).IsZero()
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestXorCommutes(t *testing.T) {
	f := func(a, b [Size]byte) bool {
		ta, tb := Tag(a), Tag(b)
		return ta.Xor(tb) == tb.Xor(ta)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestLevelSymmetric(t *testing.T) {
	f := func(a, b [Size]byte) bool {
		ta, tb := Tag(a), Tag(b)
		return Level(ta, tb) == Level(tb, ta)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestLevelZeroForIdentical(t *testing.T) {
	tg := randomTag(t)
	assert.Equal(t, 0, Level(tg, tg))
}

func TestLevelBounds(t *testing.T) {
	f := func(a, b [Size]byte) bool {
		l := Level(Tag(a), Tag(b))
		return l >= 0 && l <= 255
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestLevelHighestBitFar(t *testing.T) {
	var a, b Tag
	a[0] = 0x00
	b[0] = 0x80
	assert.Equal(t, 255, Level(a, b))
}

func TestLevelLowestBitClose(t *testing.T) {
	var a, b Tag
	a[Size-1] = 0x00
	b[Size-1] = 0x01
	assert.Equal(t, 0, Level(a, b))
}
