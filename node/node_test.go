package node

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
	"github.com/tagnet/tagnet/transport/inproc"
)

var nextSeed byte

// newTestNode builds a real Node on its own inproc address. Seeds are
// distinct per call so FromSeed derives distinct (if unpredictable) tags.
func newTestNode(t *testing.T) *Node {
	t.Helper()
	nextSeed++
	priv, err := identity.FromSeed([]byte{nextSeed, 0x5a, 0xc1})
	require.NoError(t, err)
	addr := inproc.NewAddr(fmt.Sprintf("node-%d", nextSeed))
	backend := inproc.New(addr)
	return New(Config{Self: priv, Addr: addr, Backend: backend})
}

// tagAtLevel returns a tag whose xor-distance to self has its most
// significant set bit at the given level, so Level(self, result) == level.
// salt varies the lower bits so distinct synthetic peers can share a level.
func tagAtLevel(self tag.Tag, level int, salt byte) tag.Tag {
	msbIndex := tag.Size*8 - 1 - level
	byteIdx := msbIndex / 8
	bitPos := uint(msbIndex % 8)
	mask := byte(0x80) >> bitPos

	var d tag.Tag
	d[byteIdx] = mask
	if byteIdx+1 < tag.Size {
		d[byteIdx+1] = salt
	}
	var out tag.Tag
	for i := range self {
		out[i] = self[i] ^ d[i]
	}
	return out
}

// syntheticPeer builds a PublicId carrying only a tag, for routing-table
// bookkeeping in tests that don't exercise key material.
func syntheticPeer(t tag.Tag) identity.PublicId {
	return identity.PublicId{Tag: t}
}

func TestUploadDownloadRoundTripSingleNode(t *testing.T) {
	n := newTestNode(t)
	ctx := context.Background()

	data := []byte("tagnet round trip")
	got, err := n.doUpload(ctx, data)
	require.NoError(t, err)
	require.Equal(t, tag.Digest(data), got)

	back, err := n.doDownload(ctx, got)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestGreetAcceptsWhenRoomAvailable(t *testing.T) {
	a := newTestNode(t)
	b := newTestNode(t)

	accepted, selfId, redirect := a.Greet(b.Self(), b.Addr())
	require.True(t, accepted)
	require.Nil(t, redirect)
	require.True(t, selfId.Equal(a.Self()))

	_, _, known := a.table.Lookup(b.Self().Tag)
	require.True(t, known, "accepted peer must appear in the routing table")
}

func TestGreetRedirectsWhenBucketFull(t *testing.T) {
	a := newTestNode(t)

	// Fill the bucket at a fixed level with two synthetic peers that never
	// need to answer a ping: CanAccept reports false before acceptPeer (and
	// its liveness probe) ever runs.
	level := 140
	p1 := syntheticPeer(tagAtLevel(a.Self().Tag, level, 0x01))
	p2 := syntheticPeer(tagAtLevel(a.Self().Tag, level, 0x02))
	addr1 := inproc.NewAddr("bucket-peer-1")
	addr2 := inproc.NewAddr("bucket-peer-2")
	_, ok := a.table.Insert(p1, addr1, time.Millisecond)
	require.True(t, ok)
	_, ok = a.table.Insert(p2, addr2, time.Millisecond)
	require.True(t, ok)

	third := syntheticPeer(tagAtLevel(a.Self().Tag, level, 0x03))
	accepted, _, redirect := a.Greet(third, inproc.NewAddr("bucket-peer-3"))
	require.False(t, accepted)
	require.NotNil(t, redirect)
	require.Contains(t, []transport.Addr{addr1, addr2}, redirect,
		"redirect must point at an already-known peer:\n%s", spew.Sdump(a.table.Snapshot()))
}

// TestLocateRelaysAcrossThreeNodes exercises locateData's hop chain:
// A only knows of B, B only knows of C, and C alone holds the data. The
// table entries A and B hold for their "next hop" are synthetic (a real
// peer's advertised tag need not match what another node has on file for
// it in this unit), but every actual request is answered by a real Node.
func TestLocateRelaysAcrossThreeNodes(t *testing.T) {
	a := newTestNode(t)
	b := newTestNode(t)
	c := newTestNode(t)

	data := []byte("content held only by C")
	target := tag.Digest(data)
	_, stored := c.store.Put(data)
	require.True(t, stored)

	// cTag == target: the closest any entry could possibly be.
	cEntry := syntheticPeer(target)
	_, ok := b.table.Insert(cEntry, c.Addr(), time.Millisecond)
	require.True(t, ok)

	// bTag is one ULP away from target: strictly farther than cTag, but
	// (overwhelmingly likely, since A's real tag is an independent random
	// RSA fingerprint) strictly closer than A's own tag.
	bTag := target
	bTag[tag.Size-1] ^= 0x01
	bEntry := syntheticPeer(bTag)
	_, ok = a.table.Insert(bEntry, b.Addr(), time.Millisecond)
	require.True(t, ok)

	ctx := context.Background()
	got, err := a.doDownload(ctx, target)
	require.NoError(t, err, "table state:\n%s", spew.Sdump(a.table.Snapshot()))
	require.Equal(t, data, got)
}

// corruptHolder is a fake transport.Inbound that claims to hold whatever
// tag it is asked about and serves back bytes that don't hash to it, for
// exercising doDownload's integrity check without a real holder.
type corruptHolder struct{}

func (corruptHolder) Greet(identity.PublicId, transport.Addr) (bool, identity.PublicId, transport.Addr) {
	return false, identity.PublicId{}, nil
}

func (corruptHolder) Ping() error { return nil }

func (corruptHolder) Discover(tag.Tag, int) (identity.PublicId, transport.Addr, bool) {
	return identity.PublicId{}, nil, false
}

func (corruptHolder) Locate(t tag.Tag) (present bool, id identity.PublicId, addr transport.Addr, redirect bool) {
	return true, identity.PublicId{}, nil, false
}

func (corruptHolder) Upload([]byte) error { return nil }

func (corruptHolder) Download(t tag.Tag) ([]byte, bool) {
	return []byte("not the bytes you're looking for"), true
}

func TestDownloadIntegrityCheckFailureOnTamperedData(t *testing.T) {
	a := newTestNode(t)

	target := tag.Digest([]byte("content a liar claims to hold"))

	corruptAddr := inproc.NewAddr("corrupt-holder")
	corruptBackend := inproc.New(corruptAddr)
	corruptBackend.Init(corruptHolder{}, corruptAddr)

	// target itself: the closest any table entry could possibly be, so
	// locateData walks straight to the corrupt holder in one hop.
	_, ok := a.table.Insert(syntheticPeer(target), corruptAddr, time.Millisecond)
	require.True(t, ok)

	data, err := a.doDownload(context.Background(), target)
	require.ErrorIs(t, err, ErrIntegrityCheckFailed)
	require.Nil(t, data)
}

func TestLocateRedirectNotCloserIsMisbehavior(t *testing.T) {
	a := newTestNode(t)
	b := newTestNode(t)

	target := tag.Digest([]byte("whatever"))

	// B will be consulted as A's closest known peer: bTag is one ULP from
	// target, closer to it than any independent random tag with
	// overwhelming probability.
	bTag := target
	bTag[tag.Size-1] ^= 0x01
	_, ok := a.table.Insert(syntheticPeer(bTag), b.Addr(), time.Millisecond)
	require.True(t, ok)

	// ...and B's own table redirects to a peer that is NOT strictly closer
	// than B itself is (bTag's distance to target equals the liar's).
	liar := syntheticPeer(bTag)
	_, ok = b.table.Insert(liar, inproc.NewAddr("liar"), time.Millisecond)
	require.True(t, ok)

	before := a.misbehavior.cache.Len()
	data, err := a.doDownload(context.Background(), target)
	require.NoError(t, err)
	require.Nil(t, data)
	require.Greater(t, a.misbehavior.cache.Len(), before)
}
