package routing

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
)

// testAddr is a minimal transport.Addr for table tests.
type testAddr string

func (a testAddr) String() string { return string(a) }

func randomPublicId(t *testing.T) identity.PublicId {
	t.Helper()
	var seed [32]byte
	_, err := rand.Read(seed[:])
	require.NoError(t, err)
	priv, err := identity.FromSeed(seed[:])
	require.NoError(t, err)
	return priv.Pub
}

func TestCanAcceptRejectsSelf(t *testing.T) {
	self := randomPublicId(t)
	tbl := New(self.Tag)
	assert.False(t, tbl.CanAccept(self.Tag))
}

func TestCanAcceptRejectsKnown(t *testing.T) {
	self := randomPublicId(t)
	tbl := New(self.Tag)
	p := randomPublicId(t)

	assert.True(t, tbl.CanAccept(p.Tag))
	_, ok := tbl.Insert(p, testAddr("a1"), time.Millisecond)
	assert.True(t, ok)
	assert.False(t, tbl.CanAccept(p.Tag))
}

func TestBucketCapacityEnforced(t *testing.T) {
	self := randomPublicId(t)
	tbl := New(self.Tag)

	// Gather MaxLevelPeers+1 distinct ids that all land in the same bucket.
	first := randomPublicId(t)
	level := tag.Level(self.Tag, first.Tag)
	same := []identity.PublicId{first}
	for len(same) < MaxLevelPeers+1 {
		cand := randomPublicId(t)
		if tag.Level(self.Tag, cand.Tag) == level {
			same = append(same, cand)
		}
	}

	for i, id := range same {
		canAccept := tbl.CanAccept(id.Tag)
		if i < MaxLevelPeers {
			assert.True(t, canAccept, "peer %d should have been acceptable", i)
			_, ok := tbl.Insert(id, testAddr("addr"), time.Millisecond)
			assert.True(t, ok)
		} else {
			assert.False(t, canAccept, "bucket should be full by peer %d", i)
		}
	}

	assert.LessOrEqual(t, len(tbl.byLevel[level]), MaxLevelPeers)
}

func TestRemovePeer(t *testing.T) {
	self := randomPublicId(t)
	tbl := New(self.Tag)
	p := randomPublicId(t)

	idx, ok := tbl.Insert(p, testAddr("a"), time.Millisecond)
	require.True(t, ok)

	assert.True(t, tbl.Remove(idx))
	assert.False(t, tbl.Remove(idx))

	_, _, found := tbl.Lookup(p.Tag)
	assert.False(t, found)
	assert.True(t, tbl.CanAccept(p.Tag))
}

func TestInvariantSelfNeverPresent(t *testing.T) {
	self := randomPublicId(t)
	tbl := New(self.Tag)
	for i := 0; i < 50; i++ {
		p := randomPublicId(t)
		tbl.Insert(p, testAddr("a"), time.Millisecond)
	}
	_, _, found := tbl.Lookup(self.Tag)
	assert.False(t, found)
}

func TestInvariantIndicesConsistent(t *testing.T) {
	self := randomPublicId(t)
	tbl := New(self.Tag)
	for i := 0; i < 200; i++ {
		p := randomPublicId(t)
		tbl.Insert(p, testAddr("a"), time.Millisecond)
	}

	for _, ip := range tbl.Snapshot() {
		idx, byIdPeer, ok := tbl.Lookup(ip.Peer.Id.Tag)
		assert.True(t, ok)
		assert.Equal(t, ip.Idx, idx)
		assert.Equal(t, ip.Peer.Id.Tag, byIdPeer.Id.Tag)

		level := tag.Level(self.Tag, ip.Peer.Id.Tag)
		found := false
		for _, x := range tbl.byLevel[level] {
			if x == ip.Idx {
				found = true
			}
		}
		assert.True(t, found)
	}

	for level := range tbl.byLevel {
		assert.LessOrEqual(t, len(tbl.byLevel[level]), MaxLevelPeers)
	}
}

func TestClosestToStrictlyCloser(t *testing.T) {
	self := randomPublicId(t)
	tbl := New(self.Tag)

	var target tag.Tag
	_, err := rand.Read(target[:])
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		p := randomPublicId(t)
		tbl.Insert(p, testAddr("a"), time.Millisecond)
	}

	peer, ok := tbl.ClosestTo(target)
	if ok {
		assert.True(t, peer.Id.Tag.Xor(target).Less(self.Tag.Xor(target)))
	}
}

func TestDiscoverCandidateNeverSelf(t *testing.T) {
	self := randomPublicId(t)
	tbl := New(self.Tag)
	for i := 0; i < 20; i++ {
		p := randomPublicId(t)
		tbl.Insert(p, testAddr("a"), time.Millisecond)
	}

	var target tag.Tag
	_, err := rand.Read(target[:])
	require.NoError(t, err)

	for lvl := 0; lvl <= 255; lvl++ {
		if peer, ok := tbl.DiscoverCandidate(target, lvl); ok {
			assert.NotEqual(t, target, peer.Id.Tag)
			assert.LessOrEqual(t, tag.Level(peer.Id.Tag, target), lvl)
		}
	}
}
