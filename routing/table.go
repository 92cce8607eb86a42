// Package routing implements the node's bounded Kademlia-style routing
// table: a mutex-guarded bucket array indexed by XOR-distance level, with a
// flat, fixed per-level capacity and no replacement cache or IP-diversity
// policy.
package routing

import (
	"math/rand"
	"sync"
	"time"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
)

// MaxLevelPeers bounds the number of peers held in any one bucket.
const MaxLevelPeers = 2

// NumLevels is the number of distance buckets (0..255).
const NumLevels = 256

// PeerIdx is an opaque, stable key into the table's peer map.
type PeerIdx uint64

// Peer records a known peer's identity, address, and the last observed
// round-trip time for a liveness probe.
type Peer struct {
	Id   identity.PublicId
	Addr transport.Addr
	Ping time.Duration
}

// Table is the bounded, mutex-guarded routing table. All operations are
// safe for concurrent use.
type Table struct {
	mu sync.Mutex

	self tag.Tag

	nextIdx   PeerIdx
	peers     map[PeerIdx]Peer
	byId      map[tag.Tag]PeerIdx
	byLevel   [NumLevels][]PeerIdx
}

// New constructs an empty table for a node whose own tag is self.
func New(self tag.Tag) *Table {
	return &Table{
		self:  self,
		peers: make(map[PeerIdx]Peer),
		byId:  make(map[tag.Tag]PeerIdx),
	}
}

// Self returns the local node's tag.
func (t *Table) Self() tag.Tag {
	return t.self
}

// Len returns the total number of known peers.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.peers)
}

// Get returns the peer stored at idx, if any.
func (t *Table) Get(idx PeerIdx) (Peer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.peers[idx]
	return p, ok
}

// Lookup returns the peer known under id, if any, plus its index.
func (t *Table) Lookup(id tag.Tag) (PeerIdx, Peer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, ok := t.byId[id]
	if !ok {
		return 0, Peer{}, false
	}
	return idx, t.peers[idx], true
}

// CanAccept reports whether id is eligible to be inserted: it is not the
// local node, is not already known, and its bucket has spare capacity.
func (t *Table) CanAccept(id tag.Tag) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canAcceptLocked(id)
}

func (t *Table) canAcceptLocked(id tag.Tag) bool {
	if id == t.self {
		return false
	}
	if _, known := t.byId[id]; known {
		return false
	}
	level := tag.Level(t.self, id)
	return len(t.byLevel[level]) < MaxLevelPeers
}

// Insert adds or updates a peer under the lock. It must only be called
// after a liveness probe against addr has already succeeded outside the
// lock: the probe itself is the caller's responsibility, since the table
// has no transport dependency beyond the Addr value type. Returns the
// resulting index and whether a peer is now usable.
func (t *Table) Insert(id identity.PublicId, addr transport.Addr, rtt time.Duration) (PeerIdx, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx, known := t.byId[id.Tag]; known {
		p := t.peers[idx]
		p.Ping = rtt
		p.Addr = addr
		t.peers[idx] = p
		return idx, true
	}

	if !t.canAcceptLocked(id.Tag) {
		return 0, false
	}

	idx := t.nextIdx
	t.nextIdx++
	t.peers[idx] = Peer{Id: id, Addr: addr, Ping: rtt}
	t.byId[id.Tag] = idx
	level := tag.Level(t.self, id.Tag)
	t.byLevel[level] = append(t.byLevel[level], idx)
	return idx, true
}

// Remove atomically drops idx from all three indices. Returns whether idx
// was present.
func (t *Table) Remove(idx PeerIdx) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.peers[idx]
	if !ok {
		return false
	}
	delete(t.peers, idx)
	delete(t.byId, p.Id.Tag)
	level := tag.Level(t.self, p.Id.Tag)
	bucket := t.byLevel[level]
	for i, x := range bucket {
		if x == idx {
			t.byLevel[level] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns a copy of every (idx, peer) pair currently known,
// safe to range over outside the lock.
func (t *Table) Snapshot() []IdxPeer {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]IdxPeer, 0, len(t.peers))
	for idx, p := range t.peers {
		out = append(out, IdxPeer{Idx: idx, Peer: p})
	}
	return out
}

// IdxPeer pairs an index with its peer, for snapshot iteration.
type IdxPeer struct {
	Idx  PeerIdx
	Peer Peer
}

// RandomPeer returns a uniformly random known peer, if any.
func (t *Table) RandomPeer() (IdxPeer, bool) {
	snap := t.Snapshot()
	if len(snap) == 0 {
		return IdxPeer{}, false
	}
	return snap[rand.Intn(len(snap))], true
}

// DiscoverCandidate selects, uniformly among eligible peers, one whose tag
// is not target and whose level(xor(peer.tag, target)) <= maxLevel.
func (t *Table) DiscoverCandidate(target tag.Tag, maxLevel int) (Peer, bool) {
	snap := t.Snapshot()
	var eligible []Peer
	for _, ip := range snap {
		if ip.Peer.Id.Tag == target {
			continue
		}
		if tag.Level(ip.Peer.Id.Tag, target) <= maxLevel {
			eligible = append(eligible, ip.Peer)
		}
	}
	if len(eligible) == 0 {
		return Peer{}, false
	}
	return eligible[rand.Intn(len(eligible))], true
}

// ClosestTo returns the known peer strictly closer to target than self is,
// breaking ties by natural tag order, or false if no peer qualifies.
func (t *Table) ClosestTo(target tag.Tag) (Peer, bool) {
	snap := t.Snapshot()
	selfDist := t.self.Xor(target)
	var best *Peer
	var bestDist tag.Tag
	for i := range snap {
		p := snap[i].Peer
		d := p.Id.Tag.Xor(target)
		if !d.Less(selfDist) {
			continue // not strictly closer than self
		}
		if best == nil || d.Less(bestDist) || (d == bestDist && p.Id.Tag.Less(best.Id.Tag)) {
			pCopy := p
			best = &pCopy
			bestDist = d
		}
	}
	if best == nil {
		return Peer{}, false
	}
	return *best, true
}
