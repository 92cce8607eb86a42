// Inbound protocol handlers. Each receives already-decoded message fields
// and returns a typed response. There is no node-wide mutex: the routing
// table and the content store each take their own lock per operation, so a
// handler that touches both does not see them as one atomic state. The
// liveness probe inside Greet runs while neither lock is held.
package node

import (
	"context"
	"time"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
)

// Greet accepts id into the routing table if there is room, or else offers
// a random known peer as a redirect.
func (n *Node) Greet(id identity.PublicId, addr transport.Addr) (accepted bool, selfId identity.PublicId, redirect transport.Addr) {
	n.metrics.greet.Mark(1)

	if n.table.CanAccept(id.Tag) && n.acceptPeer(id, addr) {
		return true, n.self.Pub, nil
	}

	if to, ok := n.randomRedirect(); ok {
		return false, identity.PublicId{}, to
	}
	return false, identity.PublicId{}, nil
}

// Ping is a no-op; the caller measures RTT locally.
func (n *Node) Ping() error {
	n.metrics.ping.Mark(1)
	return nil
}

// Discover returns a known peer at or below maxLevel distance from target,
// excluding target itself.
func (n *Node) Discover(target tag.Tag, maxLevel int) (id identity.PublicId, addr transport.Addr, found bool) {
	n.metrics.discover.Mark(1)
	p, ok := n.table.DiscoverCandidate(target, maxLevel)
	if !ok {
		return identity.PublicId{}, nil, false
	}
	return p.Id, p.Addr, true
}

// Locate reports whether t is stored locally, or else offers a closer
// known peer to try next.
func (n *Node) Locate(t tag.Tag) (present bool, id identity.PublicId, addr transport.Addr, redirect bool) {
	n.metrics.locate.Mark(1)
	if n.store.Has(t) {
		return true, identity.PublicId{}, nil, false
	}
	if p, ok := n.table.ClosestTo(t); ok {
		return false, p.Id, p.Addr, true
	}
	return false, identity.PublicId{}, nil, false
}

// Upload stores data locally.
func (n *Node) Upload(data []byte) error {
	n.metrics.upload.Mark(1)
	n.store.Put(data)
	return nil
}

// Download returns the bytes stored locally under t, if any.
func (n *Node) Download(t tag.Tag) ([]byte, bool) {
	n.metrics.download.Mark(1)
	return n.store.Get(t)
}

// acceptPeer probes addr's liveness OUTSIDE the state mutex, then (on
// success) inserts under the mutex. canAccept has already been checked by
// the caller, but is rechecked implicitly by Table.Insert's presence check,
// which absorbs the benign race where two concurrent discoveries of the
// same peer both pass the probe.
func (n *Node) acceptPeer(id identity.PublicId, addr transport.Addr) bool {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	start := time.Now()
	if err := n.backend.SendPing(ctx, addr); err != nil {
		return false
	}
	rtt := time.Since(start)
	n.metrics.observePingRTT(rtt)

	_, ok := n.table.Insert(id, addr, rtt)
	if ok {
		mlog.Sendf(1, mlogPeerAdded.SetDetailValues(n.table.Len(), id.Tag.String(), addr.String()).String())
	}
	return ok
}

// randomRedirect picks a uniformly random known peer's address, used by
// Greet when refusing a peer.
func (n *Node) randomRedirect() (transport.Addr, bool) {
	p, ok := n.table.RandomPeer()
	if !ok {
		return nil, false
	}
	return p.Peer.Addr, true
}
