// Background maintenance loops: a ping sweep that evicts unresponsive
// peers, and a self-directed discovery walk that keeps the buckets closest
// to this node densely populated.
package node

import (
	"context"

	"github.com/tagnet/tagnet/logger/glog"
	"github.com/tagnet/tagnet/routing"
	"github.com/tagnet/tagnet/tag"
)

// pingSweep probes every known peer and evicts those that fail to respond.
// It snapshots the table under lock, then does I/O outside it.
func (n *Node) pingSweep(ctx context.Context) {
	for _, ip := range n.table.Snapshot() {
		cctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := n.backend.SendPing(cctx, ip.Peer.Addr)
		cancel()
		if err != nil {
			n.table.Remove(ip.Idx)
			mlog.Sendf(1, mlogPeerRemoved.SetDetailValues(n.table.Len(), ip.Peer.Id.Tag.String(), "ping failed").String())
			continue
		}
	}
}

// discoverWalk samples one peer as the starting hop, then for level from
// 255 down to 0 asks that hop to discover a peer near self; each time the
// hop offers a closer candidate, it's chased via discoverPeer and becomes
// the new hop. The first level that comes up empty, a hop that does not
// respond, or a hop that misbehaves ends the walk for this tick.
func (n *Node) discoverWalk(ctx context.Context) {
	self := n.table.Self()

	hop, ok := n.table.RandomPeer()
	if !ok {
		return // nobody to ask yet
	}
	hopAddr := hop.Peer.Addr

	for level := routing.NumLevels - 1; level >= 0; level-- {
		cctx, cancel := context.WithTimeout(ctx, pingTimeout)
		res, err := n.backend.SendDiscover(cctx, hopAddr, self, level)
		cancel()
		if err != nil {
			return
		}
		if !res.Found || res.Id.Tag == self {
			return // trail has gone cold
		}
		if tag.Level(self, res.Id.Tag) > level {
			n.misbehavior.record(res.Id.Tag, "discover", "candidate outside requested level")
			return
		}

		id := res.Id
		_, _ = n.discoverPeer(ctx, &id, res.Addr)
		hopAddr = res.Addr
	}
	glog.V(glog.Level(2)).Infof("discover walk complete, table has %d peers", n.table.Len())
}
