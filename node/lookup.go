// The iterative lookup engine and outbound discovery. These are the node's
// only unbounded-seeming loops, bounded in practice by strict descent on
// the XOR metric (at most 256 hops). Each walk tracks a single current
// peer rather than a concurrent shortlist.
package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
)

// maxHops bounds locateData's walk: at most one hop per distance level.
const maxHops = tag.Size * 8

// locateData walks the network toward the peer closest to t, one hop at a
// time. isSelf reports whether the returned holder is this node; when
// found is false and isSelf is true, the walk bottomed out at this node
// acting as the effective nearest.
func (n *Node) locateData(ctx context.Context, t tag.Tag) (found bool, isSelf bool, holder identity.PublicId, addr transport.Addr, hops int, err error) {
	if n.store.Has(t) {
		return true, true, n.self.Pub, n.addr, 0, nil
	}

	current, ok := n.table.ClosestTo(t)
	if !ok {
		return false, true, n.self.Pub, n.addr, 0, nil
	}

	for hop := 1; hop <= maxHops; hop++ {
		cctx, cancel := context.WithTimeout(ctx, pingTimeout)
		res, sendErr := n.backend.SendLocate(cctx, current.Addr, t)
		cancel()
		if sendErr != nil {
			return false, false, identity.PublicId{}, nil, hop, ErrPeerDidNotRespond
		}

		if res.Present {
			return true, false, current.Id, current.Addr, hop, nil
		}
		if !res.Redirect {
			return false, true, n.self.Pub, n.addr, hop, nil
		}

		curDist := current.Id.Tag.Xor(t)
		nextDist := res.RedirectId.Tag.Xor(t)
		if !nextDist.Less(curDist) {
			n.misbehavior.record(current.Id.Tag, "locate", "redirect not strictly closer")
			return false, true, n.self.Pub, n.addr, hop, nil
		}
		current.Id, current.Addr = res.RedirectId, res.RedirectTo
	}

	// Unreachable given strict descent on a finite metric space, but kept
	// as the loop's formal exit so the function always returns.
	return false, true, n.self.Pub, n.addr, maxHops, nil
}

// doUpload locates the peer closest to data's tag and stores data there
// (or locally, if this node is closest), short-circuiting if the tag is
// already present somewhere along the walk.
func (n *Node) doUpload(ctx context.Context, data []byte) (tag.Tag, error) {
	t := tag.Digest(data)

	found, isSelf, _, addr, hops, err := n.locateData(ctx, t)
	if err != nil {
		return tag.Tag{}, err
	}
	if found {
		mlog.Sendf(1, mlogUpload.SetDetailValues(t.String(), hops, false).String())
		return t, nil
	}
	if isSelf {
		n.store.Put(data)
		mlog.Sendf(1, mlogUpload.SetDetailValues(t.String(), hops, true).String())
		return t, nil
	}

	cctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if _, err := n.backend.SendUpload(cctx, addr, data); err != nil {
		return tag.Tag{}, ErrPeerDidNotRespond
	}
	mlog.Sendf(1, mlogUpload.SetDetailValues(t.String(), hops, false).String())
	return t, nil
}

// doDownload locates the tag's holder and fetches the bytes, verifying the
// returned data hashes back to the requested tag.
func (n *Node) doDownload(ctx context.Context, t tag.Tag) ([]byte, error) {
	found, isSelf, _, addr, hops, err := n.locateData(ctx, t)
	if err != nil {
		return nil, err
	}
	if !found {
		mlog.Sendf(1, mlogDownload.SetDetailValues(t.String(), hops, false).String())
		return nil, nil
	}
	if isSelf {
		data, ok := n.store.Get(t)
		if !ok {
			return nil, errors.New("locate_data reported a local hit that vanished")
		}
		mlog.Sendf(1, mlogDownload.SetDetailValues(t.String(), hops, true).String())
		return data, nil
	}

	cctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	data, sendErr := n.backend.SendDownload(cctx, addr, t)
	if sendErr != nil {
		return nil, ErrPeerDidNotRespond
	}
	if data == nil {
		return nil, errors.New("holder reported present but returned no data")
	}
	if tag.Digest(data) != t {
		return nil, ErrIntegrityCheckFailed
	}
	mlog.Sendf(1, mlogDownload.SetDetailValues(t.String(), hops, true).String())
	return data, nil
}

// discoverPeer greets addr and, if accepted, adds it to the routing table.
// A nil return pair means success; a non-nil redirect means the remote
// pointed elsewhere; a non-nil err means the attempt failed outright.
func (n *Node) discoverPeer(ctx context.Context, supposedId *identity.PublicId, addr transport.Addr) (redirect transport.Addr, err error) {
	if supposedId != nil && !n.table.CanAccept(supposedId.Tag) {
		return nil, fmt.Errorf("cannot accept %s", supposedId.Tag)
	}

	cctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	res, sendErr := n.backend.SendGreet(cctx, addr, n.self.Pub, n.addr)
	if sendErr != nil {
		return nil, transport.WrapTransportError(sendErr)
	}

	if !res.Accepted {
		if res.Redirect != nil {
			return res.Redirect, nil
		}
		return nil, fmt.Errorf("greet refused by %s, no redirect offered", addr)
	}

	if supposedId != nil && !supposedId.Equal(res.Id) {
		n.misbehavior.record(res.Id.Tag, "greet", "responder id mismatch")
		return nil, fmt.Errorf("greet id mismatch at %s", addr)
	}

	n.acceptPeer(res.Id, addr)
	return nil, nil
}

// DoUpload is the exported entry point for the iterative upload walk, used
// by the CLI and by in-process test harnesses.
func (n *Node) DoUpload(ctx context.Context, data []byte) (tag.Tag, error) {
	return n.doUpload(ctx, data)
}

// DoDownload is the exported entry point for the iterative download walk.
func (n *Node) DoDownload(ctx context.Context, t tag.Tag) ([]byte, error) {
	return n.doDownload(ctx, t)
}

// DiscoverPeer is the exported entry point for discoverPeer.
func (n *Node) DiscoverPeer(ctx context.Context, supposedId *identity.PublicId, addr transport.Addr) (transport.Addr, error) {
	return n.discoverPeer(ctx, supposedId, addr)
}
