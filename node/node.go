// Package node wires the routing table, content store and transport backend
// together into a running service: a long-lived struct holding the
// identity/table/store, started by Run, which launches a host goroutine
// plus periodic ping and discover maintenance loops and tears down via a
// cancelable context. The table and store each carry their own lock
// internally, so the node layer itself stays lock-free and only sequences
// calls into them.
package node

import (
	"context"
	"time"

	set "gopkg.in/fatih/set.v0"

	"github.com/tagnet/tagnet/common"
	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/logger/glog"
	"github.com/tagnet/tagnet/routing"
	"github.com/tagnet/tagnet/store"
	"github.com/tagnet/tagnet/transport"
)

// Tunable timings.
const (
	// pingTimeout bounds every outbound send.
	pingTimeout = 1 * time.Second

	// pingInterval is the period of the liveness-probing maintenance loop.
	pingInterval = 10 * time.Second

	// discoverInterval is the period of the self-directed discovery walk.
	discoverInterval = 5 * time.Second
)

// Config bundles the construction-time parameters of a Node.
type Config struct {
	Self         identity.PrivateId
	Addr         transport.Addr
	Backend      transport.Backend
	InitialPeers []transport.Addr
}

// Node is a single running participant: its identity, routing table,
// content store, and the transport backend it speaks through.
type Node struct {
	self    identity.PrivateId
	addr    transport.Addr
	table   *routing.Table
	store   *store.Store
	backend transport.Backend

	metrics     *verbMetrics
	misbehavior *misbehaviorLog

	initialPeers []transport.Addr
}

// New constructs a Node from cfg. The backend is not yet hosting; call
// Run to start it.
func New(cfg Config) *Node {
	mlogOnce.Do(initMLogging)

	n := &Node{
		self:         cfg.Self,
		addr:         cfg.Addr,
		table:        routing.New(cfg.Self.Pub.Tag),
		store:        store.New(),
		backend:      cfg.Backend,
		metrics:      newVerbMetrics(),
		misbehavior:  newMisbehaviorLog(),
		initialPeers: cfg.InitialPeers,
	}
	n.backend.Init(n, cfg.Addr)
	return n
}

// Self returns the node's public identity.
func (n *Node) Self() identity.PublicId { return n.self.Pub }

// Addr returns the node's advertised address.
func (n *Node) Addr() transport.Addr { return n.addr }

// Run launches the transport's host task, greets the configured initial
// peers to seed the routing table, then multiplexes the host task's
// completion against the ping and discover maintenance loops until ctx is
// canceled.
func (n *Node) Run(ctx context.Context) error {
	mlog.Sendf(1, mlogSessionStart.SetDetailValues(n.self.Pub.Tag.String(), common.GetClientSessionIdentity()).String())

	hostErr := make(chan error, 1)
	go func() { hostErr <- n.backend.Host(ctx) }()

	n.bootstrap(ctx)

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()
	discoverTicker := time.NewTicker(discoverInterval)
	defer discoverTicker.Stop()

	for {
		select {
		case err := <-hostErr:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-pingTicker.C:
			n.pingSweep(ctx)
		case <-discoverTicker.C:
			n.discoverWalk(ctx)
		}
	}
}

// bootstrap seeds the routing table: for each configured initial address,
// repeatedly discoverPeer(nil, addr), following redirects until one stops
// offering them. visited guards against a redirect cycle (two peers
// pointing at each other) spinning the loop forever.
func (n *Node) bootstrap(ctx context.Context) {
	for _, addr := range n.initialPeers {
		visited := set.New(set.ThreadSafe)
		for {
			if visited.Has(addr.String()) {
				glog.V(glog.Level(1)).Infof("bootstrap: redirect cycle at %s, giving up", addr)
				break
			}
			visited.Add(addr.String())
			redirect, err := n.discoverPeer(ctx, nil, addr)
			if err != nil {
				glog.V(glog.Level(1)).Infof("bootstrap: %s did not respond: %v", addr, err)
				break
			}
			if redirect == nil {
				break
			}
			addr = redirect
		}
	}
}
