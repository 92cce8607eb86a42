// Package inproc is a direct-dispatch Backend for simulation and tests: it
// resolves an Addr to another Backend's Inbound handler in the same process
// instead of going over a socket. A shared registry lets addresses resolve
// each other without a constructor-time wiring step.
package inproc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
)

var (
	// ErrUnknownAddr is returned when an Addr was never registered (no
	// Backend exists at that address).
	ErrUnknownAddr = errors.New("inproc: no backend at address")
	// ErrClosed is returned when sending to a Backend whose Host has
	// returned.
	ErrClosed = errors.New("inproc: backend closed")
)

var handleSeq uint64

// Addr identifies a registered in-process backend by a monotonic handle,
// breaking the would-be cyclic reference between a Backend and the Addr it
// advertises (the registry, not the Backend struct, owns the mapping).
type Addr struct {
	handle uint64
	label  string
}

func (a Addr) String() string {
	if a.label != "" {
		return a.label
	}
	return fmt.Sprintf("inproc:%d", a.handle)
}

var registry sync.Map // Addr -> *Backend

// NewAddr allocates a fresh, never-reused address. label is cosmetic (used
// in String/logs); pass "" to default to "inproc:<n>".
func NewAddr(label string) Addr {
	return Addr{handle: atomic.AddUint64(&handleSeq, 1), label: label}
}

// Backend is an in-process transport.Backend. The zero value is not usable;
// construct with New.
type Backend struct {
	addr    Addr
	inbound transport.Inbound

	mu     sync.Mutex
	closed bool
}

// New registers and returns a Backend at addr. Init must still be called
// (by node.New) to supply the Inbound dispatcher before Host is started.
func New(addr Addr) *Backend {
	b := &Backend{addr: addr}
	registry.Store(addr, b)
	return b
}

// Init implements transport.Backend.
func (b *Backend) Init(inbound transport.Inbound, self transport.Addr) {
	b.inbound = inbound
}

// Host implements transport.Backend: for an in-process backend this just
// blocks until ctx is canceled, then deregisters.
func (b *Backend) Host(ctx context.Context) error {
	<-ctx.Done()
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	registry.Delete(b.addr)
	return ctx.Err()
}

func lookup(addr transport.Addr) (*Backend, error) {
	v, ok := registry.Load(addr)
	if !ok {
		return nil, ErrUnknownAddr
	}
	b := v.(*Backend)
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	return b, nil
}

// SendGreet implements transport.Sender.
func (b *Backend) SendGreet(ctx context.Context, addr transport.Addr, self identity.PublicId, selfAddr transport.Addr) (transport.GreetResult, error) {
	peer, err := lookup(addr)
	if err != nil {
		return transport.GreetResult{}, err
	}
	accepted, selfId, redirect := peer.inbound.Greet(self, selfAddr)
	return transport.GreetResult{Accepted: accepted, Id: selfId, Redirect: redirect}, nil
}

// SendPing implements transport.Sender.
func (b *Backend) SendPing(ctx context.Context, addr transport.Addr) error {
	peer, err := lookup(addr)
	if err != nil {
		return err
	}
	return peer.inbound.Ping()
}

// SendDiscover implements transport.Sender.
func (b *Backend) SendDiscover(ctx context.Context, addr transport.Addr, target tag.Tag, maxLevel int) (transport.DiscoverResult, error) {
	peer, err := lookup(addr)
	if err != nil {
		return transport.DiscoverResult{}, err
	}
	id, peerAddr, found := peer.inbound.Discover(target, maxLevel)
	return transport.DiscoverResult{Found: found, Id: id, Addr: peerAddr}, nil
}

// SendLocate implements transport.Sender.
func (b *Backend) SendLocate(ctx context.Context, addr transport.Addr, t tag.Tag) (transport.LocateResult, error) {
	peer, err := lookup(addr)
	if err != nil {
		return transport.LocateResult{}, err
	}
	present, id, peerAddr, redirect := peer.inbound.Locate(t)
	return transport.LocateResult{Present: present, Redirect: redirect, RedirectId: id, RedirectTo: peerAddr}, nil
}

// SendUpload implements transport.Sender.
func (b *Backend) SendUpload(ctx context.Context, addr transport.Addr, data []byte) (tag.Tag, error) {
	peer, err := lookup(addr)
	if err != nil {
		return tag.Tag{}, err
	}
	if err := peer.inbound.Upload(data); err != nil {
		return tag.Tag{}, err
	}
	return tag.Digest(data), nil
}

// SendDownload implements transport.Sender.
func (b *Backend) SendDownload(ctx context.Context, addr transport.Addr, t tag.Tag) ([]byte, error) {
	peer, err := lookup(addr)
	if err != nil {
		return nil, err
	}
	data, ok := peer.inbound.Download(t)
	if !ok {
		return nil, nil
	}
	return data, nil
}
