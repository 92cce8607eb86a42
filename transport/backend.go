// Package transport defines the abstract boundary between the node core
// and the network. The core is parameterized entirely by this package's
// interfaces; concrete transports live in transport/httpjson and
// transport/inproc.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
)

// Addr is an opaque peer address. Implementations must provide value
// equality and be usable as a map key.
type Addr interface {
	// String renders the address for logs and HTTP URLs.
	String() string
}

// ErrTransport is wrapped by every transport-level failure (send failed or
// timed out). The core does not distinguish timeout from any other
// transport error.
var ErrTransport = errors.New("transport: peer did not respond")

// WrapTransportError wraps a lower-level error as a transport error.
func WrapTransportError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// Sender is the set of six outbound primitives the node core depends on,
// one per protocol message.
type Sender interface {
	SendGreet(ctx context.Context, addr Addr, self identity.PublicId, selfAddr Addr) (GreetResult, error)
	SendPing(ctx context.Context, addr Addr) error
	SendDiscover(ctx context.Context, addr Addr, target tag.Tag, maxLevel int) (DiscoverResult, error)
	SendLocate(ctx context.Context, addr Addr, t tag.Tag) (LocateResult, error)
	SendUpload(ctx context.Context, addr Addr, data []byte) (tag.Tag, error)
	SendDownload(ctx context.Context, addr Addr, t tag.Tag) ([]byte, error)
}

// Inbound is the symmetric set of handlers a transport's host task
// dispatches into. A Backend's host task calls these as requests arrive;
// the node package provides the concrete implementation.
type Inbound interface {
	// Greet returns (true, self.id, nil) on acceptance, or (false, _,
	// redirect) on refusal where redirect is nil if the table was empty.
	Greet(id identity.PublicId, addr Addr) (accepted bool, selfId identity.PublicId, redirect Addr)
	Ping() error
	Discover(target tag.Tag, maxLevel int) (id identity.PublicId, addr Addr, found bool)
	// Locate returns (true, _, _, false) if present locally, (false, id,
	// addr, true) for a redirect, or (false, _, _, false) for "not found,
	// local minimum".
	Locate(t tag.Tag) (present bool, id identity.PublicId, addr Addr, redirect bool)
	Upload(data []byte) error
	Download(t tag.Tag) (data []byte, found bool)
}

// GreetResult is the outcome of a greet exchange: either the remote's id
// (accepted), or an advisory redirect address (refused), or neither (empty
// table, outright refusal).
type GreetResult struct {
	Accepted bool
	Id       identity.PublicId
	Redirect Addr // non-nil only when !Accepted and a redirect was offered
}

// DiscoverResult is the outcome of a discover exchange.
type DiscoverResult struct {
	Found bool
	Id    identity.PublicId
	Addr  Addr
}

// LocateResult is the outcome of a locate exchange: present, redirected, or
// neither (local minimum).
type LocateResult struct {
	// Present is true when the remote holds the tag locally (Ok(true)).
	Present bool
	// Redirect is set when the remote points at a closer peer (Err(peer));
	// mutually exclusive with Present.
	Redirect    bool
	RedirectId  identity.PublicId
	RedirectTo  Addr
}

// Backend is implemented by a transport. It is constructed by the process
// entry point and handed to the node.
type Backend interface {
	Sender

	// Init lets a loopback-style backend capture a handle to the node it
	// will dispatch into.
	Init(inbound Inbound, self Addr)

	// Host serves inbound requests until a fatal error or ctx is canceled.
	Host(ctx context.Context) error
}
