package inproc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
)

type fakeInbound struct {
	greetAccept bool
	selfId      identity.PublicId
	pingErr     error
	stored      map[tag.Tag][]byte
}

func (f *fakeInbound) Greet(id identity.PublicId, addr transport.Addr) (bool, identity.PublicId, transport.Addr) {
	if f.greetAccept {
		return true, f.selfId, nil
	}
	return false, identity.PublicId{}, nil
}
func (f *fakeInbound) Ping() error { return f.pingErr }
func (f *fakeInbound) Discover(target tag.Tag, maxLevel int) (identity.PublicId, transport.Addr, bool) {
	return identity.PublicId{}, nil, false
}
func (f *fakeInbound) Locate(t tag.Tag) (bool, identity.PublicId, transport.Addr, bool) {
	_, ok := f.stored[t]
	return ok, identity.PublicId{}, nil, false
}
func (f *fakeInbound) Upload(data []byte) error {
	f.stored[tag.Digest(data)] = data
	return nil
}
func (f *fakeInbound) Download(t tag.Tag) ([]byte, bool) {
	d, ok := f.stored[t]
	return d, ok
}

func TestSendRoundTripsThroughRegistry(t *testing.T) {
	addr := NewAddr("peer")
	be := New(addr)
	fi := &fakeInbound{greetAccept: true, stored: make(map[tag.Tag][]byte)}
	be.Init(fi, addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go be.Host(ctx)

	caller := New(NewAddr("caller"))
	res, err := caller.SendGreet(context.Background(), addr, identity.PublicId{}, NewAddr("caller"))
	require.NoError(t, err)
	require.True(t, res.Accepted)

	gotTag, err := caller.SendUpload(context.Background(), addr, []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, tag.Digest([]byte("hello")), gotTag)

	lr, err := caller.SendLocate(context.Background(), addr, gotTag)
	require.NoError(t, err)
	require.True(t, lr.Present)

	data, err := caller.SendDownload(context.Background(), addr, gotTag)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
}

func TestSendToUnknownAddrFails(t *testing.T) {
	caller := New(NewAddr("caller"))
	_, err := caller.SendPing(context.Background(), NewAddr("ghost"))
	require.ErrorIs(t, err, ErrUnknownAddr)
}

func TestHostClosesOnCancel(t *testing.T) {
	addr := NewAddr("closer")
	be := New(addr)
	be.Init(&fakeInbound{stored: make(map[tag.Tag][]byte)}, addr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		be.Host(ctx)
		close(done)
	}()
	cancel()
	<-done

	caller := New(NewAddr("caller2"))
	_, err := caller.SendPing(context.Background(), addr)
	require.Error(t, err)
}
