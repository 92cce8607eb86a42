package httpjson

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
)

// fakeInbound is a transport.Inbound test double that also satisfies
// doUploader/doDownloader, so it can stand in for a *node.Node against the
// /data/* routes without pulling the node package into this test.
type fakeInbound struct {
	greetAccept bool
	selfId      identity.PublicId
	redirect    transport.Addr
	pingErr     error
	stored      map[tag.Tag][]byte
}

func newFakeInbound() *fakeInbound {
	return &fakeInbound{stored: make(map[tag.Tag][]byte)}
}

func (f *fakeInbound) Greet(id identity.PublicId, addr transport.Addr) (bool, identity.PublicId, transport.Addr) {
	if f.greetAccept {
		return true, f.selfId, nil
	}
	return false, identity.PublicId{}, f.redirect
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
func (f *fakeInbound) DoUpload(ctx context.Context, data []byte) (tag.Tag, error) {
	t := tag.Digest(data)
	f.stored[t] = data
	return t, nil
}
func (f *fakeInbound) DoDownload(ctx context.Context, t tag.Tag) ([]byte, error) {
	return f.stored[t], nil
}

func newTestServer(t *testing.T, fi *fakeInbound) *httptest.Server {
	t.Helper()
	srvBackend := New("unused")
	srvBackend.Init(fi, Addr("http://server"))
	ts := httptest.NewServer(srvBackend.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestGreetAcceptAndRefuseWithRedirect(t *testing.T) {
	fi := newFakeInbound()
	fi.greetAccept = true
	remoteSelf, err := identity.FromSeed([]byte{1})
	require.NoError(t, err)
	fi.selfId = remoteSelf.Pub

	ts := newTestServer(t, fi)
	client := New("unused")

	caller, err := identity.FromSeed([]byte{2})
	require.NoError(t, err)

	res, err := client.SendGreet(context.Background(), Addr(ts.URL), caller.Pub, Addr("http://caller"))
	require.NoError(t, err)
	require.True(t, res.Accepted)
	require.True(t, res.Id.Equal(fi.selfId))

	fi.greetAccept = false
	fi.redirect = Addr("http://elsewhere")
	res, err = client.SendGreet(context.Background(), Addr(ts.URL), caller.Pub, Addr("http://caller"))
	require.NoError(t, err)
	require.False(t, res.Accepted)
	require.Equal(t, Addr("http://elsewhere"), res.Redirect)
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	fi := newFakeInbound()
	ts := newTestServer(t, fi)
	client := New("unused")

	data := []byte("hello httpjson")
	got, err := client.SendUpload(context.Background(), Addr(ts.URL), data)
	require.NoError(t, err)
	require.Equal(t, tag.Digest(data), got)

	back, err := client.SendDownload(context.Background(), Addr(ts.URL), got)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestDownloadMissingTagReturnsNil(t *testing.T) {
	fi := newFakeInbound()
	ts := newTestServer(t, fi)
	client := New("unused")

	missing := tag.Digest([]byte("never uploaded"))
	data, err := client.SendDownload(context.Background(), Addr(ts.URL), missing)
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestDataEndpointsRoundTrip(t *testing.T) {
	fi := newFakeInbound()
	ts := newTestServer(t, fi)
	payload := []byte("via /data")

	resp, err := http.Post(ts.URL+"/data/upload", "application/octet-stream", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	stored, ok := fi.stored[tag.Digest(payload)]
	require.True(t, ok)
	require.Equal(t, payload, stored)

	getResp, err := http.Get(ts.URL + "/data/" + tag.Digest(payload).String())
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	badResp, err := http.Get(ts.URL + "/data/not-a-hex-tag")
	require.NoError(t, err)
	defer badResp.Body.Close()
	require.Equal(t, http.StatusBadRequest, badResp.StatusCode)

	missingResp, err := http.Get(ts.URL + "/data/" + tag.Digest([]byte("absent")).String())
	require.NoError(t, err)
	defer missingResp.Body.Close()
	require.Equal(t, http.StatusNotFound, missingResp.StatusCode)
}

func TestMalformedGreetBodyIsBadRequest(t *testing.T) {
	fi := newFakeInbound()
	ts := newTestServer(t, fi)

	resp, err := http.Post(ts.URL+"/peer/greet", "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPingFailureIsBadGateway(t *testing.T) {
	fi := newFakeInbound()
	fi.pingErr = context.DeadlineExceeded
	ts := newTestServer(t, fi)
	client := New("unused")

	err := client.SendPing(context.Background(), Addr(ts.URL))
	require.ErrorIs(t, err, transport.ErrTransport)
	require.Contains(t, err.Error(), "status 502")
}
