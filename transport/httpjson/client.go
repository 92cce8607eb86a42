// HTTP/JSON client half of the reference transport: implements
// transport.Sender by issuing requests against a peer's absolute base URL.
package httpjson

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mailru/easyjson/jwriter"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
)

// clientTimeout is the per-request deadline applied by the client, layered
// under whatever deadline the caller's context already carries.
const clientTimeout = 1 * time.Second

func marshalBody(m interface{ MarshalEasyJSON(w *jwriter.Writer) }) *bytes.Reader {
	jw := jwriter.Writer{}
	m.MarshalEasyJSON(&jw)
	buf, _ := jw.BuildBytes()
	return bytes.NewReader(buf)
}

func (b *Backend) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, clientTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, transport.WrapTransportError(err)
	}
	return resp, nil
}

// SendGreet implements transport.Sender.
func (b *Backend) SendGreet(ctx context.Context, addr transport.Addr, self identity.PublicId, selfAddr transport.Addr) (transport.GreetResult, error) {
	body := marshalBody(greetRequest{IdDER: hex.EncodeToString(self.Marshal()), Addr: selfAddr.String()})
	resp, err := b.do(ctx, http.MethodPost, addr.String()+"/peer/greet", body)
	if err != nil {
		return transport.GreetResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return transport.GreetResult{}, fmt.Errorf("%w: status %d", transport.ErrTransport, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport.GreetResult{}, transport.WrapTransportError(err)
	}
	var wire greetResponse
	if err := unmarshalBytes(data, &wire); err != nil {
		return transport.GreetResult{}, transport.WrapTransportError(err)
	}

	res := transport.GreetResult{Accepted: wire.Accepted}
	if wire.Accepted {
		der, err := hex.DecodeString(wire.SelfDER)
		if err != nil {
			return transport.GreetResult{}, transport.WrapTransportError(err)
		}
		id, err := identity.UnmarshalPublicId(der)
		if err != nil {
			return transport.GreetResult{}, transport.WrapTransportError(err)
		}
		res.Id = id
	} else if wire.Redirect != "" {
		res.Redirect = Addr(wire.Redirect)
	}
	return res, nil
}

// SendPing implements transport.Sender.
func (b *Backend) SendPing(ctx context.Context, addr transport.Addr) error {
	resp, err := b.do(ctx, http.MethodGet, addr.String()+"/peer/ping", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", transport.ErrTransport, resp.StatusCode)
	}
	return nil
}

// SendDiscover implements transport.Sender.
func (b *Backend) SendDiscover(ctx context.Context, addr transport.Addr, target tag.Tag, maxLevel int) (transport.DiscoverResult, error) {
	body := marshalBody(discoverRequest{Target: target.String(), MaxLevel: maxLevel})
	resp, err := b.do(ctx, http.MethodPost, addr.String()+"/peer/discover", body)
	if err != nil {
		return transport.DiscoverResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return transport.DiscoverResult{}, fmt.Errorf("%w: status %d", transport.ErrTransport, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport.DiscoverResult{}, transport.WrapTransportError(err)
	}
	var wire discoverResponse
	if err := unmarshalBytes(data, &wire); err != nil {
		return transport.DiscoverResult{}, transport.WrapTransportError(err)
	}
	res := transport.DiscoverResult{Found: wire.Found}
	if wire.Found {
		der, err := hex.DecodeString(wire.IdDER)
		if err != nil {
			return transport.DiscoverResult{}, transport.WrapTransportError(err)
		}
		id, err := identity.UnmarshalPublicId(der)
		if err != nil {
			return transport.DiscoverResult{}, transport.WrapTransportError(err)
		}
		res.Id = id
		res.Addr = Addr(wire.Addr)
	}
	return res, nil
}

// SendLocate implements transport.Sender.
func (b *Backend) SendLocate(ctx context.Context, addr transport.Addr, t tag.Tag) (transport.LocateResult, error) {
	body := marshalBody(locateRequest{Tag: t.String()})
	resp, err := b.do(ctx, http.MethodPost, addr.String()+"/peer/locate", body)
	if err != nil {
		return transport.LocateResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return transport.LocateResult{}, fmt.Errorf("%w: status %d", transport.ErrTransport, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport.LocateResult{}, transport.WrapTransportError(err)
	}
	var wire locateResponse
	if err := unmarshalBytes(data, &wire); err != nil {
		return transport.LocateResult{}, transport.WrapTransportError(err)
	}
	res := transport.LocateResult{Present: wire.Present, Redirect: wire.Redirect}
	if wire.Redirect {
		der, err := hex.DecodeString(wire.IdDER)
		if err != nil {
			return transport.LocateResult{}, transport.WrapTransportError(err)
		}
		id, err := identity.UnmarshalPublicId(der)
		if err != nil {
			return transport.LocateResult{}, transport.WrapTransportError(err)
		}
		res.RedirectId = id
		res.RedirectTo = Addr(wire.Addr)
	}
	return res, nil
}

// SendUpload implements transport.Sender: the peer-to-peer upload
// primitive, not the iterative upload engine.
func (b *Backend) SendUpload(ctx context.Context, addr transport.Addr, data []byte) (tag.Tag, error) {
	resp, err := b.do(ctx, http.MethodPost, addr.String()+"/peer/upload", bytes.NewReader(data))
	if err != nil {
		return tag.Tag{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return tag.Tag{}, fmt.Errorf("%w: status %d", transport.ErrTransport, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return tag.Tag{}, transport.WrapTransportError(err)
	}
	var wire uploadResponse
	if err := unmarshalBytes(raw, &wire); err != nil {
		return tag.Tag{}, transport.WrapTransportError(err)
	}
	return tag.Parse(wire.Tag)
}

// SendDownload implements transport.Sender: the peer-to-peer download
// primitive.
func (b *Backend) SendDownload(ctx context.Context, addr transport.Addr, t tag.Tag) ([]byte, error) {
	body := marshalBody(locateRequest{Tag: t.String()})
	resp, err := b.do(ctx, http.MethodPost, addr.String()+"/peer/download", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: status %d", transport.ErrTransport, resp.StatusCode)
	}
}
