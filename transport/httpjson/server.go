// HTTP/JSON server half of the reference transport: a long-lived server
// struct owning a mux and a net.Listener, started by Host and torn down on
// context cancellation.
package httpjson

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/rs/cors"

	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/logger/glog"
	"github.com/tagnet/tagnet/tag"
	"github.com/tagnet/tagnet/transport"
)

// Backend is an HTTP/JSON transport.Backend.
type Backend struct {
	listenAddr string // host:port to bind, e.g. "[::1]:34093"
	client     *http.Client
	inbound    transport.Inbound
	self       transport.Addr
	srv        *http.Server
}

// New constructs a Backend that binds listenAddr (e.g. "[::1]:34093") and
// applies the client request timeout to every outbound call.
func New(listenAddr string) *Backend {
	return &Backend{
		listenAddr: listenAddr,
		client:     &http.Client{Timeout: clientTimeout},
	}
}

// Init implements transport.Backend.
func (b *Backend) Init(inbound transport.Inbound, self transport.Addr) {
	b.inbound = inbound
	b.self = self
}

// Handler builds the routed, CORS-wrapped mux. Split out from Host so
// tests can drive the routes through httptest.NewServer without binding a
// real socket.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/peer/greet", b.handleGreet)
	mux.HandleFunc("/peer/ping", b.handlePing)
	mux.HandleFunc("/peer/discover", b.handleDiscover)
	mux.HandleFunc("/peer/locate", b.handleLocate)
	mux.HandleFunc("/peer/upload", b.handlePeerUpload)
	mux.HandleFunc("/peer/download", b.handlePeerDownload)
	mux.HandleFunc("/data/upload", b.handleDataUpload)
	mux.HandleFunc("/data/", b.handleDataDownload)
	return cors.Default().Handler(mux)
}

// Host implements transport.Backend: serves /peer/* and /data/* until ctx
// is canceled, then shuts down gracefully.
func (b *Backend) Host(ctx context.Context) error {
	ln, err := net.Listen("tcp", b.listenAddr)
	if err != nil {
		return err
	}
	b.srv = &http.Server{Handler: b.Handler()}

	errc := make(chan error, 1)
	go func() { errc <- b.srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		_ = b.srv.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (b *Backend) handleGreet(w http.ResponseWriter, r *http.Request) {
	var req greetRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	der, err := hex.DecodeString(req.IdDER)
	if err != nil {
		http.Error(w, "malformed id", http.StatusBadRequest)
		return
	}
	id, err := identity.UnmarshalPublicId(der)
	if err != nil {
		http.Error(w, "malformed id", http.StatusBadRequest)
		return
	}

	accepted, selfId, redirect := b.inbound.Greet(id, Addr(req.Addr))

	resp := greetResponse{Accepted: accepted}
	if accepted {
		resp.SelfDER = hex.EncodeToString(selfId.Marshal())
	} else if redirect != nil {
		resp.Redirect = redirect.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) handlePing(w http.ResponseWriter, r *http.Request) {
	if err := b.inbound.Ping(); err != nil {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	target, err := tag.Parse(req.Target)
	if err != nil {
		http.Error(w, "malformed tag", http.StatusBadRequest)
		return
	}

	id, addr, found := b.inbound.Discover(target, req.MaxLevel)
	resp := discoverResponse{Found: found}
	if found {
		resp.IdDER = hex.EncodeToString(id.Marshal())
		resp.Addr = addr.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	t, err := tag.Parse(req.Tag)
	if err != nil {
		http.Error(w, "malformed tag", http.StatusBadRequest)
		return
	}

	present, id, addr, redirect := b.inbound.Locate(t)
	resp := locateResponse{Present: present, Redirect: redirect}
	if redirect {
		resp.IdDER = hex.EncodeToString(id.Marshal())
		resp.Addr = addr.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) handlePeerUpload(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	if err := b.inbound.Upload(data); err != nil {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Tag: tag.Digest(data).String()})
}

func (b *Backend) handlePeerDownload(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	t, err := tag.Parse(req.Tag)
	if err != nil {
		http.Error(w, "malformed tag", http.StatusBadRequest)
		return
	}
	data, ok := b.inbound.Download(t)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleDataUpload accepts a raw body and returns 201 with the hex tag.
// Served as POST rather than GET: a raw body on a GET request is
// non-idiomatic and commonly stripped by intermediaries.
func (b *Backend) handleDataUpload(w http.ResponseWriter, r *http.Request) {
	node, ok := b.inbound.(doUploader)
	if !ok {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	t, err := node.DoUpload(r.Context(), data)
	if err != nil {
		glog.V(glog.Level(1)).Infof("data upload failed: %v", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Tag: t.String()})
}

// handleDataDownload serves GET /data/<hex_tag>.
func (b *Backend) handleDataDownload(w http.ResponseWriter, r *http.Request) {
	hexTag := r.URL.Path[len("/data/"):]
	t, err := tag.Parse(hexTag)
	if err != nil {
		http.Error(w, "malformed tag", http.StatusBadRequest)
		return
	}

	node, ok := b.inbound.(doDownloader)
	if !ok {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	data, err := node.DoDownload(r.Context(), t)
	if err != nil {
		glog.V(glog.Level(1)).Infof("data download failed: %v", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	if data == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// doUploader and doDownloader narrow the concrete *node.Node down to the
// two iterative-engine entry points the /data/* routes need, without
// importing the node package directly (which already imports transport,
// so the reverse import would cycle).
type doUploader interface {
	DoUpload(ctx context.Context, data []byte) (tag.Tag, error)
}
type doDownloader interface {
	DoDownload(ctx context.Context, t tag.Tag) ([]byte, error)
}
