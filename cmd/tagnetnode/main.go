// tagnetnode runs a single participant in the content-addressed DHT: a
// flag-driven standalone daemon that starts a listener and blocks until
// interrupted.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/tagnet/tagnet/common"
	"github.com/tagnet/tagnet/identity"
	"github.com/tagnet/tagnet/internal/debug"
	"github.com/tagnet/tagnet/internal/natutil"
	"github.com/tagnet/tagnet/node"
	"github.com/tagnet/tagnet/transport"
	"github.com/tagnet/tagnet/transport/httpjson"
)

// Version is the application revision identifier, set with the linker:
// -ldflags "-X main.Version=<rev>".
var Version = "unknown"

var (
	initialPeersFlag = cli.StringSliceFlag{
		Name:  "initial-peers",
		Usage: "address of an existing node to bootstrap from (repeatable)",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "bind host",
		Value: "[::1]",
	}
	urlFlag = cli.StringFlag{
		Name:  "url",
		Usage: "announced public URL (default: derived from public-IP lookup)",
	}
	portFlag = cli.IntFlag{
		Name:  "port",
		Usage: "bind and announce port",
		Value: 34093,
	}
	seedFlag = cli.StringFlag{
		Name:  "identity-seed",
		Usage: "hex seed for deterministic identity derivation (default: random)",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "tagnetnode"
	app.Usage = "run a tagnet DHT node"
	app.Version = Version
	app.Flags = append([]cli.Flag{initialPeersFlag, addressFlag, urlFlag, portFlag, seedFlag}, debug.Flags...)
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("fatal: %v", err))
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if err := debug.Setup(ctx); err != nil {
		return err
	}
	common.SetClientVersion(Version)

	self, err := resolveIdentity(ctx.String("identity-seed"))
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}

	bindAddr := net.JoinHostPort(ctx.String("address"), strconv.Itoa(ctx.Int("port")))

	announceURL := ctx.String("url")
	if announceURL == "" {
		announceURL, err = deriveAnnounceURL(ctx.String("address"), ctx.Int("port"))
		if err != nil {
			return fmt.Errorf("public address discovery: %w", err)
		}
	}

	var initialPeers []transport.Addr
	for _, p := range ctx.StringSlice("initial-peers") {
		initialPeers = append(initialPeers, httpjson.Addr(p))
	}

	backend := httpjson.New(bindAddr)
	n := node.New(node.Config{
		Self:         self,
		Addr:         httpjson.Addr(announceURL),
		Backend:      backend,
		InitialPeers: initialPeers,
	})

	fmt.Println(color.GreenString("tagnetnode %s", Version))
	fmt.Printf("  id:    %s (%s)\n", n.Self().Tag, n.Self().Nickname(4))
	fmt.Printf("  bind:  %s\n", bindAddr)
	fmt.Printf("  url:   %s\n", announceURL)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()

	if err := n.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func resolveIdentity(seedHex string) (identity.PrivateId, error) {
	if seedHex == "" {
		return identity.Generate()
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return identity.PrivateId{}, fmt.Errorf("malformed identity seed: %w", err)
	}
	return identity.FromSeed(seed)
}

func deriveAnnounceURL(bindHost string, port int) (string, error) {
	ip, err := natutil.DiscoverPublicIP()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(ip.String(), strconv.Itoa(port))), nil
}
