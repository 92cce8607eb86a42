// This file is home to the node package's mlog lines: named MLogT
// variables, documented once, filled in per-call with SetDetailValues.
package node

import (
	"sync"

	"github.com/tagnet/tagnet/logger"
)

var mlog *logger.Logger
var mlogOnce sync.Once

// initMLogging registers the node package's mlog logger. Called once from
// New via mlogOnce.
func initMLogging() {
	mlog = logger.NewLogger("node")
}

var mlogSessionStart = logger.MLogT{
	Description: "Called once when a node's Run loop starts.",
	Receiver:    "NODE",
	Verb:        "START",
	Subject:     "SESSION",
	Details: []logger.MLogDetailT{
		{Owner: "NODE", Key: "TAG", Value: "STRING"},
		{Owner: "SESSION", Key: "IDENTITY", Value: "OBJECT"},
	},
}

var mlogPeerAdded = logger.MLogT{
	Description: "Called once when a peer is accepted into the routing table.",
	Receiver:    "NODE",
	Verb:        "ADD",
	Subject:     "PEER",
	Details: []logger.MLogDetailT{
		{Owner: "NODE", Key: "PEER_COUNT", Value: "INT"},
		{Owner: "PEER", Key: "TAG", Value: "STRING"},
		{Owner: "PEER", Key: "ADDR", Value: "STRING"},
	},
}

var mlogPeerRemoved = logger.MLogT{
	Description: "Called once when a peer is evicted from the routing table.",
	Receiver:    "NODE",
	Verb:        "REMOVE",
	Subject:     "PEER",
	Details: []logger.MLogDetailT{
		{Owner: "NODE", Key: "PEER_COUNT", Value: "INT"},
		{Owner: "PEER", Key: "TAG", Value: "STRING"},
		{Owner: "REMOVE", Key: "REASON", Value: "QUOTEDSTRING"},
	},
}

var mlogMisbehavior = logger.MLogT{
	Description: "Called once when a peer violates a protocol precondition.",
	Receiver:    "NODE",
	Verb:        "DETECT",
	Subject:     "MISBEHAVIOR",
	Details: []logger.MLogDetailT{
		{Owner: "PEER", Key: "TAG", Value: "STRING"},
		{Owner: "MISBEHAVIOR", Key: "KIND", Value: "STRING"},
		{Owner: "MISBEHAVIOR", Key: "DETAIL", Value: "QUOTEDSTRING"},
	},
}

var mlogUpload = logger.MLogT{
	Description: "Called once when the upload walk completes.",
	Receiver:    "NODE",
	Verb:        "COMPLETE",
	Subject:     "UPLOAD",
	Details: []logger.MLogDetailT{
		{Owner: "UPLOAD", Key: "TAG", Value: "STRING"},
		{Owner: "UPLOAD", Key: "HOPS", Value: "INT"},
		{Owner: "UPLOAD", Key: "LOCAL", Value: "BOOL"},
	},
}

var mlogDownload = logger.MLogT{
	Description: "Called once when the download walk completes.",
	Receiver:    "NODE",
	Verb:        "COMPLETE",
	Subject:     "DOWNLOAD",
	Details: []logger.MLogDetailT{
		{Owner: "DOWNLOAD", Key: "TAG", Value: "STRING"},
		{Owner: "DOWNLOAD", Key: "HOPS", Value: "INT"},
		{Owner: "DOWNLOAD", Key: "FOUND", Value: "BOOL"},
	},
}

var mlogUpstream502 = logger.MLogT{
	Description: "Declared for an HTTP data endpoint failing upstream (502); no code path sends it.",
	Receiver:    "NODE",
	Verb:        "FAIL",
	Subject:     "UPSTREAM",
	Details: []logger.MLogDetailT{
		{Owner: "UPSTREAM", Key: "PEER_ADDR", Value: "STRING"},
		{Owner: "UPSTREAM", Key: "REASON", Value: "QUOTEDSTRING"},
	},
}
