// Misbehavior events are logged and kept in a small bounded ring for
// diagnostics, so a hostile or buggy peer cannot grow unbounded memory by
// triggering misbehavior repeatedly.
package node

import (
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tagnet/tagnet/logger/glog"
	"github.com/tagnet/tagnet/tag"
)

const misbehaviorRingSize = 256

// misbehaviorEvent records one protocol-precondition violation.
type misbehaviorEvent struct {
	Peer   tag.Tag
	Kind   string
	Detail string
	At     time.Time
}

type misbehaviorLog struct {
	cache *lru.Cache
	seq   uint64
}

func newMisbehaviorLog() *misbehaviorLog {
	c, err := lru.New(misbehaviorRingSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// misbehaviorRingSize never is.
		panic(err)
	}
	return &misbehaviorLog{cache: c}
}

func (l *misbehaviorLog) record(peer tag.Tag, kind, detail string) {
	l.seq++
	l.cache.Add(l.seq, misbehaviorEvent{Peer: peer, Kind: kind, Detail: detail, At: time.Now()})

	mlog.Sendf(2, mlogMisbehavior.SetDetailValues(peer.String(), kind, detail).String())
	glog.V(glog.Level(2)).Infof("misbehavior from %s: %s (%s)", identityShort(peer), kind, detail)
}

// identityShort renders the first 8 hex characters of a tag for log lines.
func identityShort(t tag.Tag) string {
	s := t.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
