package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tagnet/tagnet/tag"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	tg, stored := s.Put([]byte("hello"))
	assert.True(t, stored)
	assert.Equal(t, tag.Digest([]byte("hello")), tg)

	got, ok := s.Get(tg)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), got)
}

func TestPutIsWriteOnce(t *testing.T) {
	s := New()
	tg1, stored1 := s.Put([]byte("payload"))
	assert.True(t, stored1)

	tg2, stored2 := s.Put([]byte("payload"))
	assert.False(t, stored2)
	assert.Equal(t, tg1, tg2)

	got, ok := s.Get(tg1)
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), got)
}

func TestGetMiss(t *testing.T) {
	s := New()
	_, ok := s.Get(tag.Digest([]byte("never stored")))
	assert.False(t, ok)
}

func TestHasAndLen(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	tg, _ := s.Put([]byte("x"))
	assert.True(t, s.Has(tg))
	assert.Equal(t, 1, s.Len())

	s.Put([]byte("y"))
	assert.Equal(t, 2, s.Len())
}

func TestMutationAfterPutDoesNotAffectStore(t *testing.T) {
	s := New()
	buf := []byte("mutable")
	tg, _ := s.Put(buf)
	buf[0] = 'X'

	got, _ := s.Get(tg)
	assert.Equal(t, byte('m'), got[0])
}
