// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Registry for mlog components and lines. Every registered component logs
// through its *Logger, which in turn writes through glog.

package logger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	errMLogComponentUnavailable = errors.New("provided component name is unavailable")

	// MLogRegistryAvailable contains all available mlog components submitted
	// by any package with MLogRegisterAvailable.
	MLogRegistryAvailable = make(map[mlogComponent][]MLogT)
	// MLogRegistryActive contains all registered mlog components and their
	// respective loggers.
	MLogRegistryActive = make(map[mlogComponent]*Logger)
	mlogRegLock        sync.RWMutex
)

// mlogComponent is used as a golang receiver type that can call Send(logLine).
type mlogComponent string

// MLogRegisterAvailable is called for each log component variable from a
// package/mlog.go file as they set up their mlog vars. It registers an mlog
// component as Available.
func MLogRegisterAvailable(name string, lines []MLogT) mlogComponent {
	c := mlogComponent(name)
	mlogRegLock.Lock()
	MLogRegistryAvailable[c] = lines
	mlogRegLock.Unlock()
	return c
}

// MLogRegisterComponentsFromContext receives a comma-separated string of
// desired mlog components. It returns an error if the specified mlog
// component is unavailable. For each available component, the desired mlog
// components are registered as active, creating new loggers for each.
func MLogRegisterComponentsFromContext(s string) error {
	ss := strings.Split(s, ",")
	for _, c := range ss {
		ct := strings.TrimSpace(c)
		if MLogRegistryAvailable[mlogComponent(ct)] != nil {
			MLogRegisterActive(mlogComponent(ct))
			continue
		}
		return fmt.Errorf("%v: '%s'", errMLogComponentUnavailable, ct)
	}
	return nil
}

// MLogRegisterActive registers a component for mlogging. Only registered
// components will write mlog lines.
func MLogRegisterActive(component mlogComponent) {
	mlogRegLock.Lock()
	MLogRegistryActive[component] = NewLogger(string(component))
	mlogRegLock.Unlock()
}

// Send writes an mlog line through the component's Logger if the component
// is registered active.
func (c mlogComponent) Send(logLine string) {
	mlogRegLock.RLock()
	if l := MLogRegistryActive[c]; l != nil {
		l.Sendf(1, logLine)
	}
	mlogRegLock.RUnlock()
}

// MLogT defines an mlog LINE.
type MLogT struct {
	Description string
	Receiver    string
	Verb        string
	Subject     string
	Details     []MLogDetailT
}

// MLogDetailT defines an mlog LINE DETAIL.
type MLogDetailT struct {
	Owner string
	Key   string
	Value interface{}
}

// SetDetailValues is a setter function for setting values for pre-existing
// details. It accepts a variadic number of empty interfaces. If the number
// of arguments does not match the number of established details for the
// receiving MLogT, it panics. Arguments MUST be provided in the order in
// which they should be applied to the slice of existing details.
func (m MLogT) SetDetailValues(detailVals ...interface{}) MLogT {
	if len(detailVals) != len(m.Details) {
		panic(fmt.Sprintf("mlog: wrong number of details set, want: %d got: %d", len(m.Details), len(detailVals)))
	}
	for i, detailval := range detailVals {
		m.Details[i].Value = detailval
	}
	return m
}

// String implements the 'stringer' interface for an MLogT struct.
// eg. $RECEIVER $VERB $SUBJECT $RECEIVER:DETAIL $SUBJECT:DETAIL
func (m MLogT) String(documentation ...bool) string {
	placeholderEmpty := "-"
	if m.Receiver == "" {
		m.Receiver = placeholderEmpty
	}
	if m.Subject == "" {
		m.Subject = placeholderEmpty
	}
	if m.Verb == "" {
		m.Verb = placeholderEmpty
	}
	out := fmt.Sprintf("%s %s %s", m.Receiver, m.Verb, m.Subject)
	for _, d := range m.Details {
		out += " " + d.String(documentation...)
	}
	if len(documentation) > 0 && documentation[0] {
		out += fmt.Sprintf("\n    %s", m.Description)
	}
	return out
}

// String implements the stringer interface for mlog details. It can be
// used to provide raw mlog-formatted strings, or strings formatted for
// self-documentation.
func (d MLogDetailT) String(documentation ...bool) string {
	if len(documentation) > 0 && documentation[0] {
		return fmt.Sprintf("$%s:%s:%s", d.Owner, d.Key, d.Value)
	}
	return fmt.Sprintf("[%v]", d.Value)
}
