// Copyright 2015 The go-ethereum Authors
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

package logger

import (
	"github.com/tagnet/tagnet/logger/glog"
)

// Logger routes a named component's mlog lines through glog rather than a
// separate per-session file. Every mlog component gets its own Logger
// (`mlog = logger.NewLogger("discover")`).
type Logger struct {
	name string
}

// NewLogger returns a Logger for the named mlog component.
func NewLogger(name string) *Logger {
	return &Logger{name: name}
}

// MLogVerbosity is the glog -v level mlog lines are gated behind.
const MLogVerbosity = glog.Level(1)

// Infoln writes args through glog at MLogVerbosity, prefixed with the
// component name.
func (l *Logger) Infoln(args ...interface{}) {
	if v := glog.V(MLogVerbosity); v {
		v.Infoln(append([]interface{}{"[" + l.name + "] "}, args...)...)
	}
}

// Sendf writes a formatted mlog line through glog at MLogVerbosity. depth
// is accepted for signature parity (originally a caller-skip depth for
// file/line attribution); glog already computes its own call depth so it
// is otherwise unused here.
func (l *Logger) Sendf(depth int, format string, args ...interface{}) {
	_ = depth
	if v := glog.V(MLogVerbosity); v {
		v.Infof("[%s] "+format, append([]interface{}{l.name}, args...)...)
	}
}

const (
	reset   = "\x1b[39m"
	green   = "\x1b[32m"
	blue    = "\x1b[36m"
	yellow  = "\x1b[33m"
	red     = "\x1b[31m"
	magenta = "\x1b[35m"
)

func ColorGreen(s string) (coloredString string) {
	return green + s + reset
}
func ColorRed(s string) (coloredString string) {
	return red + s + reset
}
func ColorBlue(s string) (coloredString string) {
	return blue + s + reset
}
func ColorYellow(s string) (coloredString string) {
	return yellow + s + reset
}
func ColorMagenta(s string) (coloredString string) {
	return magenta + s + reset
}
