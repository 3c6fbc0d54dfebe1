// Package parser implements the incremental MIDI stream parsers: a
// byte-oriented parser for Serial/UART transports and a packet-oriented
// parser for USB-MIDI transports. Both reconstruct complete channel,
// System Exclusive and real-time messages from arbitrarily fragmented
// input, one unit at a time, without blocking and without losing
// synchronization after malformed input.
//
// Parsers are not safe for concurrent use; drive each instance from a
// single goroutine.
package parser

import "github.com/pcaldeira/midiwire/sdk/contracts"

// state holds everything the byte and packet parsers share: the bounded
// SysEx accumulation buffer and the storage for the last completed message
// of each kind.
type state struct {
	sysexBuf    []byte
	sysexLen    int
	insideSysEx bool
	sysexCable  uint8

	channelMessage  contracts.ChannelMessage
	sysexMessage    contracts.SysExMessage
	realTimeMessage contracts.RealTimeMessage

	diag contracts.Diagnostics
}

func newState(sysexBufferSize int) state {
	if sysexBufferSize <= 0 {
		sysexBufferSize = contracts.DefaultSysExBufferSize
	}
	return state{sysexBuf: make([]byte, sysexBufferSize)}
}

// ChannelMessage returns the last completed channel message. Only valid
// after a feed step returned ChannelMessageEvent.
func (s *state) ChannelMessage() contracts.ChannelMessage { return s.channelMessage }

// SysExMessage returns the last completed System Exclusive message. The
// Data slice aliases the parser's buffer and is overwritten by subsequent
// feed calls; copy it before feeding more input. Only valid after a feed
// step returned SysExMessageEvent.
func (s *state) SysExMessage() contracts.SysExMessage { return s.sysexMessage }

// RealTimeMessage returns the last completed real-time message. Only valid
// after a feed step returned RealTimeMessageEvent.
func (s *state) RealTimeMessage() contracts.RealTimeMessage { return s.realTimeMessage }

// Diagnostics returns the counters of absorbed input errors.
func (s *state) Diagnostics() contracts.Diagnostics { return s.diag }

func (s *state) reset() {
	s.sysexLen = 0
	s.insideSysEx = false
	s.sysexCable = 0
	s.channelMessage = contracts.ChannelMessage{}
	s.sysexMessage = contracts.SysExMessage{}
	s.realTimeMessage = contracts.RealTimeMessage{}
	s.diag = contracts.Diagnostics{}
}

// startSysEx begins a new capture. An unterminated capture already in
// progress is discarded.
func (s *state) startSysEx(cable uint8) {
	if s.insideSysEx {
		s.diag.TruncatedSysEx++
	}
	s.sysexLen = 0
	s.insideSysEx = true
	s.sysexCable = cable
}

// addSysExByte appends one payload byte, dropping it when the buffer is
// full. The capture itself stays active so the terminator still produces a
// truncated message.
func (s *state) addSysExByte(b byte) {
	if s.sysexLen < len(s.sysexBuf) {
		s.sysexBuf[s.sysexLen] = b
		s.sysexLen++
		return
	}
	s.diag.DroppedSysEx++
}

// finishSysEx completes the capture and exposes the accumulated payload as
// a borrowed view into the buffer.
func (s *state) finishSysEx() contracts.ReadEvent {
	s.insideSysEx = false
	s.sysexMessage = contracts.SysExMessage{
		Data:  s.sysexBuf[:s.sysexLen],
		Cable: s.sysexCable,
	}
	return contracts.SysExMessageEvent
}

// abortSysEx discards an in-progress capture. Used when a non-real-time
// status byte interrupts a capture before its terminator; the truncated
// payload is dropped, not reported.
func (s *state) abortSysEx() {
	s.insideSysEx = false
	s.sysexLen = 0
	s.diag.TruncatedSysEx++
}
