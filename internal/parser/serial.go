package parser

import "github.com/pcaldeira/midiwire/sdk/contracts"

// SerialParser reconstructs MIDI messages from a continuous byte stream.
// It implements running status for channel messages, treats real-time
// bytes as transparent in every state, and accumulates System Exclusive
// payloads into a bounded buffer.
type SerialParser struct {
	state

	// status is the running status byte, or a pending System Common
	// status. Zero when no status is active.
	status byte
	// sysCommon marks status as a multi-byte System Common message: its
	// data bytes are consumed to keep the stream in sync, but no message
	// is produced and the status is not reusable as running status.
	sysCommon bool

	data     [2]byte
	dataLen  int
	expected int
}

// NewSerial returns a byte-oriented parser with a SysEx buffer of the
// given capacity (DefaultSysExBufferSize when zero or negative).
func NewSerial(sysexBufferSize int) *SerialParser {
	return &SerialParser{state: newState(sysexBufferSize)}
}

// Reset restores the initial state: no running status, no pending data
// bytes, SysEx buffer empty, diagnostics cleared.
func (p *SerialParser) Reset() {
	p.state.reset()
	p.status = 0
	p.sysCommon = false
	p.dataLen = 0
	p.expected = 0
}

// Feed consumes exactly one stream byte and advances the state machine.
// It never fails: malformed input is absorbed, counted in Diagnostics,
// and the parser resynchronizes on the next valid status byte.
func (p *SerialParser) Feed(b byte) contracts.ReadEvent {
	switch {
	case b >= byte(contracts.TimingClock):
		// Real-time bytes complete immediately and leave every other
		// piece of state untouched, including mid-SysEx captures and
		// pending channel-message data bytes.
		p.realTimeMessage = contracts.RealTimeMessage{Message: b}
		return contracts.RealTimeMessageEvent

	case b == byte(contracts.SysExStart):
		p.startSysEx(0)
		p.clearStatus()
		return contracts.NoMessage

	case b == byte(contracts.SysExEnd):
		p.clearStatus()
		if !p.insideSysEx {
			return contracts.NoMessage
		}
		return p.finishSysEx()

	case b >= 0x80:
		// New channel or System Common status. A capture in progress is
		// truncated and discarded; only 0xF7 ends a SysEx normally.
		if p.insideSysEx {
			p.abortSysEx()
		}
		return p.newStatus(b)

	default:
		return p.dataByte(b)
	}
}

// newStatus installs a status byte in the 0x80-0xF6 range, F0 excluded.
func (p *SerialParser) newStatus(b byte) contracts.ReadEvent {
	if b < byte(contracts.SysExStart) {
		p.status = b
		p.sysCommon = false
		p.dataLen = 0
		if contracts.MessageType(b&0xF0) == contracts.ProgramChange ||
			contracts.MessageType(b&0xF0) == contracts.ChannelPressure {
			p.expected = 1
		} else {
			p.expected = 2
		}
		return contracts.NoMessage
	}

	switch contracts.MessageType(b) {
	case contracts.MTCQuarterFrame, contracts.SongSelect:
		p.setSysCommon(b, 1)
	case contracts.SongPositionPtr:
		p.setSysCommon(b, 2)
	default:
		// 0xF4-0xF6: single-byte System Common, reported like a
		// real-time byte. System messages clear running status.
		p.clearStatus()
		p.realTimeMessage = contracts.RealTimeMessage{Message: b}
		return contracts.RealTimeMessageEvent
	}
	return contracts.NoMessage
}

func (p *SerialParser) setSysCommon(b byte, expected int) {
	p.status = b
	p.sysCommon = true
	p.dataLen = 0
	p.expected = expected
}

func (p *SerialParser) dataByte(b byte) contracts.ReadEvent {
	if p.insideSysEx {
		p.addSysExByte(b)
		return contracts.NoMessage
	}

	if p.status == 0 {
		// Stray data byte with no running status: discard and stay in
		// sync. Not fatal, just counted.
		p.diag.StrayDataBytes++
		return contracts.NoMessage
	}

	p.data[p.dataLen] = b
	p.dataLen++
	if p.dataLen < p.expected {
		return contracts.NoMessage
	}
	p.dataLen = 0

	if p.sysCommon {
		// The data bytes of F1/F2/F3 are consumed only to keep the
		// stream synchronized; the message itself is dropped and does
		// not establish running status.
		p.clearStatus()
		return contracts.NoMessage
	}

	var data2 byte
	if p.expected == 2 {
		data2 = p.data[1]
	}
	// Running status stays armed: the next data byte starts another
	// message with the same header.
	p.channelMessage = contracts.ChannelMessage{
		Header: p.status,
		Data1:  p.data[0],
		Data2:  data2,
	}
	return contracts.ChannelMessageEvent
}

func (p *SerialParser) clearStatus() {
	p.status = 0
	p.sysCommon = false
	p.dataLen = 0
	p.expected = 0
}
