package contracts

import "bytes"

// MessageType identifies a MIDI message by its status byte. For channel
// messages the low nibble (the channel) is zero.
type MessageType byte

const (
	// Channel messages, three bytes on the wire unless noted.
	NoteOff         MessageType = 0x80
	NoteOn          MessageType = 0x90
	KeyPressure     MessageType = 0xA0
	ControlChange   MessageType = 0xB0
	ProgramChange   MessageType = 0xC0 // 2 bytes
	ChannelPressure MessageType = 0xD0 // 2 bytes
	PitchBend       MessageType = 0xE0

	// System Exclusive framing.
	SysExStart MessageType = 0xF0
	SysExEnd   MessageType = 0xF7

	// System Common messages.
	MTCQuarterFrame  MessageType = 0xF1
	SongPositionPtr  MessageType = 0xF2
	SongSelect       MessageType = 0xF3
	UndefinedCommon1 MessageType = 0xF4
	UndefinedCommon2 MessageType = 0xF5
	TuneRequest      MessageType = 0xF6

	// System Real-Time messages.
	TimingClock        MessageType = 0xF8
	UndefinedRealTime1 MessageType = 0xF9
	Start              MessageType = 0xFA
	Continue           MessageType = 0xFB
	Stop               MessageType = 0xFC
	UndefinedRealTime2 MessageType = 0xFD
	ActiveSensing      MessageType = 0xFE
	SystemReset        MessageType = 0xFF
)

// CodeIndexNumber is the USB-MIDI packet framing code, the low nibble of the
// first byte of every 4-byte USB-MIDI event packet.
// See table 4-1 in https://usb.org/sites/default/files/midi10.pdf.
type CodeIndexNumber byte

const (
	CINMiscFunction   CodeIndexNumber = 0x0
	CINCableEvents    CodeIndexNumber = 0x1
	CINSystemCommon2B CodeIndexNumber = 0x2
	CINSystemCommon3B CodeIndexNumber = 0x3
	CINSysExStartCont CodeIndexNumber = 0x4
	CINSysExEnd1B     CodeIndexNumber = 0x5 // also single-byte System Common
	CINSysExEnd2B     CodeIndexNumber = 0x6
	CINSysExEnd3B     CodeIndexNumber = 0x7
	CINNoteOff        CodeIndexNumber = 0x8
	CINNoteOn         CodeIndexNumber = 0x9
	CINKeyPressure    CodeIndexNumber = 0xA
	CINControlChange  CodeIndexNumber = 0xB
	CINProgramChange  CodeIndexNumber = 0xC
	CINChannelPress   CodeIndexNumber = 0xD
	CINPitchBend      CodeIndexNumber = 0xE
	CINSingleByte     CodeIndexNumber = 0xF
)

// ChannelMessage is a complete MIDI channel voice message. The struct is
// comparable, so == gives structural equality over all four fields.
type ChannelMessage struct {
	Header byte  // Status byte: message type in the high nibble, channel in the low nibble.
	Data1  byte  // First data byte.
	Data2  byte  // Second data byte (zero for two-byte messages).
	Cable  uint8 // USB virtual cable the message arrived on.
}

// Channel returns the MIDI channel (0-15) of the message.
func (m ChannelMessage) Channel() uint8 { return m.Header & 0x0F }

// SetChannel replaces the channel nibble, leaving the message type intact.
func (m *ChannelMessage) SetChannel(ch uint8) { m.Header = m.Header&0xF0 | ch&0x0F }

// Type returns the message type with the channel nibble cleared.
func (m ChannelMessage) Type() MessageType { return MessageType(m.Header & 0xF0) }

// SetType replaces the type nibble, leaving the channel intact.
func (m *ChannelMessage) SetType(t MessageType) { m.Header = m.Header&0x0F | byte(t)&0xF0 }

// TwoDataBytes reports whether the message carries two data bytes.
// Program Change and Channel Pressure carry one; all others carry two.
func (m ChannelMessage) TwoDataBytes() bool {
	t := m.Type()
	return t <= ControlChange || t == PitchBend
}

// ValidHeader reports whether the header's high nibble is a channel message
// status (0x8-0xE).
func (m ChannelMessage) ValidHeader() bool {
	t := m.Type()
	return t >= NoteOff && t <= PitchBend
}

// SysExMessage is a System Exclusive payload, excluding the 0xF0/0xF7 framing
// bytes. Data produced by a parser is a view into the parser's own buffer and
// is only valid until the next parse call; callers that hold on to the
// message must Copy it first.
type SysExMessage struct {
	Data  []byte
	Cable uint8
}

// Equals compares length, cable and byte contents.
func (m SysExMessage) Equals(other SysExMessage) bool {
	return m.Cable == other.Cable && bytes.Equal(m.Data, other.Data)
}

// Copy returns a SysExMessage backed by its own storage.
func (m SysExMessage) Copy() SysExMessage {
	data := make([]byte, len(m.Data))
	copy(data, m.Data)
	return SysExMessage{Data: data, Cable: m.Cable}
}

// RealTimeMessage is a single-byte System message (0xF1-0xFF, excluding the
// SysEx framing bytes). Besides the Real-Time range proper (0xF8-0xFF) it
// also carries single-byte System Common messages such as Tune Request.
type RealTimeMessage struct {
	Message byte
	Cable   uint8
}
