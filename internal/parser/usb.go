package parser

import "github.com/pcaldeira/midiwire/sdk/contracts"

// USBParser reconstructs MIDI messages from 4-byte USB-MIDI event packets.
// Each packet is self-describing through its Code Index Number, so no
// running status is needed; only System Exclusive messages span packets
// and require reassembly.
type USBParser struct {
	state
}

// NewUSB returns a packet-oriented parser with a SysEx buffer of the
// given capacity (DefaultSysExBufferSize when zero or negative).
func NewUSB(sysexBufferSize int) *USBParser {
	return &USBParser{state: newState(sysexBufferSize)}
}

// Reset restores the initial state.
func (p *USBParser) Reset() {
	p.state.reset()
}

// FeedPacket consumes one USB-MIDI event packet: cable number in the high
// nibble of packet[0], Code Index Number in the low nibble, payload in
// packet[1:4]. Reserved and inconsistent packets are dropped and counted.
func (p *USBParser) FeedPacket(packet [4]byte) contracts.ReadEvent {
	cable := packet[0] >> 4
	cin := contracts.CodeIndexNumber(packet[0] & 0x0F)

	switch cin {
	case contracts.CINNoteOff, contracts.CINNoteOn, contracts.CINKeyPressure,
		contracts.CINControlChange, contracts.CINProgramChange,
		contracts.CINChannelPress, contracts.CINPitchBend:
		return p.channelPacket(cable, packet)

	case contracts.CINSingleByte:
		return p.singleByte(cable, packet[1])

	case contracts.CINSysExStartCont:
		return p.sysexBytes(cable, packet[1:4])

	case contracts.CINSysExEnd1B:
		// CIN 0x5 doubles as "single-byte System Common message".
		if packet[1] != byte(contracts.SysExEnd) {
			return p.singleByte(cable, packet[1])
		}
		return p.sysexBytes(cable, packet[1:2])

	case contracts.CINSysExEnd2B:
		return p.sysexBytes(cable, packet[1:3])

	case contracts.CINSysExEnd3B:
		return p.sysexBytes(cable, packet[1:4])

	case contracts.CINSystemCommon2B, contracts.CINSystemCommon3B:
		// Multi-byte System Common messages are complete in one packet
		// and dropped, matching the byte parser's policy for F1-F3.
		return contracts.NoMessage

	default:
		// 0x0 and 0x1 are reserved for miscellaneous and cable events.
		p.diag.IgnoredPackets++
		return contracts.NoMessage
	}
}

// channelPacket decodes a complete channel message carried in one packet.
func (p *USBParser) channelPacket(cable uint8, packet [4]byte) contracts.ReadEvent {
	msg := contracts.ChannelMessage{
		Header: packet[1],
		Data1:  packet[2],
		Data2:  packet[3],
		Cable:  cable,
	}
	if !msg.ValidHeader() {
		p.diag.IgnoredPackets++
		return contracts.NoMessage
	}
	if !msg.TwoDataBytes() {
		// Two-byte messages leave packet[3] undefined on some hosts.
		msg.Data2 = 0
	}
	p.channelMessage = msg
	return contracts.ChannelMessageEvent
}

// singleByte handles CIN 0xF packets and single-byte System Common
// messages smuggled through CIN 0x5.
func (p *USBParser) singleByte(cable uint8, b byte) contracts.ReadEvent {
	if b < 0x80 {
		p.diag.IgnoredPackets++
		return contracts.NoMessage
	}
	p.realTimeMessage = contracts.RealTimeMessage{Message: b, Cable: cable}
	return contracts.RealTimeMessageEvent
}

// sysexBytes runs the payload bytes of a SysEx packet through the capture.
// Driving it byte-wise handles every framing the CINs allow: a start in
// the middle of an end packet (F0 F7, F0 d F7) as well as plain
// continuations.
func (p *USBParser) sysexBytes(cable uint8, payload []byte) contracts.ReadEvent {
	for _, b := range payload {
		switch {
		case b == byte(contracts.SysExStart):
			p.startSysEx(cable)

		case b == byte(contracts.SysExEnd):
			if !p.insideSysEx {
				p.diag.IgnoredPackets++
				return contracts.NoMessage
			}
			return p.finishSysEx()

		case b >= 0x80:
			// Status bytes other than the framing pair cannot appear
			// inside a SysEx packet; the capture is unsalvageable.
			if p.insideSysEx {
				p.abortSysEx()
			} else {
				p.diag.IgnoredPackets++
			}
			return contracts.NoMessage

		default:
			if !p.insideSysEx {
				// Continuation without a start; drop the packet.
				p.diag.IgnoredPackets++
				return contracts.NoMessage
			}
			p.addSysExByte(b)
		}
	}
	return contracts.NoMessage
}
