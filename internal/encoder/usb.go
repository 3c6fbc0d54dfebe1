package encoder

import (
	"io"

	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// ChannelPacket frames a channel message as one USB-MIDI event packet.
// The Code Index Number equals the type nibble of the status byte.
func ChannelPacket(msg contracts.ChannelMessage) [4]byte {
	return [4]byte{
		msg.Cable<<4 | msg.Header>>4,
		msg.Header,
		msg.Data1,
		msg.Data2,
	}
}

// RealTimePacket frames a single-byte message as a CIN 0xF packet.
func RealTimePacket(msg contracts.RealTimeMessage) [4]byte {
	return [4]byte{
		msg.Cable<<4 | byte(contracts.CINSingleByte),
		msg.Message,
		0,
		0,
	}
}

// SysExPackets chunks a SysEx payload into USB-MIDI event packets: full
// 3-byte groups go out as CIN 0x4 (start/continue) and the remainder,
// terminator included, as CIN 0x7, 0x6 or 0x5 depending on how many bytes
// are left.
func SysExPackets(msg contracts.SysExMessage) [][4]byte {
	frame := make([]byte, 0, len(msg.Data)+2)
	frame = append(frame, byte(contracts.SysExStart))
	frame = append(frame, msg.Data...)
	frame = append(frame, byte(contracts.SysExEnd))

	cn := msg.Cable << 4
	packets := make([][4]byte, 0, (len(frame)+2)/3)
	for len(frame) > 3 {
		packets = append(packets, [4]byte{cn | byte(contracts.CINSysExStartCont), frame[0], frame[1], frame[2]})
		frame = frame[3:]
	}
	switch len(frame) {
	case 3:
		packets = append(packets, [4]byte{cn | byte(contracts.CINSysExEnd3B), frame[0], frame[1], frame[2]})
	case 2:
		packets = append(packets, [4]byte{cn | byte(contracts.CINSysExEnd2B), frame[0], frame[1], 0})
	case 1:
		packets = append(packets, [4]byte{cn | byte(contracts.CINSysExEnd1B), frame[0], 0, 0})
	}
	return packets
}

// USBWriter serializes messages as USB-MIDI event packets onto a stream.
// It implements contracts.Sender.
type USBWriter struct {
	w io.Writer
}

// NewUSBWriter returns a Sender writing 4-byte packets to w.
func NewUSBWriter(w io.Writer) *USBWriter {
	return &USBWriter{w: w}
}

func (u *USBWriter) writePacket(pkt [4]byte) error {
	_, err := u.w.Write(pkt[:])
	return err
}

// SendChannelMessage writes one event packet.
func (u *USBWriter) SendChannelMessage(msg contracts.ChannelMessage) error {
	if !msg.ValidHeader() {
		return ErrInvalidHeader
	}
	return u.writePacket(ChannelPacket(msg))
}

// SendSysEx writes the chunked packet sequence.
func (u *USBWriter) SendSysEx(msg contracts.SysExMessage) error {
	for _, pkt := range SysExPackets(msg) {
		if err := u.writePacket(pkt); err != nil {
			return err
		}
	}
	return nil
}

// SendRealTime writes one CIN 0xF packet.
func (u *USBWriter) SendRealTime(msg contracts.RealTimeMessage) error {
	if msg.Message < 0x80 {
		return ErrInvalidRealTime
	}
	return u.writePacket(RealTimePacket(msg))
}
