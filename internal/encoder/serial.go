// Package encoder serializes outgoing MIDI messages, either as a plain
// byte stream for Serial/UART transports or as 4-byte USB-MIDI event
// packets.
package encoder

import (
	"errors"
	"io"

	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// ErrInvalidHeader is returned when a channel message has a status byte
// outside the 0x80-0xEF range.
var ErrInvalidHeader = errors.New("invalid channel message header")

// ErrInvalidRealTime is returned when a real-time message byte is not a
// System message status.
var ErrInvalidRealTime = errors.New("invalid real-time message byte")

// SerialWriter serializes messages onto a byte stream. It implements
// contracts.Sender. Writes are not synchronized; wrap the underlying
// writer if concurrent senders share it.
type SerialWriter struct {
	w io.Writer
}

// NewSerialWriter returns a Sender writing to w.
func NewSerialWriter(w io.Writer) *SerialWriter {
	return &SerialWriter{w: w}
}

// SendChannelMessage writes the status byte and one or two data bytes.
// The cable number has no representation on a serial stream and is
// ignored.
func (s *SerialWriter) SendChannelMessage(msg contracts.ChannelMessage) error {
	if !msg.ValidHeader() {
		return ErrInvalidHeader
	}
	buf := [3]byte{msg.Header, msg.Data1 & 0x7F, msg.Data2 & 0x7F}
	n := 2
	if msg.TwoDataBytes() {
		n = 3
	}
	_, err := s.w.Write(buf[:n])
	return err
}

// SendSysEx writes the payload bracketed by the 0xF0/0xF7 framing bytes.
func (s *SerialWriter) SendSysEx(msg contracts.SysExMessage) error {
	frame := make([]byte, 0, len(msg.Data)+2)
	frame = append(frame, byte(contracts.SysExStart))
	for _, b := range msg.Data {
		frame = append(frame, b&0x7F)
	}
	frame = append(frame, byte(contracts.SysExEnd))
	_, err := s.w.Write(frame)
	return err
}

// SendRealTime writes the single status byte.
func (s *SerialWriter) SendRealTime(msg contracts.RealTimeMessage) error {
	if msg.Message < 0x80 {
		return ErrInvalidRealTime
	}
	_, err := s.w.Write([]byte{msg.Message})
	return err
}
