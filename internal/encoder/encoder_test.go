package encoder

import (
	"bytes"
	"testing"

	"github.com/pcaldeira/midiwire/internal/parser"
	"github.com/pcaldeira/midiwire/sdk/contracts"
)

func TestSerialWriterChannelMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  contracts.ChannelMessage
		want []byte
	}{
		{"note on", contracts.ChannelMessage{Header: 0x90, Data1: 60, Data2: 100}, []byte{0x90, 60, 100}},
		{"program change is two bytes", contracts.ChannelMessage{Header: 0xC1, Data1: 42}, []byte{0xC1, 42}},
		{"channel pressure is two bytes", contracts.ChannelMessage{Header: 0xD0, Data1: 7}, []byte{0xD0, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewSerialWriter(&buf).SendChannelMessage(tt.msg); err != nil {
				t.Fatalf("SendChannelMessage: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("wrote % X, want % X", buf.Bytes(), tt.want)
			}
		})
	}
}

func TestSerialWriterInvalidHeader(t *testing.T) {
	var buf bytes.Buffer
	err := NewSerialWriter(&buf).SendChannelMessage(contracts.ChannelMessage{Header: 0x42})
	if err != ErrInvalidHeader {
		t.Fatalf("err = %v, want ErrInvalidHeader", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote % X, want nothing", buf.Bytes())
	}
}

func TestSerialRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewSerialWriter(&buf)

	sent := []contracts.ChannelMessage{
		{Header: 0x90, Data1: 60, Data2: 100},
		{Header: 0xC0, Data1: 12},
		{Header: 0xE3, Data1: 0x00, Data2: 0x40},
	}
	for _, msg := range sent {
		if err := w.SendChannelMessage(msg); err != nil {
			t.Fatalf("SendChannelMessage: %v", err)
		}
	}
	if err := w.SendRealTime(contracts.RealTimeMessage{Message: 0xFA}); err != nil {
		t.Fatalf("SendRealTime: %v", err)
	}
	if err := w.SendSysEx(contracts.SysExMessage{Data: []byte{0x7E, 0x00, 0x09}}); err != nil {
		t.Fatalf("SendSysEx: %v", err)
	}

	p := parser.NewSerial(0)
	var gotChannel []contracts.ChannelMessage
	var gotRealTime []contracts.RealTimeMessage
	var gotSysEx [][]byte
	for _, b := range buf.Bytes() {
		switch p.Feed(b) {
		case contracts.ChannelMessageEvent:
			gotChannel = append(gotChannel, p.ChannelMessage())
		case contracts.RealTimeMessageEvent:
			gotRealTime = append(gotRealTime, p.RealTimeMessage())
		case contracts.SysExMessageEvent:
			gotSysEx = append(gotSysEx, p.SysExMessage().Copy().Data)
		}
	}

	if len(gotChannel) != len(sent) {
		t.Fatalf("parsed %d channel messages, want %d", len(gotChannel), len(sent))
	}
	for i, msg := range sent {
		if gotChannel[i] != msg {
			t.Errorf("channel %d = %+v, want %+v", i, gotChannel[i], msg)
		}
	}
	if len(gotRealTime) != 1 || gotRealTime[0].Message != 0xFA {
		t.Errorf("realtime = %+v, want one 0xFA", gotRealTime)
	}
	if len(gotSysEx) != 1 || !bytes.Equal(gotSysEx[0], []byte{0x7E, 0x00, 0x09}) {
		t.Errorf("sysex = %v, want [7E 00 09]", gotSysEx)
	}
}

func TestSysExPackets(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want [][4]byte
	}{
		{"empty", nil, [][4]byte{
			{0x06, 0xF0, 0xF7, 0},
		}},
		{"one byte", []byte{0x7E}, [][4]byte{
			{0x07, 0xF0, 0x7E, 0xF7},
		}},
		{"two bytes", []byte{0x7E, 0x00}, [][4]byte{
			{0x04, 0xF0, 0x7E, 0x00},
			{0x05, 0xF7, 0, 0},
		}},
		{"three bytes", []byte{0x7E, 0x00, 0x09}, [][4]byte{
			{0x04, 0xF0, 0x7E, 0x00},
			{0x06, 0x09, 0xF7, 0},
		}},
		{"four bytes", []byte{0x7E, 0x00, 0x09, 0x01}, [][4]byte{
			{0x04, 0xF0, 0x7E, 0x00},
			{0x07, 0x09, 0x01, 0xF7},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SysExPackets(contracts.SysExMessage{Data: tt.data})
			if len(got) != len(tt.want) {
				t.Fatalf("got %d packets %v, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("packet %d = % X, want % X", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSysExPacketsCable(t *testing.T) {
	got := SysExPackets(contracts.SysExMessage{Data: []byte{0x01}, Cable: 5})
	want := [4]byte{0x57, 0xF0, 0x01, 0xF7}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("packets = % X, want [% X]", got, want)
	}
}

func TestUSBRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewUSBWriter(&buf)

	channel := contracts.ChannelMessage{Header: 0x93, Data1: 60, Data2: 100, Cable: 2}
	if err := w.SendChannelMessage(channel); err != nil {
		t.Fatalf("SendChannelMessage: %v", err)
	}
	sysex := contracts.SysExMessage{Data: []byte{0x7E, 0x00, 0x09, 0x01, 0x02}, Cable: 2}
	if err := w.SendSysEx(sysex); err != nil {
		t.Fatalf("SendSysEx: %v", err)
	}

	p := parser.NewUSB(0)
	raw := buf.Bytes()
	if len(raw)%4 != 0 {
		t.Fatalf("stream length %d not packet aligned", len(raw))
	}

	var events []contracts.ReadEvent
	for i := 0; i < len(raw); i += 4 {
		var pkt [4]byte
		copy(pkt[:], raw[i:i+4])
		if ev := p.FeedPacket(pkt); ev != contracts.NoMessage {
			events = append(events, ev)
			switch ev {
			case contracts.ChannelMessageEvent:
				if got := p.ChannelMessage(); got != channel {
					t.Errorf("channel = %+v, want %+v", got, channel)
				}
			case contracts.SysExMessageEvent:
				if got := p.SysExMessage(); !got.Equals(sysex) {
					t.Errorf("sysex = %+v, want %+v", got, sysex)
				}
			}
		}
	}
	if len(events) != 2 {
		t.Fatalf("events = %v, want channel then sysex", events)
	}
}
