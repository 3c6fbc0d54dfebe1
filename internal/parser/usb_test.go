package parser

import (
	"bytes"
	"testing"

	"github.com/pcaldeira/midiwire/sdk/contracts"
)

func TestUSBChannelPackets(t *testing.T) {
	tests := []struct {
		name   string
		packet [4]byte
		want   contracts.ChannelMessage
	}{
		{"note on cable 0", [4]byte{0x09, 0x90, 60, 100},
			contracts.ChannelMessage{Header: 0x90, Data1: 60, Data2: 100}},
		{"note off cable 2", [4]byte{0x28, 0x83, 60, 0},
			contracts.ChannelMessage{Header: 0x83, Data1: 60, Cable: 2}},
		{"control change", [4]byte{0x0B, 0xB0, 7, 127},
			contracts.ChannelMessage{Header: 0xB0, Data1: 7, Data2: 127}},
		{"program change drops third byte", [4]byte{0x0C, 0xC1, 42, 0x55},
			contracts.ChannelMessage{Header: 0xC1, Data1: 42}},
		{"channel pressure drops third byte", [4]byte{0x0D, 0xD2, 99, 0x55},
			contracts.ChannelMessage{Header: 0xD2, Data1: 99}},
		{"pitch bend cable 15", [4]byte{0xFE, 0xE0, 0x00, 0x40},
			contracts.ChannelMessage{Header: 0xE0, Data1: 0x00, Data2: 0x40, Cable: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewUSB(0)
			if ev := p.FeedPacket(tt.packet); ev != contracts.ChannelMessageEvent {
				t.Fatalf("FeedPacket = %v, want channel", ev)
			}
			if got := p.ChannelMessage(); got != tt.want {
				t.Errorf("ChannelMessage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUSBInvalidChannelHeader(t *testing.T) {
	p := NewUSB(0)

	// CIN says note-on but the payload carries a data byte as header.
	if ev := p.FeedPacket([4]byte{0x09, 0x12, 60, 100}); ev != contracts.NoMessage {
		t.Fatalf("FeedPacket = %v, want no-message", ev)
	}
	if d := p.Diagnostics(); d.IgnoredPackets != 1 {
		t.Errorf("IgnoredPackets = %d, want 1", d.IgnoredPackets)
	}
}

func TestUSBRealTime(t *testing.T) {
	p := NewUSB(0)

	if ev := p.FeedPacket([4]byte{0x3F, 0xF8, 0, 0}); ev != contracts.RealTimeMessageEvent {
		t.Fatalf("FeedPacket = %v, want realtime", ev)
	}
	want := contracts.RealTimeMessage{Message: 0xF8, Cable: 3}
	if got := p.RealTimeMessage(); got != want {
		t.Errorf("RealTimeMessage() = %+v, want %+v", got, want)
	}
}

func TestUSBSysExSinglePacket(t *testing.T) {
	tests := []struct {
		name    string
		packets [][4]byte
		want    []byte
	}{
		{"empty F0 F7", [][4]byte{{0x06, 0xF0, 0xF7, 0}}, []byte{}},
		{"one byte", [][4]byte{{0x07, 0xF0, 0x7E, 0xF7}}, []byte{0x7E}},
		{"two bytes", [][4]byte{
			{0x04, 0xF0, 0x7E, 0x00},
			{0x05, 0xF7, 0, 0},
		}, []byte{0x7E, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewUSB(0)
			var last contracts.ReadEvent
			for _, pkt := range tt.packets {
				last = p.FeedPacket(pkt)
			}
			if last != contracts.SysExMessageEvent {
				t.Fatalf("final event = %v, want sysex", last)
			}
			if got := p.SysExMessage().Data; !bytes.Equal(got, tt.want) {
				t.Errorf("SysEx data = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestUSBSysExMultiPacket(t *testing.T) {
	p := NewUSB(0)

	packets := [][4]byte{
		{0x14, 0xF0, 0x01, 0x02}, // start, cable 1
		{0x14, 0x03, 0x04, 0x05}, // continue
		{0x14, 0x06, 0x07, 0x08}, // continue
		{0x17, 0x09, 0x0A, 0xF7}, // end with 3 bytes
	}
	var last contracts.ReadEvent
	for i, pkt := range packets {
		last = p.FeedPacket(pkt)
		if i < len(packets)-1 && last != contracts.NoMessage {
			t.Fatalf("packet %d: got %v, want no-message", i, last)
		}
	}
	if last != contracts.SysExMessageEvent {
		t.Fatalf("final event = %v, want sysex", last)
	}

	msg := p.SysExMessage()
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}
	if !bytes.Equal(msg.Data, want) {
		t.Errorf("SysEx data = % X, want % X", msg.Data, want)
	}
	if msg.Cable != 1 {
		t.Errorf("SysEx cable = %d, want 1", msg.Cable)
	}
}

func TestUSBSysExRealTimeInterleaved(t *testing.T) {
	p := NewUSB(0)

	if ev := p.FeedPacket([4]byte{0x04, 0xF0, 0x01, 0x02}); ev != contracts.NoMessage {
		t.Fatalf("start packet: got %v", ev)
	}
	// A real-time packet between SysEx packets must not disturb the capture.
	if ev := p.FeedPacket([4]byte{0x0F, 0xFE, 0, 0}); ev != contracts.RealTimeMessageEvent {
		t.Fatalf("realtime packet: got %v, want realtime", ev)
	}
	if ev := p.FeedPacket([4]byte{0x06, 0x03, 0xF7, 0}); ev != contracts.SysExMessageEvent {
		t.Fatalf("end packet: got %v, want sysex", ev)
	}
	if got := p.SysExMessage().Data; !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("SysEx data = % X, want 01 02 03", got)
	}
}

func TestUSBSysExOverflow(t *testing.T) {
	const capacity = 6
	p := NewUSB(capacity)

	p.FeedPacket([4]byte{0x04, 0xF0, 0x00, 0x01})
	p.FeedPacket([4]byte{0x04, 0x02, 0x03, 0x04})
	p.FeedPacket([4]byte{0x04, 0x05, 0x06, 0x07})
	if ev := p.FeedPacket([4]byte{0x05, 0xF7, 0, 0}); ev != contracts.SysExMessageEvent {
		t.Fatalf("end packet: got %v, want sysex", ev)
	}

	got := p.SysExMessage()
	if len(got.Data) != capacity {
		t.Errorf("SysEx length = %d, want capped at %d", len(got.Data), capacity)
	}
	if !bytes.Equal(got.Data, []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}) {
		t.Errorf("SysEx data = % X", got.Data)
	}
	if d := p.Diagnostics(); d.DroppedSysEx != 2 {
		t.Errorf("DroppedSysEx = %d, want 2", d.DroppedSysEx)
	}
}

func TestUSBSysExContinuationWithoutStart(t *testing.T) {
	p := NewUSB(0)

	if ev := p.FeedPacket([4]byte{0x04, 0x01, 0x02, 0x03}); ev != contracts.NoMessage {
		t.Fatalf("orphan continuation: got %v", ev)
	}
	if d := p.Diagnostics(); d.IgnoredPackets != 1 {
		t.Errorf("IgnoredPackets = %d, want 1", d.IgnoredPackets)
	}

	// The next complete message still parses.
	if ev := p.FeedPacket([4]byte{0x09, 0x90, 60, 100}); ev != contracts.ChannelMessageEvent {
		t.Fatalf("note on after orphan: got %v, want channel", ev)
	}
}

func TestUSBSingleByteSystemCommon(t *testing.T) {
	p := NewUSB(0)

	// Tune Request through CIN 0x5 with no capture in progress.
	if ev := p.FeedPacket([4]byte{0x05, 0xF6, 0, 0}); ev != contracts.RealTimeMessageEvent {
		t.Fatalf("tune request: got %v, want realtime", ev)
	}
	if got := p.RealTimeMessage().Message; got != 0xF6 {
		t.Errorf("Message = %#x, want 0xF6", got)
	}
}

func TestUSBReservedPackets(t *testing.T) {
	p := NewUSB(0)

	for _, pkt := range [][4]byte{
		{0x00, 0x12, 0x34, 0x56}, // misc function codes
		{0x01, 0x12, 0x34, 0x56}, // cable events
	} {
		if ev := p.FeedPacket(pkt); ev != contracts.NoMessage {
			t.Fatalf("reserved packet % X: got %v", pkt, ev)
		}
	}
	if d := p.Diagnostics(); d.IgnoredPackets != 2 {
		t.Errorf("IgnoredPackets = %d, want 2", d.IgnoredPackets)
	}
}

func TestUSBResetDeterminism(t *testing.T) {
	packets := [][4]byte{
		{0x09, 0x90, 60, 100},
		{0x04, 0xF0, 0x7E, 0x00},
		{0x0F, 0xF8, 0, 0},
		{0x06, 0x01, 0xF7, 0},
		{0x08, 0x80, 60, 0},
	}

	run := func(p *USBParser) []contracts.ReadEvent {
		var events []contracts.ReadEvent
		for _, pkt := range packets {
			if ev := p.FeedPacket(pkt); ev != contracts.NoMessage {
				events = append(events, ev)
			}
		}
		return events
	}

	p := NewUSB(16)
	first := run(p)
	p.Reset()
	second := run(p)

	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("result %d differs: %v vs %v", i, first, second)
		}
	}
}
