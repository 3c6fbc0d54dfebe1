package receiver

import (
	"testing"
	"time"

	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// fakeAccessor returns canned messages.
type fakeAccessor struct {
	channel  contracts.ChannelMessage
	sysex    contracts.SysExMessage
	realtime contracts.RealTimeMessage
}

func (f *fakeAccessor) ChannelMessage() contracts.ChannelMessage   { return f.channel }
func (f *fakeAccessor) SysExMessage() contracts.SysExMessage       { return f.sysex }
func (f *fakeAccessor) RealTimeMessage() contracts.RealTimeMessage { return f.realtime }

// nopLogger satisfies contracts.Logger and records nothing.
type nopLogger struct{}

func (nopLogger) Info(string, ...contracts.Field)  {}
func (nopLogger) Error(string, ...contracts.Field) {}
func (nopLogger) Debug(string, ...contracts.Field) {}
func (nopLogger) Warn(string, ...contracts.Field)  {}
func (nopLogger) Fatal(string, ...contracts.Field) {}
func (nopLogger) Field() contracts.Field           { return nopField{} }
func (nopLogger) SetLevel(contracts.LogLevel)      {}
func (nopLogger) SetDestination(contracts.LogDestination, ...string) {}

type nopField struct{}

func (nopField) Bool(string, bool) contracts.Field         { return nopField{} }
func (nopField) Int(string, int) contracts.Field           { return nopField{} }
func (nopField) Float64(string, float64) contracts.Field   { return nopField{} }
func (nopField) String(string, string) contracts.Field     { return nopField{} }
func (nopField) Time(string, time.Time) contracts.Field    { return nopField{} }
func (nopField) Int64(string, int64) contracts.Field       { return nopField{} }
func (nopField) Error(string, error) contracts.Field       { return nopField{} }
func (nopField) Uint64(string, uint64) contracts.Field     { return nopField{} }
func (nopField) Uint8(string, uint8) contracts.Field       { return nopField{} }

func TestEventFromCopiesSysEx(t *testing.T) {
	backing := []byte{0x01, 0x02, 0x03}
	acc := &fakeAccessor{sysex: contracts.SysExMessage{Data: backing, Cable: 2}}

	ev := EventFrom(contracts.SysExMessageEvent, acc)

	// Mutating the parser's buffer must not affect the delivered event.
	backing[0] = 0x7F
	if ev.SysEx.Data[0] != 0x01 {
		t.Errorf("event data aliases the parser buffer")
	}
	if ev.SysEx.Cable != 2 {
		t.Errorf("cable = %d, want 2", ev.SysEx.Cable)
	}
}

func TestAllowed(t *testing.T) {
	filter := &contracts.EventFilter{Types: []contracts.MessageType{contracts.NoteOn}}

	tests := []struct {
		name string
		ev   contracts.Event
		want bool
	}{
		{"note on passes", contracts.Event{
			Kind:    contracts.ChannelMessageEvent,
			Channel: contracts.ChannelMessage{Header: 0x93},
		}, true},
		{"control change filtered", contracts.Event{
			Kind:    contracts.ChannelMessageEvent,
			Channel: contracts.ChannelMessage{Header: 0xB0},
		}, false},
		{"realtime always passes", contracts.Event{
			Kind:     contracts.RealTimeMessageEvent,
			RealTime: contracts.RealTimeMessage{Message: 0xF8},
		}, true},
		{"sysex always passes", contracts.Event{
			Kind: contracts.SysExMessageEvent,
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(filter, tt.ev); got != tt.want {
				t.Errorf("Allowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllowedNilFilter(t *testing.T) {
	ev := contracts.Event{
		Kind:    contracts.ChannelMessageEvent,
		Channel: contracts.ChannelMessage{Header: 0xB0},
	}
	if !Allowed(nil, ev) {
		t.Error("nil filter must pass everything")
	}
}

func TestDeliverDropsWhenFull(t *testing.T) {
	ch := make(chan contracts.Event, 1)
	first := contracts.Event{Kind: contracts.RealTimeMessageEvent}
	second := contracts.Event{Kind: contracts.ChannelMessageEvent}

	Deliver(nopLogger{}, ch, first)
	Deliver(nopLogger{}, ch, second) // channel full, must not block

	got := <-ch
	if got.Kind != contracts.RealTimeMessageEvent {
		t.Errorf("delivered kind = %v, want realtime", got.Kind)
	}
	select {
	case ev := <-ch:
		t.Errorf("unexpected second event %v", ev)
	default:
	}
}
