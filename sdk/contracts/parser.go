package contracts

// ReadEvent is the outcome of one parse step. A non-NoMessage value tells the
// caller which accessor holds a complete message; calling any other accessor
// after that step is a caller bug, not a recoverable condition.
type ReadEvent int

const (
	// NoMessage means the step consumed input without completing a message.
	NoMessage ReadEvent = iota
	// ChannelMessageEvent means ChannelMessage() holds a complete message.
	ChannelMessageEvent
	// SysExMessageEvent means SysExMessage() holds a complete message.
	SysExMessageEvent
	// RealTimeMessageEvent means RealTimeMessage() holds a complete message.
	RealTimeMessageEvent
)

// String returns a short name for logging.
func (e ReadEvent) String() string {
	switch e {
	case NoMessage:
		return "no-message"
	case ChannelMessageEvent:
		return "channel"
	case SysExMessageEvent:
		return "sysex"
	case RealTimeMessageEvent:
		return "realtime"
	default:
		return "unknown"
	}
}

// MessageAccessor exposes the last completed message of a parser. Which
// accessor is valid is determined by the ReadEvent returned from the
// preceding parse step.
type MessageAccessor interface {
	ChannelMessage() ChannelMessage
	SysExMessage() SysExMessage
	RealTimeMessage() RealTimeMessage
}

// ByteParser reconstructs MIDI messages from a continuous byte stream
// (Serial/UART transports). Feed never blocks and never fails; malformed
// input is absorbed and the parser resynchronizes on the next status byte.
// Not safe for concurrent use; drive each instance from one goroutine.
type ByteParser interface {
	MessageAccessor
	// Feed consumes exactly one stream byte and advances the state machine.
	Feed(b byte) ReadEvent
	// Reset restores the initial state: no running status, SysEx buffer empty.
	Reset()
}

// PacketParser reconstructs MIDI messages from 4-byte USB-MIDI event packets.
// Not safe for concurrent use.
type PacketParser interface {
	MessageAccessor
	// FeedPacket consumes one USB-MIDI packet: cable number in the high
	// nibble of packet[0], Code Index Number in the low nibble, payload in
	// packet[1:4].
	FeedPacket(packet [4]byte) ReadEvent
	Reset()
}

// Diagnostics counts recovered input errors. All conditions counted here are
// absorbed silently by the parsers; the counters exist for tests and
// monitoring.
type Diagnostics struct {
	StrayDataBytes uint // Data bytes received with no running status.
	TruncatedSysEx uint // SysEx captures aborted by an unexpected status byte.
	DroppedSysEx   uint // SysEx bytes dropped because the buffer was full.
	IgnoredPackets uint // USB packets with reserved or inconsistent framing.
}
