package contracts

// DefaultSysExBufferSize bounds SysEx accumulation when no explicit size is
// configured. Payloads longer than the buffer are truncated, never dropped
// entirely and never written out of bounds.
const DefaultSysExBufferSize = 128

// EventFilter restricts which message types a receiver delivers. A nil or
// empty filter delivers everything.
type EventFilter struct {
	Types []MessageType // Channel message types to deliver (channel nibble zero).
}

// Allows reports whether a channel message header passes the filter.
func (f *EventFilter) Allows(header byte) bool {
	if f == nil || len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if header&0xF0 == byte(t) {
			return true
		}
	}
	return false
}

// SerialConfig selects the serial port and line speed for serial receivers.
type SerialConfig struct {
	Port string // Port name, e.g. /dev/ttyACM0 or COM3.
	Baud int    // Line speed; 31250 for DIN MIDI, 115200 for Hairless.
}

// ClientOptions collects the configuration of parsers and receivers.
type ClientOptions struct {
	Logger          Logger        // Logger for receivers and the CLI.
	LogLevel        LogLevel      // Level applied to the logger.
	SysExBufferSize int           // Capacity of the SysEx accumulation buffer.
	EventFilter     *EventFilter  // Optional message-type filter.
	EventBuffer     int           // Capacity hint for event channels.
	Serial          *SerialConfig // Serial port configuration.
}

// Option mutates ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithSysExBufferSize sets the SysEx accumulation capacity in bytes.
func WithSysExBufferSize(size int) Option {
	return func(opts *ClientOptions) {
		opts.SysExBufferSize = size
	}
}

// WithEventFilter restricts delivered channel messages to the given types.
func WithEventFilter(filter EventFilter) Option {
	return func(opts *ClientOptions) {
		opts.EventFilter = &filter
	}
}

// WithEventBuffer sets the capacity hint for receiver event channels.
func WithEventBuffer(n int) Option {
	return func(opts *ClientOptions) {
		opts.EventBuffer = n
	}
}

// WithSerialConfig sets the serial port and baud rate.
func WithSerialConfig(config SerialConfig) Option {
	return func(opts *ClientOptions) {
		opts.Serial = &config
	}
}
