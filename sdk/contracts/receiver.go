package contracts

// Event is one complete MIDI message delivered by a Receiver. Exactly one of
// the message fields is meaningful, selected by Kind. SysEx payloads are
// copied out of the parser buffer before delivery, so an Event owns its data.
type Event struct {
	Kind     ReadEvent
	Channel  ChannelMessage
	SysEx    SysExMessage
	RealTime RealTimeMessage
}

// Receiver pumps a byte or packet source through a parser and delivers
// completed messages on a channel.
type Receiver interface {
	// ListDevices lists the sources this receiver can attach to.
	ListDevices() ([]DeviceInfo, error)
	// SelectDevice attaches the receiver to a source by its index in
	// ListDevices.
	SelectDevice(deviceID int) error
	// StartCapture begins pumping the source. Completed messages are sent to
	// eventChannel without blocking; events are dropped with a warning when
	// the channel is full.
	StartCapture(eventChannel chan Event)
	// Stop halts the pump and releases the source.
	Stop() error
}

// Sender serializes outgoing MIDI messages onto a transport.
type Sender interface {
	SendChannelMessage(msg ChannelMessage) error
	SendSysEx(msg SysExMessage) error
	SendRealTime(msg RealTimeMessage) error
}
