// Package receiver holds the delivery helpers shared by the transport
// receivers: building an owned event from a parser result, filtering and
// non-blocking channel delivery.
package receiver

import "github.com/pcaldeira/midiwire/sdk/contracts"

// EventFrom snapshots the parser's completed message into an owned Event.
// SysEx payloads are copied, so the event stays valid after the parser's
// buffer is reused.
func EventFrom(kind contracts.ReadEvent, p contracts.MessageAccessor) contracts.Event {
	ev := contracts.Event{Kind: kind}
	switch kind {
	case contracts.ChannelMessageEvent:
		ev.Channel = p.ChannelMessage()
	case contracts.SysExMessageEvent:
		ev.SysEx = p.SysExMessage().Copy()
	case contracts.RealTimeMessageEvent:
		ev.RealTime = p.RealTimeMessage()
	}
	return ev
}

// Allowed reports whether the event passes the filter. Only channel
// messages are filtered; SysEx and real-time messages always pass.
func Allowed(filter *contracts.EventFilter, ev contracts.Event) bool {
	if ev.Kind != contracts.ChannelMessageEvent {
		return true
	}
	return filter.Allows(ev.Channel.Header)
}

// Deliver sends the event without blocking and warns when the channel is
// full. Dropping is preferred over stalling the transport pump.
func Deliver(log contracts.Logger, ch chan contracts.Event, ev contracts.Event) {
	select {
	case ch <- ev:
	default:
		log.Warn("event channel full; event discarded",
			log.Field().String("kind", ev.Kind.String()))
	}
}
