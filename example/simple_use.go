package main

import (
	"fmt"

	"github.com/pcaldeira/midiwire/internal/logger"
	"github.com/pcaldeira/midiwire/sdk/contracts"
	"github.com/pcaldeira/midiwire/sdk/midiwire"
)

func main() {
	log := logger.NewDevelopmentLogger()

	receiver, err := midiwire.NewSerialReceiver(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithEventFilter(contracts.EventFilter{
			Types: []contracts.MessageType{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		log.Error("failed to create receiver", log.Field().Error("error", err))
		return
	}

	devices, err := receiver.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("no serial ports found", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available serial ports:", devices)

	if err = receiver.SelectDevice(0); err != nil {
		log.Error("failed to open serial port", log.Field().Error("error", err))
		return
	}

	events := make(chan contracts.Event, 100)
	go func() {
		for ev := range events {
			switch ev.Kind {
			case contracts.ChannelMessageEvent:
				log.Info("channel message",
					log.Field().Uint8("header", ev.Channel.Header),
					log.Field().Uint8("data1", ev.Channel.Data1),
					log.Field().Uint8("data2", ev.Channel.Data2),
				)
			case contracts.SysExMessageEvent:
				log.Info("sysex message",
					log.Field().Int("length", len(ev.SysEx.Data)),
				)
			case contracts.RealTimeMessageEvent:
				log.Info("realtime message",
					log.Field().Uint8("message", ev.RealTime.Message),
				)
			}
		}
	}()

	receiver.StartCapture(events)
	defer receiver.Stop()

	fmt.Println("Capturing MIDI messages... Press Ctrl+C to exit.")
	select {} // Run indefinitely
}
