// midimon is a small monitor for debugging MIDI streams: it lists the
// available sources and prints every message the midiwire parsers
// reconstruct from a serial port or a system MIDI input.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters the rtmidi driver

	"github.com/pcaldeira/midiwire/internal/logger"
	"github.com/pcaldeira/midiwire/sdk/contracts"
	"github.com/pcaldeira/midiwire/sdk/midiwire"
)

var (
	flagPort     string
	flagBaud     int
	flagHairless bool
	flagSysEx    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "midimon",
		Short: "Monitor MIDI streams through the midiwire parsers",
	}

	portsCmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports and system MIDI inputs",
		RunE:  runPorts,
	}

	serialCmd := &cobra.Command{
		Use:   "serial",
		Short: "Monitor a serial MIDI stream",
		RunE:  runSerial,
	}
	serialCmd.Flags().StringVar(&flagPort, "port", "", "serial port, e.g. /dev/ttyACM0")
	serialCmd.Flags().IntVar(&flagBaud, "baud", 0, "baud rate (default 31250, or 115200 with --hairless)")
	serialCmd.Flags().BoolVar(&flagHairless, "hairless", false, "use Hairless MIDI-serial bridge defaults")
	serialCmd.Flags().IntVar(&flagSysEx, "sysex-buffer", 0, "SysEx buffer capacity in bytes")
	serialCmd.MarkFlagRequired("port")

	midiCmd := &cobra.Command{
		Use:   "midi",
		Short: "Monitor a system MIDI input, re-parsed byte by byte",
		RunE:  runMIDI,
	}
	midiCmd.Flags().StringVar(&flagPort, "port", "", "MIDI input port name (substring match)")
	midiCmd.Flags().IntVar(&flagSysEx, "sysex-buffer", 0, "SysEx buffer capacity in bytes")
	midiCmd.MarkFlagRequired("port")

	rootCmd.AddCommand(portsCmd, serialCmd, midiCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPorts(cmd *cobra.Command, args []string) error {
	recv, err := midiwire.NewSerialReceiver()
	if err != nil {
		return err
	}
	serialPorts, err := recv.ListDevices()
	if err == nil {
		fmt.Println("Serial ports:")
		for i, dev := range serialPorts {
			fmt.Printf("  %2d: %s\n", i, dev.Name)
		}
	}

	fmt.Println("MIDI inputs:")
	for i, port := range midi.GetInPorts() {
		fmt.Printf("  %2d: %s\n", i, port.String())
	}
	defer midi.CloseDriver()
	return nil
}

func runSerial(cmd *cobra.Command, args []string) error {
	log := logger.NewDevelopmentLogger()

	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.DebugLevel),
		contracts.WithSerialConfig(contracts.SerialConfig{Port: flagPort, Baud: flagBaud}),
	}
	if flagSysEx > 0 {
		opts = append(opts, contracts.WithSysExBufferSize(flagSysEx))
	}

	newReceiver := midiwire.NewSerialReceiver
	if flagHairless {
		newReceiver = midiwire.NewHairlessReceiver
	}
	recv, err := newReceiver(opts...)
	if err != nil {
		return err
	}
	defer recv.Stop()

	events := make(chan contracts.Event, 100)
	recv.StartCapture(events)

	go printEvents(log, events)
	waitForInterrupt()
	return nil
}

func runMIDI(cmd *cobra.Command, args []string) error {
	log := logger.NewDevelopmentLogger()
	defer midi.CloseDriver()

	in, err := midi.FindInPort(flagPort)
	if err != nil {
		return fmt.Errorf("no MIDI input port matching %q: %w", flagPort, err)
	}

	parser, err := midiwire.NewByteParser(
		contracts.WithLogger(log),
		contracts.WithSysExBufferSize(flagSysEx),
	)
	if err != nil {
		return err
	}

	events := make(chan contracts.Event, 100)
	// The driver hands over complete messages; running them back through
	// the byte parser exercises the same path a raw transport would.
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		for _, b := range msg.Bytes() {
			kind := parser.Feed(b)
			if kind == contracts.NoMessage {
				continue
			}
			ev := contracts.Event{Kind: kind}
			switch kind {
			case contracts.ChannelMessageEvent:
				ev.Channel = parser.ChannelMessage()
			case contracts.SysExMessageEvent:
				ev.SysEx = parser.SysExMessage().Copy()
			case contracts.RealTimeMessageEvent:
				ev.RealTime = parser.RealTimeMessage()
			}
			select {
			case events <- ev:
			default:
			}
		}
	}, midi.UseSysEx())
	if err != nil {
		return err
	}
	defer stop()

	log.Info("monitoring MIDI input", log.Field().String("port", in.String()))
	go printEvents(log, events)
	waitForInterrupt()
	return nil
}

func printEvents(log contracts.Logger, events chan contracts.Event) {
	for ev := range events {
		switch ev.Kind {
		case contracts.ChannelMessageEvent:
			msg := ev.Channel
			log.Info("channel message",
				log.Field().Uint8("type", byte(msg.Type())),
				log.Field().Uint8("channel", msg.Channel()),
				log.Field().Uint8("data1", msg.Data1),
				log.Field().Uint8("data2", msg.Data2),
				log.Field().Uint8("cable", msg.Cable))
		case contracts.SysExMessageEvent:
			log.Info("sysex message",
				log.Field().Int("length", len(ev.SysEx.Data)),
				log.Field().String("data", fmt.Sprintf("% X", ev.SysEx.Data)),
				log.Field().Uint8("cable", ev.SysEx.Cable))
		case contracts.RealTimeMessageEvent:
			log.Info("realtime message",
				log.Field().Uint8("message", ev.RealTime.Message),
				log.Field().Uint8("cable", ev.RealTime.Cable))
		}
	}
}

func waitForInterrupt() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
}
