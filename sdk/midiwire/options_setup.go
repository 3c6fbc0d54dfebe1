package midiwire

import (
	"github.com/pcaldeira/midiwire/internal/logger"
	"github.com/pcaldeira/midiwire/sdk/contracts"
)

// applyDefaultOptions fills in defaults for anything the caller did not
// set explicitly.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.SysExBufferSize <= 0 {
		options.SysExBufferSize = contracts.DefaultSysExBufferSize
	}
	if options.EventBuffer <= 0 {
		options.EventBuffer = 100
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
