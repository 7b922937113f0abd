package softmix

import (
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/tickmix/internal/cache"
)

const (
	// DefaultSampleRate is the mix rate used when Options.SampleRate is zero.
	DefaultSampleRate = 48000

	// DefaultMaxChannels is the voice limit used when Options.MaxChannels is zero.
	DefaultMaxChannels = 32

	// DefaultWorkers is the loader concurrency used when Options.Workers is zero.
	DefaultWorkers = 4

	// Channels is the output channel count; the engine always mixes stereo.
	Channels = 2

	bytesPerSample = 4
	bytesPerFrame  = Channels * bytesPerSample
)

var logger = log.WithPrefix("softmix")

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	logger = l
}

// Options configures an Engine.
type Options struct {
	SampleRate  int
	MaxChannels int
	Workers     int

	// Cache, when set, serves and stores decoded clips.
	Cache *cache.Manager
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.MaxChannels <= 0 {
		o.MaxChannels = DefaultMaxChannels
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}
