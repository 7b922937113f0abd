//go:build !nocgo
// +build !nocgo

package softmix

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput plays an engine on the default audio device.
type OtoOutput struct {
	player *oto.Player
	once   sync.Once
}

// OpenOto creates the process-wide oto context at the engine's rate and
// starts a player reading from the engine. Only one oto context can exist
// per process.
func OpenOto(e *Engine, bufferSize time.Duration) (*OtoOutput, error) {
	rate, err := e.SampleRate()
	if err != nil {
		return nil, err
	}

	options := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	}

	logger.Debug("Initializing audio context",
		"sample_rate", options.SampleRate,
		"channels", options.ChannelCount,
		"buffer_size", options.BufferSize)

	ctx, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAudioDevice, err)
	}

	select {
	case <-readyChan:
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("%w: audio context initialization timeout", ErrNoAudioDevice)
	}

	player := ctx.NewPlayer(e)
	player.Play()
	logger.Info("Audio output started", "sample_rate", rate)

	return &OtoOutput{player: player}, nil
}

// Close stops the player. The oto context itself lives until the process exits.
func (o *OtoOutput) Close() error {
	var err error
	o.once.Do(func() {
		o.player.Pause()
		err = o.player.Close()
	})
	return err
}
