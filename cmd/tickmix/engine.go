package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/tickmix/internal/cache"
	"github.com/dgnsrekt/tickmix/internal/softmix"
	"github.com/dgnsrekt/tickmix/pkg/mixer"
)

// audioStack is everything behind a Mixer in this command.
type audioStack struct {
	mixer  *mixer.Mixer
	engine *softmix.Engine
	cache  *cache.Manager
	output softmix.Output
}

func newAudioStack(cfg mixer.Config, headless bool) (*audioStack, error) {
	clips, err := cache.NewManager(cache.Config{
		MemoryCapacity: cfg.CacheMemorySize,
		DiskCapacity:   cfg.CacheDiskSize,
		DiskPath:       expandPath(cfg.CacheDir),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create clip cache: %w", err)
	}

	engine := softmix.New(softmix.Options{
		SampleRate:  cfg.SampleRate,
		MaxChannels: cfg.MaxChannels,
		Workers:     cfg.DecodeWorkers,
		Cache:       clips,
	})

	output, err := openOutput(engine, headless)
	if err != nil {
		engine.Close()
		clips.Close()
		return nil, err
	}

	m, err := mixer.New(engine, cfg)
	if err != nil {
		output.Close()
		engine.Close()
		clips.Close()
		return nil, err
	}

	return &audioStack{mixer: m, engine: engine, cache: clips, output: output}, nil
}

func openOutput(engine *softmix.Engine, headless bool) (softmix.Output, error) {
	if headless {
		return softmix.NewNullOutput(engine, 0), nil
	}
	out, err := softmix.OpenOto(engine, 50*time.Millisecond)
	if errors.Is(err, softmix.ErrNoAudioDevice) {
		log.Warn("No audio device, continuing headless", "error", err)
		return softmix.NewNullOutput(engine, 0), nil
	}
	return out, err
}

// Close stops output before tearing down the mixer and its engine.
func (s *audioStack) Close() error {
	stats := s.cache.Stats()
	log.Info("Clip cache",
		"decodes", stats.Decodes,
		"memory_hits", stats.L1Hits,
		"disk_hits", stats.L2Hits,
		"memory", humanize.IBytes(uint64(stats.L1.Size)),
		"disk", humanize.IBytes(uint64(stats.L2.Size)))

	err := errors.Join(s.output.Close(), s.mixer.Close())
	return errors.Join(err, s.cache.Close())
}
