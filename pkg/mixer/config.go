package mixer

import (
	"fmt"
	"time"
)

// Config contains every tunable of the mixer and of the software backend
// that usually sits underneath it.
type Config struct {
	// Backend settings
	SampleRate  int `yaml:"sample_rate" env:"SAMPLE_RATE"` // 0 keeps the backend default
	MaxChannels int `yaml:"max_channels" env:"MAX_CHANNELS"`

	// Pool settings
	MaxSounds int `yaml:"max_sounds" env:"MAX_SOUNDS"` // handles 1..MaxSounds-1

	// Transition lengths
	MusicFadeOut      time.Duration `yaml:"music_fade_out" env:"MUSIC_FADE_OUT"`
	MusicFadeIn       time.Duration `yaml:"music_fade_in" env:"MUSIC_FADE_IN"`
	MusicRampToNormal time.Duration `yaml:"music_ramp_to_normal" env:"MUSIC_RAMP_TO_NORMAL"`
	SoundFadeOut      time.Duration `yaml:"sound_fade_out" env:"SOUND_FADE_OUT"`

	// Initial volume state
	SoundVolume float64 `yaml:"sound_volume" env:"SOUND_VOLUME"`
	MusicMuted  bool    `yaml:"music_muted" env:"MUSIC_MUTED"`

	// Tick driver
	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`

	// Decoding and caching
	DecodeWorkers   int    `yaml:"decode_workers" env:"DECODE_WORKERS"`
	CacheDir        string `yaml:"cache_dir" env:"CACHE_DIR"` // empty disables the disk cache
	CacheMemorySize int64  `yaml:"cache_memory_size" env:"CACHE_MEMORY_SIZE"`
	CacheDiskSize   int64  `yaml:"cache_disk_size" env:"CACHE_DISK_SIZE"`

	Debug bool `yaml:"-" env:"DEBUG"` // top-level "debug" key in the config file
}

// Defaults for the transition lengths.
const (
	DefaultMaxChannels       = 32
	DefaultMaxSounds         = 256
	DefaultMusicFadeOut      = 2 * time.Second
	DefaultMusicFadeIn       = 2500 * time.Millisecond
	DefaultMusicRampToNormal = 500 * time.Millisecond
	DefaultSoundFadeOut      = 100 * time.Millisecond
	DefaultTickInterval      = time.Second / 60
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:  0,
		MaxChannels: DefaultMaxChannels,
		MaxSounds:   DefaultMaxSounds,

		MusicFadeOut:      DefaultMusicFadeOut,
		MusicFadeIn:       DefaultMusicFadeIn,
		MusicRampToNormal: DefaultMusicRampToNormal,
		SoundFadeOut:      DefaultSoundFadeOut,

		SoundVolume: 1.0,
		MusicMuted:  false,

		TickInterval: DefaultTickInterval,

		DecodeWorkers:   4,
		CacheDir:        "",
		CacheMemorySize: 64 << 20,
		CacheDiskSize:   512 << 20,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.SampleRate < 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.SampleRate > 0 && (c.SampleRate < 8000 || c.SampleRate > 192000) {
		return fmt.Errorf("%w: sample rate must be between 8000 and 192000 Hz, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.MaxChannels < 1 {
		return fmt.Errorf("%w: max channels must be positive, got %d", ErrInvalidConfig, c.MaxChannels)
	}
	if c.MaxSounds < 2 {
		return fmt.Errorf("%w: max sounds must be at least 2, got %d", ErrInvalidConfig, c.MaxSounds)
	}

	for name, d := range map[string]time.Duration{
		"music fade out":       c.MusicFadeOut,
		"music fade in":        c.MusicFadeIn,
		"music ramp to normal": c.MusicRampToNormal,
		"sound fade out":       c.SoundFadeOut,
		"tick interval":        c.TickInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, d)
		}
	}

	if c.SoundVolume < 0 {
		return fmt.Errorf("%w: sound volume must not be negative, got %v", ErrInvalidConfig, c.SoundVolume)
	}
	if c.DecodeWorkers < 1 {
		return fmt.Errorf("%w: decode workers must be positive, got %d", ErrInvalidConfig, c.DecodeWorkers)
	}
	if c.CacheMemorySize < 0 || c.CacheDiskSize < 0 {
		return fmt.Errorf("%w: cache sizes must not be negative", ErrInvalidConfig)
	}

	return nil
}
