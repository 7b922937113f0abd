package mixer

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by LoadConfigFromEnv.
const EnvPrefix = "TICKMIX_"

// LoadConfigFromViper loads mixer configuration from Viper, starting from
// DefaultConfig and overriding every key that is set.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	// Backend settings
	if viper.IsSet("mixer.sample_rate") {
		cfg.SampleRate = viper.GetInt("mixer.sample_rate")
	}
	if viper.IsSet("mixer.max_channels") {
		cfg.MaxChannels = viper.GetInt("mixer.max_channels")
	}
	if viper.IsSet("mixer.max_sounds") {
		cfg.MaxSounds = viper.GetInt("mixer.max_sounds")
	}

	// Transition lengths
	cfg.MusicFadeOut = durationOr("mixer.music_fade_out", cfg.MusicFadeOut)
	cfg.MusicFadeIn = durationOr("mixer.music_fade_in", cfg.MusicFadeIn)
	cfg.MusicRampToNormal = durationOr("mixer.music_ramp_to_normal", cfg.MusicRampToNormal)
	cfg.SoundFadeOut = durationOr("mixer.sound_fade_out", cfg.SoundFadeOut)
	cfg.TickInterval = durationOr("mixer.tick_interval", cfg.TickInterval)

	// Volume state
	if viper.IsSet("mixer.sound_volume") {
		cfg.SoundVolume = viper.GetFloat64("mixer.sound_volume")
	}
	if viper.IsSet("mixer.music_muted") {
		cfg.MusicMuted = viper.GetBool("mixer.music_muted")
	}

	// Decoding and caching
	if viper.IsSet("mixer.decode_workers") {
		cfg.DecodeWorkers = viper.GetInt("mixer.decode_workers")
	}
	if viper.IsSet("mixer.cache_dir") {
		cfg.CacheDir = viper.GetString("mixer.cache_dir")
	}
	if viper.IsSet("mixer.cache_memory_size") {
		cfg.CacheMemorySize = viper.GetInt64("mixer.cache_memory_size")
	}
	if viper.IsSet("mixer.cache_disk_size") {
		cfg.CacheDiskSize = viper.GetInt64("mixer.cache_disk_size")
	}

	if viper.IsSet("debug") {
		cfg.Debug = viper.GetBool("debug")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid mixer configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromEnv overlays TICKMIX_* environment variables on cfg.
// Variables that are not set leave the corresponding field untouched.
func LoadConfigFromEnv(cfg Config) (Config, error) {
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("error parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SetDefaults sets default values in Viper for the mixer configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("mixer.sample_rate", defaults.SampleRate)
	viper.SetDefault("mixer.max_channels", defaults.MaxChannels)
	viper.SetDefault("mixer.max_sounds", defaults.MaxSounds)

	viper.SetDefault("mixer.music_fade_out", defaults.MusicFadeOut.String())
	viper.SetDefault("mixer.music_fade_in", defaults.MusicFadeIn.String())
	viper.SetDefault("mixer.music_ramp_to_normal", defaults.MusicRampToNormal.String())
	viper.SetDefault("mixer.sound_fade_out", defaults.SoundFadeOut.String())
	viper.SetDefault("mixer.tick_interval", defaults.TickInterval.String())

	viper.SetDefault("mixer.sound_volume", defaults.SoundVolume)
	viper.SetDefault("mixer.music_muted", defaults.MusicMuted)

	viper.SetDefault("mixer.decode_workers", defaults.DecodeWorkers)
	viper.SetDefault("mixer.cache_memory_size", defaults.CacheMemorySize)
	viper.SetDefault("mixer.cache_disk_size", defaults.CacheDiskSize)
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if !viper.IsSet(key) {
		return fallback
	}
	if d, err := time.ParseDuration(viper.GetString(key)); err == nil {
		return d
	}
	return fallback
}
