package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/tickmix/internal/backend"
	"github.com/dgnsrekt/tickmix/pkg/mixer"
)

var (
	fadeInVolume float32
	sfxFile      string
	sfxEvery     time.Duration
	sfxPan       float32
	playFor      time.Duration
	headless     bool

	playCmd = &cobra.Command{
		Use:   "play MUSIC",
		Short: "Play a music file, optionally with a repeating sound effect",
		Long: "Play a music file through the mixer. With --fade-in the music fades in from silence " +
			"to the given volume; with --sfx a sound effect is played every --sfx-every. " +
			"Sound volume and music mute follow the config file while playing.",
		Example: "tickmix play theme.ogg\ntickmix play theme.ogg --fade-in 0.8 --sfx blip.wav --sfx-every 750ms",
		Args:    cobra.ExactArgs(1),
		RunE:    runPlay,
	}
)

func init() {
	playCmd.Flags().Float32Var(&fadeInVolume, "fade-in", 0, "fade the music in to this volume (0 plays at full volume immediately)")
	playCmd.Flags().StringVar(&sfxFile, "sfx", "", "sound effect to repeat while the music plays")
	playCmd.Flags().DurationVar(&sfxEvery, "sfx-every", time.Second, "interval between sound effects")
	playCmd.Flags().Float32Var(&sfxPan, "sfx-pan", 0, "stereo balance of the sound effect in [-1, 1]")
	playCmd.Flags().DurationVar(&playFor, "duration", 0, "stop after this long (0 plays until interrupted)")
	playCmd.Flags().BoolVar(&headless, "headless", false, "mix without an audio device")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	configureLogging(cfg)

	stack, err := newAudioStack(cfg, headless)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			log.Warn("Shutdown incomplete", "error", err)
		}
	}()
	m := stack.mixer

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if playFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, playFor)
		defer cancel()
	}

	watchConfig(m)

	music := expandPath(args[0])
	if fadeInVolume > 0 {
		err = m.FadeInMusic(music, fadeInVolume)
	} else {
		err = m.PlayMusic(music)
	}
	if err != nil {
		return fmt.Errorf("unable to start music: %w", err)
	}
	rate, _ := stack.engine.SampleRate()
	log.Info("Playing", "music", music, "sample_rate", rate, "fade_in", fadeInVolume > 0)

	var sfx mixer.Handle
	if sfxFile != "" {
		sfx, err = m.Load(expandPath(sfxFile))
		if err != nil {
			return fmt.Errorf("unable to load sound effect: %w", err)
		}
	}

	runner := mixer.NewRunner(m, cfg.TickInterval)
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	var sfxTick <-chan time.Time
	if sfxFile != "" {
		ticker := time.NewTicker(sfxEvery)
		defer ticker.Stop()
		sfxTick = ticker.C
	}

	for {
		select {
		case <-sfxTick:
			playEffect(m, sfx)
		case err := <-done:
			log.Info("Stopped", "ticks", runner.Ticks(), "failed_ticks", runner.Failures(), "position", musicPosition(m))
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				// let the engine finish the fade; the stop is scheduled on its clock
				if err := m.FadeOutMusic(); err != nil {
					return err
				}
				time.Sleep(cfg.MusicFadeOut)
				return nil
			case errors.Is(err, context.Canceled):
				return nil
			}
			return err
		}
	}
}

func playEffect(m *mixer.Mixer, sfx mixer.Handle) {
	state, err := m.SoundState(sfx)
	if err != nil || state != backend.OpenReady {
		log.Debug("Sound effect not ready", "state", state, "error", err)
		return
	}
	if _, err := m.Play(sfx, 0, sfxPan); err != nil {
		log.Warn("Could not play sound effect", "status", mixer.Status(err), "error", err)
	}
}

func musicPosition(m *mixer.Mixer) time.Duration {
	ms, err := m.MusicPosition()
	if err != nil {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// watchConfig applies volume and mute changes from the config file while
// playing.
func watchConfig(m *mixer.Mixer) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := loadConfig()
		if err != nil {
			log.Warn("Ignoring config change", "path", e.Name, "error", err)
			return
		}
		if err := m.SetSoundVolume(float32(cfg.SoundVolume)); err != nil {
			log.Warn("Could not apply sound volume", "error", err)
		}
		if err := m.MuteMusic(cfg.MusicMuted); err != nil {
			log.Warn("Could not apply music mute", "error", err)
		}
		log.Info("Config reloaded", "sound_volume", cfg.SoundVolume, "music_muted", cfg.MusicMuted)
	})
	viper.WatchConfig()
}

// expandPath expands environment variables and a leading ~.
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
