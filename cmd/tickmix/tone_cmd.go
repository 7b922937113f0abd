package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/tickmix/internal/decode"
)

var (
	toneFreq      float64
	toneDuration  time.Duration
	toneRate      int
	toneAmplitude float32

	toneCmd = &cobra.Command{
		Use:     "tone OUTPUT.wav",
		Short:   "Write a sine tone as a 16-bit WAV file",
		Long:    "Write a mono sine tone as a 16-bit WAV file, handy as a test sound for play --sfx.",
		Example: "tickmix tone blip.wav --freq 880 --duration 120ms",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toneFreq <= 0 || toneRate <= 0 || toneDuration <= 0 {
				return errors.New("frequency, rate and duration must be positive")
			}
			if toneAmplitude < 0 || toneAmplitude > 1 {
				return fmt.Errorf("amplitude must be between 0 and 1, got %v", toneAmplitude)
			}

			path := expandPath(args[0])
			clip := decode.Tone(toneFreq, toneDuration, toneRate, toneAmplitude)
			if err := decode.WriteWAVFile(path, clip); err != nil {
				return fmt.Errorf("unable to write %s: %w", path, err)
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s)\n", path, clip.Duration(), humanize.Bytes(uint64(info.Size())))
			return nil
		},
	}
)

func init() {
	toneCmd.Flags().Float64Var(&toneFreq, "freq", 440, "frequency in Hz")
	toneCmd.Flags().DurationVar(&toneDuration, "duration", time.Second, "length of the tone")
	toneCmd.Flags().IntVar(&toneRate, "rate", 48000, "sample rate in Hz")
	toneCmd.Flags().Float32Var(&toneAmplitude, "amplitude", 0.5, "peak amplitude in [0, 1]")
}
