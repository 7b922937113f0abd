package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/tickmix/pkg/mixer"
)

// defaultConfigFile is where `config edit` creates a config when none was found.
var defaultConfigFile string

const defaultConfig = `# print debug logs
debug: false

mixer:
  # mix rate in Hz (0 keeps the engine default of 48000)
  sample_rate: 0
  # simultaneous voices
  max_channels: 32
  # sound pool size; handles run from 1 to max_sounds-1
  max_sounds: 256

  # transition lengths
  music_fade_out: "2s"
  music_fade_in: "2.5s"
  music_ramp_to_normal: "500ms"
  sound_fade_out: "100ms"

  # initial volume state (hot reloaded while playing)
  sound_volume: 1.0
  music_muted: false

  # how often the mixer ticks
  tick_interval: "16.666666ms"

  # decoding and caching
  decode_workers: 4
  # cache_dir: "~/.cache/tickmix/clips"
  cache_memory_size: 67108864
  cache_disk_size: 536870912
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  "Print the configuration tickmix would use, after merging defaults, the config file and TICKMIX_* environment variables.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

var configEditCmd = &cobra.Command{
	Use:     "edit",
	Short:   "Edit the tickmix config file",
	Long:    "Edit the tickmix config file. We'll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.",
	Example: "tickmix config edit\ntickmix config edit --config path/to/config.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		file, err := ensureConfigFile()
		if err != nil {
			return err
		}

		c, err := editor.Cmd("tickmix", file)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", file)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configEditCmd)
}

// printConfig writes cfg in the same layout as the config file.
func printConfig(w io.Writer, cfg mixer.Config) error {
	doc := struct {
		Debug bool         `yaml:"debug"`
		Mixer mixer.Config `yaml:"mixer"`
	}{cfg.Debug, cfg}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("unable to encode config: %w", err)
	}
	return enc.Close()
}

// ensureConfigFile returns the config file to edit, writing the default
// config there first if it does not exist.
func ensureConfigFile() (string, error) {
	file := configFile
	if file == "" {
		file = viper.GetViper().ConfigFileUsed()
	}
	if file == "" {
		file = defaultConfigFile
	}
	if file == "" {
		return "", errors.New("no configuration directory available")
	}

	if ext := path.Ext(file); ext != ".yaml" && ext != ".yml" {
		return "", fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
			return "", fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(file)
		if err != nil {
			return "", fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return "", fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("unable to stat config file: %w", err)
	}
	return file, nil
}
