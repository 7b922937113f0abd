// Package main provides the tickmix command, a small player that drives the
// mixer with the software engine.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/tickmix/pkg/mixer"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool

	rootCmd = &cobra.Command{
		Use:           "tickmix",
		Short:         "Play music and sound effects through a tick-driven mixer",
		SilenceErrors: false,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadConfigFile()
		},
	}
)

// loadConfig returns the effective configuration: defaults, then the
// config file, then TICKMIX_* environment variables.
func loadConfig() (mixer.Config, error) {
	cfg, err := mixer.LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}
	cfg, err = mixer.LoadConfigFromEnv(cfg)
	if err != nil {
		return cfg, fmt.Errorf("invalid mixer configuration: %w", err)
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// loadConfigFile honours --config when given.
func loadConfigFile() error {
	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// `config edit` creates it
		return nil
	}
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file %s: %w", configFile, err)
	}
	log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	mixer.SetDefaults()

	rootCmd.AddCommand(playCmd, configCmd, toneCmd)
}

func configDirs() ([]string, error) {
	scope := gap.NewScope(gap.User, "tickmix")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return nil, err
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "tickmix")}, dirs...)
	}
	if c := os.Getenv("TICKMIX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}
	return dirs, nil
}

func tryLoadConfigFromDefaultPlaces() {
	dirs, err := configDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("tickmix")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}
	defaultConfigFile = filepath.Join(dirs[0], "tickmix.yml")
}
