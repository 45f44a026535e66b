// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the notesheet CLI.
package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notesheet/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the notesheet CLI.
var rootCmd = &cobra.Command{
	Use:   "notesheet",
	Short: "Turn PDFs into sheets for handwritten notes",
	Long: `notesheet converts a PDF into a new PDF made for handwritten annotation.
Each output page holds two shrunk source pages on the left of a landscape
canvas; the rest of the page is ruled, gridded, or left blank for notes.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./notesheet.yaml or ~/.config/notesheet/notesheet.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print diagnostics to stderr")
}

func initConfig() {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	logger.SetVerbose(verbose)

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		logger.Warn("reading config: %v", err)
	}
}

// readConfig registers defaults and environment lookup on v and reads the
// config file. A missing default config file is not an error.
func readConfig(v *viper.Viper, cfgFile string) error {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("notesheet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "notesheet"))
		}
	}

	v.SetEnvPrefix("NOTESHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return err
	}
	logger.Info("using config file %s", v.ConfigFileUsed())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
