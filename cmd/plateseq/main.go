// Package main provides the plateseq command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plateseq",
		Short: "Well-level Nanopore demultiplexing and variant calling",
		Long: `plateseq assigns Nanopore reads to plate wells via paired terminal
barcodes and calls per-well variants against a reference sequence.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.plateseq.yaml when present. Flag values take
// precedence over file values.
func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetConfigFile(filepath.Join(home, ".plateseq.yaml"))
	viper.SetConfigType("yaml")
	_ = viper.ReadInConfig()
}
