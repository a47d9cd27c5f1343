// Package cli wires the dominion commands
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dominion/internal/config"
	"dominion/internal/log"
)

// BuildInfo is stamped in at link time
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
	encoding   string
	capacity   int
}

// NewRootCommand builds the command tree
func NewRootCommand(info BuildInfo) *cobra.Command {
	ro := &rootOptions{}

	root := &cobra.Command{
		Use:           "dominion",
		Short:         "Render planet maps from a game database dump",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&ro.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&ro.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&ro.logFile, "log-file", "", "append logs to this file instead of stderr")
	pf.StringVar(&ro.encoding, "encoding", "", "dump text encoding (utf-8, latin1, windows-1252, cp437)")
	pf.IntVar(&ro.capacity, "line-capacity", 0, "maximum bytes kept from one dump line")

	root.AddCommand(
		newRenderCommand(ro),
		newInspectCommand(ro),
		newGraphCommand(ro),
		newSliceCommand(ro),
	)
	return root
}

// load reads the configuration, applies the shared flags and sets up logging
func (ro *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = ro.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = ro.logFile
	}
	if flags.Changed("encoding") {
		cfg.Encoding = ro.encoding
	}
	if flags.Changed("line-capacity") {
		cfg.LineCapacity = ro.capacity
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if cfg.LogFile != "" {
		if err := log.SetFileOutput(cfg.LogFile); err != nil {
			return cfg, fmt.Errorf("failed to open log file: %w", err)
		}
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Execute runs the command tree with args, writing output to out
func Execute(info BuildInfo, args []string, out io.Writer) error {
	root := NewRootCommand(info)
	root.SetArgs(args)
	root.SetOut(out)
	return root.Execute()
}
