// zcon is a real-time terminal console for a frame hub.
//
// It connects to the hub over WebSocket, subscribes to spaces, shows every
// frame the hub relays and lets the operator send frames of their own.
//
// Usage:
//
//	zcon                         # Interactive console (auto-discover .zcon/config.yaml)
//	zcon --url ws://host:26514/  # Connect to a specific hub
//	zcon tail [--raw]            # Print received frames, one per line
//	zcon send "ping" --kind cmd  # Send one frame and exit
//	zcon history --limit 50      # Print the recorded transcript
//	zcon --version               # Print version and exit
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daviddao/zcon/internal/config"
)

// Version is set via ldflags at build time (e.g. -X main.Version=v0.1.0).
var Version = "dev"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	url        string
	logLevel   string
}

func (o *globalOptions) overrides() []config.Override {
	return []config.Override{config.WithURL(o.url), config.WithLogLevel(o.logLevel)}
}

// load resolves the configuration: file (or defaults), environment, then
// flags. It returns the config file path, empty when defaults were used.
func (o *globalOptions) load() (*config.Config, string, error) {
	return config.Open(o.configPath, o.overrides()...)
}

// reload re-reads the config file after an edit, keeping flag overrides.
func (o *globalOptions) reload(path string) (*config.Config, error) {
	return config.Load(path, o.overrides()...)
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	run := &consoleOptions{}

	root := &cobra.Command{
		Use:   "zcon",
		Short: "zcon - real-time console for a frame hub",
		Long: `zcon connects to a frame hub over WebSocket, shows every frame relayed
to the subscribed spaces and sends command, event and message frames.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, opts, run)
		},
	}
	root.SetVersionTemplate("zcon {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config file (default: auto-discover .zcon/config.yaml)")
	pf.StringVar(&opts.url, "url", "", "hub WebSocket URL (overrides config and "+config.EnvURL+")")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")

	run.bind(root)

	root.AddCommand(newRunCommand(opts))
	root.AddCommand(newTailCommand(opts))
	root.AddCommand(newSendCommand(opts))
	root.AddCommand(newHistoryCommand(opts))
	return root
}

func newRunCommand(opts *globalOptions) *cobra.Command {
	run := &consoleOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, opts, run)
		},
	}
	run.bind(cmd)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zcon: %v\n", err)
		os.Exit(1)
	}
}
