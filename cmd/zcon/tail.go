package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daviddao/zcon/internal/config"
	"github.com/daviddao/zcon/internal/frame"
	"github.com/daviddao/zcon/internal/logging"
	"github.com/daviddao/zcon/internal/logstore"
	"github.com/daviddao/zcon/internal/render"
	"github.com/daviddao/zcon/internal/session"
)

func newTailCommand(opts *globalOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print frames from the hub as they arrive",
		Long: `Connects to the hub and prints one line per received frame until the
connection closes or the process is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTail(ctx, cfg, session.WebSocketDialer{}, cmd.OutOrStdout(), raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the wire JSON of each frame instead of the rendered line")
	return cmd
}

// runTail streams the hub to out. Each received frame goes through the log
// store, whose revealer prints the newest line.
func runTail(ctx context.Context, cfg *config.Config, dialer session.Dialer, out io.Writer, raw bool) error {
	logger, closeLog, err := logging.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	tr, err := openTranscript(cfg)
	if err != nil {
		return err
	}
	if tr != nil {
		defer tr.Close()
	}

	renderer := render.New(render.DefaultTable())
	var store *logstore.Store

	handler := session.HandlerFuncs{
		OnFrame: func(f frame.Frame) {
			if raw {
				if b, err := frame.Encode(f); err == nil {
					fmt.Fprintln(out, string(b))
				}
			}
			store.Append(renderer.Render(f))
		},
		OnSent: func(f frame.Frame) {
			if cfg.Console.EchoSent {
				store.Append(renderer.RenderSent(f))
			}
		},
	}

	sess := session.New(dialer, cfg.Hub.URL, handler,
		session.WithSubscribe(cfg.Hub.Subscribe),
		session.WithLogger(logger),
	)

	storeOpts := append(transcriptSink(tr, sess), logstore.WithLogger(logger))
	if !raw {
		storeOpts = append(storeOpts, logstore.WithRevealer(logstore.RevealerFunc(func() {
			if line, ok := store.Last(); ok {
				fmt.Fprintln(out, styleEntry(line.Entry))
			}
		})))
	}
	store = logstore.New(storeOpts...)

	return sess.Run(ctx)
}
