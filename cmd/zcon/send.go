package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/daviddao/zcon/internal/compose"
	"github.com/daviddao/zcon/internal/config"
	"github.com/daviddao/zcon/internal/frame"
	"github.com/daviddao/zcon/internal/logging"
	"github.com/daviddao/zcon/internal/render"
	"github.com/daviddao/zcon/internal/session"
)

var (
	errClosedBeforeOpen = errors.New("connection closed before the handshake")
	errBlankText        = errors.New("nothing to send: text is blank")
)

func newSendCommand(opts *globalOptions) *cobra.Command {
	var kindFlag, spaceFlag string

	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Send one frame and exit",
		Long: `Connects to the hub, waits for the subscription handshake, sends a
single frame named <text> to the target space and closes the connection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			kind, err := resolveKind(cfg, kindFlag)
			if err != nil {
				return err
			}
			spaces, i := resolveSpaces(cfg, spaceFlag)
			in := staticInput{kind: kind, text: args[0], space: spaces[i]}
			return runSend(cmd.Context(), cfg, session.WebSocketDialer{}, in, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "frame kind: command, event, message (default from config)")
	cmd.Flags().StringVar(&spaceFlag, "space", "", "target space (default: first configured space)")
	return cmd
}

// staticInput is a composer input with fixed values.
type staticInput struct {
	kind  frame.Kind
	text  string
	space string
}

func (in staticInput) Kind() frame.Kind { return in.kind }
func (in staticInput) Text() string     { return in.text }
func (in staticInput) Space() string    { return in.space }
func (in staticInput) PrepareNext()     {}

// runSend opens a session, sends one frame once the session is open and
// closes it. Only the wait for the session to open is bounded, by the
// configured dial timeout. Blank text is refused before dialing.
func runSend(ctx context.Context, cfg *config.Config, dialer session.Dialer, in compose.Input, out io.Writer) error {
	if strings.TrimSpace(in.Text()) == "" {
		return errBlankText
	}

	logger, closeLog, err := logging.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	opened := make(chan struct{})
	var once sync.Once
	sess := session.New(dialer, cfg.Hub.URL, session.HandlerFuncs{
		OnState: func(s session.State) {
			if s == session.Open {
				once.Do(func() { close(opened) })
			}
		},
	}, session.WithSubscribe(cfg.Hub.Subscribe), session.WithLogger(logger))

	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	var timeout <-chan struct{}
	if cfg.Hub.DialTimeout > 0 {
		tctx, cancel := context.WithTimeout(ctx, cfg.Hub.DialTimeout)
		defer cancel()
		timeout = tctx.Done()
	}

	select {
	case <-opened:
	case err := <-done:
		if err == nil {
			err = errClosedBeforeOpen
		}
		return err
	case <-timeout:
		sess.Close()
		<-done
		return fmt.Errorf("connect %s: timed out after %s", cfg.Hub.URL, cfg.Hub.DialTimeout)
	}

	f, err := compose.New(in, sess).Submit(ctx)
	sess.Close()
	<-done
	if err != nil {
		return err
	}

	fmt.Fprintln(out, styleEntry(render.New(render.DefaultTable()).RenderSent(f)))
	return nil
}
