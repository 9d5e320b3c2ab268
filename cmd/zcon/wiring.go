package main

import (
	"fmt"
	"slices"

	"github.com/daviddao/zcon/internal/config"
	"github.com/daviddao/zcon/internal/frame"
	"github.com/daviddao/zcon/internal/logstore"
	"github.com/daviddao/zcon/internal/session"
	"github.com/daviddao/zcon/internal/transcript"
)

// resolveKind returns the --kind flag value, or the configured default.
func resolveKind(cfg *config.Config, flag string) (frame.Kind, error) {
	if flag == "" {
		return cfg.DefaultKind(), nil
	}
	k, err := frame.ParseKind(flag)
	if err != nil {
		return 0, fmt.Errorf("--kind: %w", err)
	}
	return k, nil
}

// resolveSpaces returns the selectable spaces and the initial selection.
// A --space value missing from the config is added in front.
func resolveSpaces(cfg *config.Config, flag string) ([]string, int) {
	spaces := slices.Clone(cfg.Console.Spaces)
	if flag == "" {
		return spaces, 0
	}
	if i := slices.Index(spaces, flag); i >= 0 {
		return spaces, i
	}
	return append([]string{flag}, spaces...), 0
}

// openTranscript opens the configured transcript, or returns nil when
// recording is disabled.
func openTranscript(cfg *config.Config) (*transcript.Transcript, error) {
	if !cfg.Transcript.Enabled {
		return nil, nil
	}
	tr, err := transcript.Open(cfg.Transcript.Path)
	if err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}
	return tr, nil
}

// transcriptSink returns the store options recording sess into tr.
func transcriptSink(tr *transcript.Transcript, sess *session.Session) []logstore.Option {
	if tr == nil {
		return nil
	}
	return []logstore.Option{logstore.WithSink(tr.Recorder(sess.ID().String()))}
}
