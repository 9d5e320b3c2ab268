package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/daviddao/zcon/internal/render"
	"github.com/daviddao/zcon/internal/transcript"
)

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var limit int
	var raw bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the recorded transcript",
		Long: `Prints lines recorded by earlier console and tail sessions, oldest
first. Recording is enabled with transcript.enabled in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			return runHistory(cmd.Context(), cfg.Transcript.Path, limit, raw, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "number of most recent lines to print (0 for all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print one JSON object per line")
	return cmd
}

// historyLine is the --raw output record.
type historyLine struct {
	ID        string    `json:"id"`
	Session   string    `json:"session"`
	At        time.Time `json:"at"`
	Direction string    `json:"direction"`
	Kind      int       `json:"kind"`
	Text      string    `json:"text"`
}

func runHistory(ctx context.Context, path string, limit int, raw bool, out io.Writer) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no transcript at %s (set transcript.enabled in the config)", path)
	}

	tr, err := transcript.Open(path)
	if err != nil {
		return err
	}
	defer tr.Close()

	records, err := tr.List(ctx, limit)
	if err != nil {
		return err
	}

	if raw {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		for _, rec := range records {
			dir := "in"
			if rec.Direction == render.Outbound {
				dir = "out"
			}
			if err := enc.Encode(historyLine{
				ID:        rec.ID,
				Session:   rec.Session,
				At:        rec.At,
				Direction: dir,
				Kind:      int(rec.Entry.Kind),
				Text:      rec.Entry.Text(),
			}); err != nil {
				return err
			}
		}
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintln(out, dimStyle.Render("(no lines recorded)"))
		return nil
	}

	for _, rec := range records {
		ts := dimStyle.Render(rec.At.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "%s %s\n", ts, styleEntry(rec.Entry))
	}
	sessions := map[string]struct{}{}
	for _, rec := range records {
		sessions[rec.Session] = struct{}{}
	}
	last := records[len(records)-1]
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%s lines from %s sessions, newest %s",
		humanize.Comma(int64(len(records))),
		humanize.Comma(int64(len(sessions))),
		humanize.Time(last.At),
	)))
	return nil
}
