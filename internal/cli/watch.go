package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"swipehire/internal/syncadapter"
)

type WatchOptions struct {
	ListOptions
	Settle time.Duration
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{ListOptions: ListOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "watch <applications|connections>",
		Short: "Keep a view on screen, re-fetching on every change",
		Long: `Open the real-time channel and print the view again each time the
server reports a change. The view is always re-read in full.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"applications", "connections"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, args[0])
		},
	}
	opts.bindFlags(cmd)
	cmd.Flags().DurationVar(&opts.Settle, "settle", 100*time.Millisecond, "wait before re-fetching so bursts collapse")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions, view string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	source, err := syncadapter.Dial(ctx, opts.Server, opts.Token)
	if err != nil {
		return err
	}

	fetch := opts.fetcher(view)
	out := cmd.OutOrStdout()
	refetch := func(ctx context.Context) error {
		current, err := fetch(ctx)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "refetch failed: %v\n", err)
			return err
		}
		fmt.Fprintf(out, "--- %s %s\n", view, time.Now().Format(time.TimeOnly))
		return render(out, opts.Format, current)
	}

	err = syncadapter.New(source, refetch, syncadapter.Options{Settle: opts.Settle}).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
