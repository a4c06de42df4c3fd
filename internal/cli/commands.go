package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"swipehire/internal/domain/application"
	"swipehire/internal/domain/connection"
)

type removal struct {
	Removed bool `json:"removed"`
}

// decodeMutation handles the two shapes a PUT/POST can return: the entity
// itself, or {"removed":true,...} when the record was deleted.
func decodeMutation[T any](status int, raw json.RawMessage) (any, error) {
	if status == http.StatusNoContent || len(raw) == 0 {
		return nil, nil
	}
	var marker removal
	if err := json.Unmarshal(raw, &marker); err == nil && marker.Removed {
		return &marker, nil
	}
	entity := new(T)
	if err := json.Unmarshal(raw, entity); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return entity, nil
}

func (o *RootOptions) client() *Client {
	return NewClient(o.Server, o.Token, nil)
}

type ListOptions struct {
	*RootOptions
	JobID       string
	DeveloperID string
	Bucket      string
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:       "list <applications|connections>",
		Short:     "Print the current view",
		Long:      "Print the applications board (companies pass --job) or the connection lists.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"applications", "connections"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fetch := opts.fetcher(args[0])
			view, err := fetch(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.Format, view)
		},
	}
	opts.bindFlags(cmd)
	return cmd
}

func (o *ListOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.JobID, "job", "", "job id (company board)")
	cmd.Flags().StringVar(&o.DeveloperID, "developer", "", "developer id (defaults to the token's actor)")
	cmd.Flags().StringVar(&o.Bucket, "bucket", "", "developer bucket filter")
}

// fetcher returns the authoritative read for a view.
func (o *ListOptions) fetcher(view string) func(context.Context) (any, error) {
	client := o.client()
	if view == "connections" {
		return func(ctx context.Context) (any, error) {
			query := url.Values{}
			if o.DeveloperID != "" {
				query.Set("developerId", o.DeveloperID)
			}
			var board connection.Board
			if _, err := client.Do(ctx, http.MethodGet, "/connections", query, nil, &board); err != nil {
				return nil, err
			}
			return &board, nil
		}
	}
	return func(ctx context.Context) (any, error) {
		query := url.Values{}
		if o.JobID != "" {
			query.Set("jobId", o.JobID)
			var board application.JobBoard
			if _, err := client.Do(ctx, http.MethodGet, "/applications", query, nil, &board); err != nil {
				return nil, err
			}
			return &board, nil
		}
		if o.DeveloperID != "" {
			query.Set("developerId", o.DeveloperID)
		}
		if o.Bucket != "" {
			query.Set("bucket", o.Bucket)
		}
		var board application.DeveloperBoard
		if _, err := client.Do(ctx, http.MethodGet, "/applications", query, nil, &board); err != nil {
			return nil, err
		}
		return &board, nil
	}
}

func NewSwipeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swipe",
		Short: "Swipe on a job or a developer",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "job <jobId> <right|left|hold>",
		Short: "Apply to, skip or hold a job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"jobId": args[0], "direction": args[1]}
			return mutate[application.Application](cmd, rootOpts, http.MethodPost, "/applications", body)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "developer <developerId> <right|left>",
		Short: "Request or decline a connection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"targetId": args[0], "direction": args[1]}
			return mutate[connection.Connection](cmd, rootOpts, http.MethodPost, "/connections", body)
		},
	})
	return cmd
}

func NewActCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "act <developerId> <jobId> <action>",
		Short: "Apply a pipeline action to an application",
		Long: `Apply a pipeline action to an application.

Companies: advance, reject, hire, revert.
Developers: withdraw, reapply, apply, reject, delete.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"developerId": args[0], "jobId": args[1], "action": args[2]}
			return mutate[application.Application](cmd, rootOpts, http.MethodPut, "/applications", body)
		},
	}
}

func NewRespondCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "respond <developerId> <accept|reject|cancelRequest>",
		Short: "Answer or cancel a connection request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"targetId": args[0], "action": args[1]}
			return mutate[connection.Connection](cmd, rootOpts, http.MethodPut, "/connections", body)
		},
	}
}

func mutate[T any](cmd *cobra.Command, opts *RootOptions, method, path string, body any) error {
	var raw json.RawMessage
	status, err := opts.client().Do(cmd.Context(), method, path, nil, body, &raw)
	if err != nil {
		return err
	}
	result, err := decodeMutation[T](status, raw)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), opts.Format, result)
}
