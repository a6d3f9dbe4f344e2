package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm/hxblog/internal/config"
	"github.com/pthm/hxblog/lib/blog"
	"github.com/pthm/hxblog/lib/graphql"
)

var moderateToken string

var moderateCmd = &cobra.Command{
	Use:   "moderate <commentId> <approved|rejected>",
	Short: "Approve or reject a pending comment",
	Long: `Set the moderation status of a comment.

The CSRF token is taken from --token, then CSRF_TOKEN and the other
environment variants the islands accept.`,
	Args: cobra.ExactArgs(2),
	RunE: runModerate,
}

func init() {
	moderateCmd.Flags().StringVar(&moderateToken, "token", "", "CSRF token sent to the backend")
}

func runModerate(cmd *cobra.Command, args []string) error {
	status, ok := blog.ParseModeration(args[1])
	if !ok {
		return fmt.Errorf("invalid status %q: want approved or rejected", args[1])
	}

	cfg := &config.Config{}
	if err := config.Load(cfg); err != nil {
		return err
	}

	client := newClient(cfg, graphql.WithTokenSource(graphql.Chain(
		graphql.StaticToken(moderateToken),
		graphql.EnvToken(),
	)))
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	receipt, err := blog.NewService(client, nil).ModerateComment(ctx, args[0], status)
	if err != nil {
		return fmt.Errorf("moderate %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "comment %s is now %s", receipt.UUID, receipt.Status)
	if receipt.Message != "" {
		fmt.Fprintf(cmd.OutOrStdout(), ": %s", receipt.Message)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
