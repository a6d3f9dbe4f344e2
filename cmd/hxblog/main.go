// Command hxblog serves the blog presentation layer and runs moderation
// tasks against the GraphQL backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/hxblog/internal/config"
	"github.com/pthm/hxblog/lib/graphql"
)

const version = "0.1.0"

var envFile string

var rootCmd = &cobra.Command{
	Use:           "hxblog",
	Short:         "HTMX blog views and islands",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return config.LoadDotEnv()
		}
		return config.LoadDotEnv(envFile)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hxblog version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file (default: .env when present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(moderateCmd)
	rootCmd.AddCommand(versionCmd)
}

// newClient builds the GraphQL client shared by all commands.
func newClient(cfg *config.Config, opts ...graphql.Option) *graphql.Client {
	gcfg := graphql.DefaultConfig()
	gcfg.Endpoint = cfg.GraphQLEndpoint
	gcfg.Timeout = cfg.GraphQLTimeout
	return graphql.New(gcfg, opts...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
