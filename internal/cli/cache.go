package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kemeny/internal/config"
	"github.com/matzehuels/kemeny/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == config.BackendNone {
				printInfo("Caching is disabled")
				return nil
			}
			cc, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printWarning("The %s backend cannot be cleared", c.Config.Cache.Backend)
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %s cache", c.Config.Cache.Backend)
			printDetail("%s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached results are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory, a redis
// address, or "disabled".
func (c *CLI) cacheLocation() string {
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return "disabled"
	case config.BackendRedis:
		r := c.Config.Cache.Redis
		return fmt.Sprintf("redis://%s/%d (prefix %q)", r.Addr, r.DB, r.Prefix)
	}
	dir, err := cacheDir(c.Config.Cache.Dir)
	if err != nil {
		return "unavailable: " + err.Error()
	}
	return dir
}
