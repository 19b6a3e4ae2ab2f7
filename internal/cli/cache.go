package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/releasestats/pkg/cache"
	apperrors "github.com/matzehuels/releasestats/pkg/errors"
	"github.com/matzehuels/releasestats/pkg/integrations/github"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached release pages",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <repo_name>",
		Short: "Remove the cached release pages of a repository",
		Args:  usageArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := args[0]
			if err := github.ValidateRepo(repo); err != nil {
				return err
			}
			ctx := cmd.Context()
			if c.opts.redisURL != "" {
				return c.clearRedis(cmd, repo)
			}

			store, err := cache.NewFileStore(c.opts.cacheDir, c.opts.cacheTTL)
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeFilesystem, err, "open cache")
			}
			keys, err := store.Glob(github.PageKeyPattern(repo))
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeFilesystem, err, "list cache")
			}
			if len(keys) == 0 {
				printInfo("No cached pages for %s", repo)
				return nil
			}

			count := 0
			for _, key := range keys {
				if err := store.Delete(ctx, key); err != nil {
					loggerFromContext(ctx).Warn("remove cache entry", "key", key, "err", err)
					continue
				}
				count++
			}
			printSuccess("Cleared %d cached pages", count)
			printDetail("Directory: %s", store.Dir())
			return nil
		},
	}
}

// clearRedis deletes cached pages of repo one page at a time until a page
// is missing, mirroring how pages are fetched.
func (c *CLI) clearRedis(cmd *cobra.Command, repo string) error {
	ctx := cmd.Context()
	store, err := cache.NewRedisStore(ctx, c.opts.redisURL, c.opts.cacheTTL)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect redis")
	}
	defer store.Close()

	count := 0
	for page := github.FirstPage; ; page++ {
		key := github.PageKey(repo, page)
		if ok, err := store.IsFresh(ctx, key); err != nil || !ok {
			break
		}
		if err := store.Delete(ctx, key); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "delete %s", key)
		}
		count++
	}
	printSuccess("Cleared %d cached pages", count)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.opts.cacheDir
			if dir == "" {
				dir = cache.DefaultDir
			}
			if _, err := os.Stat(dir); err != nil {
				return apperrors.Wrap(apperrors.ErrCodeFilesystem, err, "cache directory")
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
