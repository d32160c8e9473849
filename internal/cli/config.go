package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xs3fo/ddeponpm/pkg/config"
)

// configCommand creates the "config" subcommand, which prints the effective
// configuration after files, .env and environment are applied.
func (c *CLI) configCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			dir, _ := cacheDir(cfg)

			printKeyValue("registry", cfg.Registry.URL)
			printKeyValue("github api", cfg.GitHub.APIURL)
			printKeyValue("token", maskToken(cfg.GitHub.Token))
			printKeyValue("concurrency", fmt.Sprint(cfg.Crawl.Concurrency))
			printKeyValue("history", fmt.Sprintf("%d days, %d commits max", cfg.Crawl.HistoryDays, cfg.Crawl.MaxCommits))
			printKeyValue("cache", fmt.Sprintf("%s (enabled: %t, ttl: %s)", dir, cfg.Cache.Enabled, cfg.Cache.TTL.Duration))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ./"+config.FileName+")")
	return cmd
}

// maskToken hides all but the last four characters of a token.
func maskToken(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) <= 4:
		return strings.Repeat("*", len(token))
	default:
		return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
	}
}
