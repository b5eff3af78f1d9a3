// Package cli provides the command-line interface of the documentation browser.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/spf13/cobra"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/adapters/fetcher"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/adapters/storage"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/aggregation"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/cache"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/config"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/routes"
)

// CLI holds the command-line interface configuration.
type CLI struct {
	log     logger.ILogger
	cfg     config.Config
	rootCmd *cobra.Command

	// newFetcher is replaced in tests.
	newFetcher func(cfg config.Config) (domain.DocumentFetcher, error)

	app *app
}

// app is the wired component graph shared by the commands of one invocation.
type app struct {
	cache     *cache.Cache
	registry  *aggregation.Registry
	api       *routes.APIContext
	generator *routes.Generator
}

// New creates a new CLI instance. Flags override the loaded configuration.
func New(log logger.ILogger, cfg *config.Config) *CLI {
	c := &CLI{
		log:        log,
		cfg:        config.Defaults(),
		newFetcher: newRouter,
	}
	if cfg != nil {
		c.cfg = *cfg
	}

	c.rootCmd = &cobra.Command{
		Use:           "nextdoc",
		Short:         "Browse OpenAPI documents and aggregated service documentation",
		Long:          "A CLI that groups OpenAPI operations into a navigation tree, resolves schemas, probes aggregated services and exports the documentation to PDF, Word (DOCX) or Confluence.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.setupFlags()
	c.rootCmd.AddCommand(
		c.menuCommand(),
		c.operationCommand(),
		c.entityCommand(),
		c.markdownCommand(),
		c.servicesCommand(),
		c.switchCommand(),
		c.tabsCommand(),
		c.resetCommand(),
		c.exportCommand(),
	)

	return c
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()
	flags.StringVar(&c.cfg.BaseURL, "base-url", c.cfg.BaseURL, "Server the document paths are resolved against; empty reads local files")
	flags.StringVar(&c.cfg.DocPath, "spec", c.cfg.DocPath, "Path or URL of the primary OpenAPI document")
	flags.StringVar(&c.cfg.ConfigPath, "config-path", c.cfg.ConfigPath, "Path of the swagger-config listing groups or services")
	flags.StringVar(&c.cfg.StateFile, "state-file", c.cfg.StateFile, "File holding the selected service and tab state")
	flags.DurationVar(&c.cfg.FetchTimeout, "timeout", c.cfg.FetchTimeout, "Timeout of a single document fetch")
	flags.DurationVar(&c.cfg.ProbeTimeout, "probe-timeout", c.cfg.ProbeTimeout, "Timeout of a service availability probe")
	flags.UintVar(&c.cfg.RetryAttempts, "retries", c.cfg.RetryAttempts, "Attempts per HTTP fetch")
	flags.DurationVar(&c.cfg.RetryDelay, "retry-delay", c.cfg.RetryDelay, "Initial delay between HTTP attempts")
}

// Execute runs the CLI.
func (c *CLI) Execute() error {
	return c.rootCmd.Execute()
}

// wire builds the component graph on first use.
func (c *CLI) wire() (*app, error) {
	if c.app != nil {
		return c.app, nil
	}

	f, err := c.newFetcher(c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	statePath, err := c.statePath()
	if err != nil {
		return nil, err
	}
	store := storage.NewFileStore(statePath)

	ch := cache.New(f, store, endpoints(c.cfg), c.log, cache.WithTimeout(c.cfg.FetchTimeout))
	reg := aggregation.NewRegistry(ch, f, store, c.log, aggregation.WithProbeTimeout(c.cfg.ProbeTimeout))
	api := routes.NewAPIContext()

	c.app = &app{
		cache:     ch,
		registry:  reg,
		api:       api,
		generator: routes.NewGenerator(ch, reg, api, c.log),
	}
	return c.app, nil
}

func newRouter(cfg config.Config) (domain.DocumentFetcher, error) {
	base := cfg.BaseURL
	if base == "" {
		base = cfg.DocPath
	}
	return fetcher.NewRouter(base, fetcher.WithRetry(cfg.RetryAttempts, cfg.RetryDelay))
}

// endpoints locates the primary document and config. Without a base URL the
// document is a local file and the config is read only when one was configured.
func endpoints(cfg config.Config) cache.Endpoints {
	e := cache.Endpoints{Doc: cfg.DocPath, Config: cfg.ConfigPath}
	if cfg.BaseURL == "" && cfg.ConfigPath == config.Defaults().ConfigPath {
		e.Config = ""
	}
	return e
}

func (c *CLI) statePath() (string, error) {
	if c.cfg.StateFile != "" {
		return c.cfg.StateFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate state directory: %w", err)
	}
	return filepath.Join(dir, "nextdoc", "state.json"), nil
}
