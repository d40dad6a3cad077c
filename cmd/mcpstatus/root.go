package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taoyao-code/mcp-status/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/mcp-status/internal/config"
	"github.com/taoyao-code/mcp-status/internal/logging"
	"github.com/taoyao-code/mcp-status/internal/render"
)

// cli 命令行共享状态
type cli struct {
	configPath string
}

// newRootCommand 创建根命令
func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "mcpstatus",
		Short:         "Health endpoint poller and status service for MCP servers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $MCPSTATUS_CONFIG or ./configs/example.yaml)")

	root.AddCommand(c.serveCommand(), c.watchCommand())
	return root
}

// setup 加载配置并初始化日志
func (c *cli) setup() (*cfgpkg.Config, *zap.Logger, error) {
	cfg, err := cfgpkg.Load(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve /health and /status, optionally polling an upstream endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := c.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return bootstrap.Serve(cmd.Context(), cfg, logger)
		},
	}
}

func (c *cli) watchCommand() *cobra.Command {
	var (
		endpoint string
		interval time.Duration
		output   string
		noColor  bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll a health endpoint and print each snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := render.ParseFormat(output)
			if err != nil {
				return err
			}
			cfg, logger, err := c.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if endpoint != "" {
				cfg.Poller.Endpoint = endpoint
			}
			if cmd.Flags().Changed("interval") {
				cfg.Poller.Interval = interval
			}
			return bootstrap.Watch(cmd.Context(), cfg, cmd.OutOrStdout(), format, noColor, logger)
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "health endpoint URL (overrides poller.endpoint)")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "poll interval (overrides poller.interval)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
