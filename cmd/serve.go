package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/ai-testing-tool/internal/device"
	"github.com/mj1618/ai-testing-tool/internal/metrics"
	"github.com/mj1618/ai-testing-tool/internal/observability"
	"github.com/mj1618/ai-testing-tool/internal/server"
	"github.com/mj1618/ai-testing-tool/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the device",
	Long: `Start a Model Context Protocol (MCP) server that exposes the device as tools:
read_screen, screenshot and act. Acted steps are recorded under
{reports}/mcp/{timestamp}/.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport on /mcp, with /metrics

Examples:
  ai-testing-tool serve
  ai-testing-tool serve --transport streamable-http --port 8080
  ai-testing-tool serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("appium", "http://localhost:4723", "Appium server URL")
	serveCmd.Flags().String("reports", "./reports", "Folder to store acted steps")
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Screen cache TTL in milliseconds (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	cfg := appConfig
	logger := observability.GetLogger()

	srvCfg := server.Config{
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
	}

	dir, err := session.NewTaskDir(cfg.Reports.Dir, "mcp", time.Now())
	if err != nil {
		return err
	}
	sess, err := openSession(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer sess.Quit()

	keepAlive := device.StartKeepAlive(cmd.Context(), sess, cfg.Appium.KeepAliveInterval, logger.Named("keepalive"))
	defer keepAlive.Stop()

	rec := session.NewRecorder(dir, imagingOptions(cfg), logger)
	srv := server.New(sess, rec, imagingOptions(cfg), srvCfg.CacheTTL,
		server.WithMetrics(metrics.New()),
		server.WithLogger(logger),
	)
	if err := srv.Serve(srvCfg); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
