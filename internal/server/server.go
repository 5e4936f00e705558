// Package server exposes a device session as Model Context Protocol tools.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mj1618/ai-testing-tool/internal/action"
	"github.com/mj1618/ai-testing-tool/internal/device"
	"github.com/mj1618/ai-testing-tool/internal/imaging"
	"github.com/mj1618/ai-testing-tool/internal/metrics"
	"github.com/mj1618/ai-testing-tool/internal/model"
	"github.com/mj1618/ai-testing-tool/internal/session"
	"github.com/mj1618/ai-testing-tool/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the device session and cache.
type Server struct {
	sess    device.Session
	rec     *session.Recorder
	exec    *action.Executor
	cache   *SnapshotCache
	images  imaging.Options
	metrics *metrics.Metrics
	logger  *zap.Logger

	execOpts []action.Option

	sessionMu sync.Mutex
	step      int
	last      *model.Snapshot

	mcp *mcpserver.MCPServer
}

// Option configures a Server.
type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option { return func(s *Server) { s.metrics = m } }
func WithLogger(l *zap.Logger) Option       { return func(s *Server) { s.logger = l } }

// WithExecutorOptions passes options to the action executor.
func WithExecutorOptions(opts ...action.Option) Option {
	return func(s *Server) { s.execOpts = append(s.execOpts, opts...) }
}

// New creates an MCP server over sess. Acted steps are recorded by rec.
func New(sess device.Session, rec *session.Recorder, images imaging.Options, cacheTTL time.Duration, opts ...Option) *Server {
	s := &Server{
		sess:   sess,
		rec:    rec,
		cache:  NewSnapshotCache(cacheTTL),
		images: images,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("mcp")
	s.exec = action.NewExecutor(sess, rec, s.logger.Named("executor"), s.execOpts...)

	s.mcp = mcpserver.NewMCPServer("ai-testing-tool", version.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve starts the MCP server with the configured transport. The HTTP
// transport also serves /metrics when metrics are enabled.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		mux := http.NewServeMux()
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.mcp))
		if s.metrics != nil {
			mux.Handle("/metrics", s.metrics.Handler())
		}
		addr := fmt.Sprintf(":%d", cfg.Port)
		s.logger.Info("listening", zap.String("addr", addr))
		err := http.ListenAndServe(addr, mux)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("read_screen",
			mcp.WithDescription("Read the current Android screen as a YAML tree of allow-listed attributes (class, text, resource-id, content-desc, clickable, scrollable, bounds)."),
			mcp.WithBoolean("flat", mcp.Description("Return a flat list of clickable or scrollable nodes instead of the tree")),
		),
		s.handleReadScreen,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the screen as a resized JPEG"),
			mcp.WithNumber("grid", mcp.Description("Overlay a labelled coordinate grid with this cell size in pixels")),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("act",
			mcp.WithDescription(`Perform one action on the device. The argument is an action object such as {"action":"tap","bounds":"[0,0][100,100]"}, {"action":"input","xpath":"//android.widget.EditText","value":"hi"}, {"action":"swipe","swipe_start_x":500,"swipe_start_y":1500,"swipe_end_x":500,"swipe_end_y":500,"duration":300} or {"action":"wait","timeout":1000}.`),
			mcp.WithString("action", mcp.Description("Action object as JSON"), mcp.Required()),
		),
		s.handleAct,
	)
}
