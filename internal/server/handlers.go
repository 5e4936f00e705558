package server

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/ai-testing-tool/internal/imaging"
	"github.com/mj1618/ai-testing-tool/internal/model"
	"github.com/mj1618/ai-testing-tool/internal/session"
)

// ActResult is the YAML answer of the act tool.
type ActResult struct {
	Step    int                    `yaml:"step"`
	Outcome map[string]interface{} `yaml:"outcome"`
	Stopped string                 `yaml:"stopped,omitempty"`
	Changes *ChangeSummary         `yaml:"changes,omitempty"`
}

// ChangeSummary counts how the screen changed after an action.
type ChangeSummary struct {
	Added     int `yaml:"added"`
	Removed   int `yaml:"removed"`
	Changed   int `yaml:"changed"`
	Unchanged int `yaml:"unchanged"`
}

func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

// readSnapshot reads and normalizes the current screen. The caller must hold
// sessionMu.
func (s *Server) readSnapshot() (*model.Snapshot, error) {
	source, err := s.sess.PageSource()
	if err != nil {
		return nil, err
	}
	return model.Normalize(source)
}

func (s *Server) handleReadScreen(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	flat := request.GetBool("flat", false)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	snap, err := s.cache.Get(s.readSnapshot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.last = snap

	if flat {
		return mcp.NewToolResultText(toText(model.Interactive(model.FlattenNodes(snap.Root)))), nil
	}
	return mcp.NewToolResultText(snap.SemanticYAML), nil
}

func (s *Server) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := s.images
	if grid := request.GetInt("grid", 0); grid > 0 {
		opts.GridSize = grid
	}

	s.sessionMu.Lock()
	raw, err := s.sess.Screenshot()
	s.sessionMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	prepared, err := imaging.Prepare(raw, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(prepared.JPEG),
				MIMEType: "image/jpeg",
			},
		},
	}, nil
}

// handleAct executes one action, records it as the next step and
// invalidates the cache.
func (s *Server) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	s.step++
	step := s.step
	res, err := s.exec.Execute(ctx, raw, session.StepLabel(step))
	s.cache.Invalidate()
	if err != nil {
		s.logger.Error("act failed", zap.Int("step", step), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.rec.WriteOutcome(step, res.Outcome); err != nil {
		s.logger.Warn("record outcome", zap.Int("step", step), zap.Error(err))
	}
	s.metrics.StepExecuted(res.Outcome.Action(), res.Outcome.Result())

	out := ActResult{Step: step, Outcome: res.Outcome}
	if !res.Continuing() {
		out.Stopped = res.Reason.String()
	}
	if res.State != nil {
		if s.last != nil {
			diff := model.DiffNodes(model.FlattenNodes(s.last.Root), model.FlattenNodes(res.State.Snapshot.Root))
			out.Changes = &ChangeSummary{
				Added:     len(diff.Added),
				Removed:   len(diff.Removed),
				Changed:   len(diff.Changed),
				Unchanged: diff.UnchangedCount,
			}
		}
		s.last = res.State.Snapshot
		s.cache.Put(res.State.Snapshot)
	}
	s.logger.Info("act", zap.Int("step", step), zap.String("action", res.Outcome.Action()), zap.String("result", res.Outcome.Result()))
	return mcp.NewToolResultText(toText(out)), nil
}
