package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/ai-testing-tool/internal/action"
	"github.com/mj1618/ai-testing-tool/internal/config"
	"github.com/mj1618/ai-testing-tool/internal/device"
	"github.com/mj1618/ai-testing-tool/internal/imaging"
	"github.com/mj1618/ai-testing-tool/internal/llm"
	"github.com/mj1618/ai-testing-tool/internal/metrics"
	"github.com/mj1618/ai-testing-tool/internal/model"
	"github.com/mj1618/ai-testing-tool/internal/session"
)

// Task statuses reported by Run.
const (
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
	StatusMaxSteps = "max_steps"
)

// Report summarizes one task.
type Report struct {
	Name   string
	Status string // StatusSkipped, StatusFailed, StatusMaxSteps or a stop reason
	Steps  int
	Dir    string
	Err    error
}

// Runner executes tasks one after another, each on a fresh device session.
type Runner struct {
	factory device.Factory
	decider llm.Decider
	prompt  string
	cfg     config.Config
	caps    device.Capabilities

	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
	sleep   action.SleepFunc
}

// Option configures a Runner.
type Option func(*Runner)

func WithMetrics(m *metrics.Metrics) Option { return func(r *Runner) { r.metrics = m } }
func WithLogger(l *zap.Logger) Option       { return func(r *Runner) { r.logger = l } }

// WithClock sets the clock used to name task folders.
func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

// WithSleep replaces the settle and wait timer.
func WithSleep(fn action.SleepFunc) Option { return func(r *Runner) { r.sleep = fn } }

// WithCapabilities overrides the default session capabilities.
func WithCapabilities(caps device.Capabilities) Option {
	return func(r *Runner) { r.caps = caps }
}

func New(factory device.Factory, decider llm.Decider, prompt string, cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		factory: factory,
		decider: decider,
		prompt:  prompt,
		cfg:     cfg,
		caps:    device.DefaultCapabilities(),
		logger:  zap.NewNop(),
		now:     time.Now,
		sleep:   action.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("runner")
	return r
}

// Run executes every task in order. A task that fails does not stop the
// run; all task errors are joined into the returned error.
func (r *Runner) Run(ctx context.Context, tasks []TaskSpec) ([]Report, error) {
	var (
		reports []Report
		errs    []error
	)
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report := r.runTask(ctx, task)
		if report.Err != nil {
			r.logger.Error("task failed", zap.String("task", task.Name), zap.Error(report.Err))
			errs = append(errs, fmt.Errorf("task %s: %w", task.Name, report.Err))
		}
		if report.Status != StatusSkipped {
			r.metrics.TaskFinished(report.Status)
		}
		reports = append(reports, report)
	}

	if path := r.cfg.Reports.MetricsFile; path != "" && r.metrics != nil {
		if err := r.metrics.WriteFile(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return reports, errors.Join(errs...)
}

func (r *Runner) runTask(ctx context.Context, task TaskSpec) Report {
	report := Report{Name: task.Name}
	logger := r.logger.With(zap.String("task", task.Name))
	if task.Skip {
		logger.Info("skip")
		report.Status = StatusSkipped
		return report
	}

	fail := func(err error) Report {
		report.Status = StatusFailed
		report.Err = err
		return report
	}

	dir, err := session.NewTaskDir(r.cfg.Reports.Dir, task.Name, r.now())
	if err != nil {
		return fail(err)
	}
	report.Dir = dir
	rec := session.NewRecorder(dir, r.imagingOptions(), logger)
	if err := rec.WriteTask(task); err != nil {
		return fail(err)
	}

	sess, err := r.factory.NewSession(ctx, device.Options{
		URL:          r.cfg.Appium.URL,
		Capabilities: r.caps,
		ImplicitWait: r.cfg.Appium.ImplicitWait,
	})
	if err != nil {
		return fail(fmt.Errorf("open device session: %w", err))
	}
	defer func() {
		if err := sess.Quit(); err != nil {
			logger.Warn("quit session", zap.Error(err))
		}
	}()

	keepAlive := device.StartKeepAlive(ctx, sess, r.cfg.Appium.KeepAliveInterval, r.logger.Named("keepalive"))
	defer keepAlive.Stop()

	if err := r.sleep(ctx, r.cfg.Appium.SettleDelay); err != nil {
		return fail(err)
	}
	state, err := rec.Capture(ctx, sess, session.StepLabel(0))
	if err != nil {
		return fail(err)
	}

	exec := action.NewExecutor(sess, rec, r.logger.Named("executor"), action.WithSleep(r.sleep))
	history := &session.History{}
	logger.Info("start", zap.String("dir", dir))

	for step := 1; ; step++ {
		if limit := r.cfg.Run.MaxSteps; limit > 0 && step > limit {
			logger.Warn("step limit reached", zap.Int("max_steps", limit))
			report.Status = StatusMaxSteps
			return report
		}

		req := llm.Request{
			System:      r.prompt,
			Task:        task.Details,
			History:     history.Entries(),
			PageSource:  state.Semantic,
			ImageBase64: state.ImageBase64,
		}
		if err := rec.WritePrompt(step, llm.Prompt(req)); err != nil {
			return fail(err)
		}

		started := time.Now()
		raw, err := r.decider.Decide(ctx, req)
		r.metrics.ObserveDecision(time.Since(started))
		if err != nil {
			return fail(fmt.Errorf("step %d: decide: %w", step, err))
		}
		logger.Info(fmt.Sprintf("%d: %s", step, raw))

		res, err := exec.Execute(ctx, raw, session.StepLabel(step))
		if err != nil {
			return fail(fmt.Errorf("step %d: %w", step, err))
		}
		if err := rec.WriteOutcome(step, res.Outcome); err != nil {
			return fail(err)
		}
		history.Append(res.Outcome.String())
		r.metrics.StepExecuted(res.Outcome.Action(), res.Outcome.Result())
		report.Steps = step

		if !res.Continuing() {
			logger.Info("stop", zap.Stringer("reason", res.Reason), zap.String("result", res.Outcome.Result()))
			report.Status = res.Reason.String()
			return report
		}
		r.logChanges(logger, state, res.State)
		state = res.State
	}
}

// logChanges logs how the screen changed between two steps.
func (r *Runner) logChanges(logger *zap.Logger, prev, curr *session.State) {
	if ce := logger.Check(zap.DebugLevel, "screen changes"); ce != nil {
		diff := model.DiffNodes(model.FlattenNodes(prev.Snapshot.Root), model.FlattenNodes(curr.Snapshot.Root))
		ce.Write(
			zap.Int("added", len(diff.Added)),
			zap.Int("removed", len(diff.Removed)),
			zap.Int("changed", len(diff.Changed)),
			zap.Int("unchanged", diff.UnchangedCount))
	}
}

func (r *Runner) imagingOptions() imaging.Options {
	return imaging.Options{
		MaxLong:  r.cfg.Screenshot.MaxLong,
		MaxShort: r.cfg.Screenshot.MaxShort,
		Quality:  r.cfg.Screenshot.Quality,
		GridSize: r.cfg.Screenshot.GridSize,
	}
}
