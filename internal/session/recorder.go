package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mj1618/ai-testing-tool/internal/device"
	"github.com/mj1618/ai-testing-tool/internal/imaging"
	"github.com/mj1618/ai-testing-tool/internal/model"
)

// State is one captured device state and where it was written.
type State struct {
	Label string

	XMLPath  string
	YAMLPath string
	PNGPath  string
	JPEGPath string

	Snapshot    *model.Snapshot
	Semantic    string // Semantic YAML sent to the model
	ImageBase64 string // Prepared JPEG
}

// Recorder writes artifacts into one task directory. Every write replaces the
// whole file.
type Recorder struct {
	dir    string
	images imaging.Options
	logger *zap.Logger
}

func NewRecorder(dir string, images imaging.Options, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{dir: dir, images: images, logger: logger}
}

// Dir is the task directory.
func (r *Recorder) Dir() string { return r.dir }

// WriteTask writes the task definition to task.json.
func (r *Recorder) WriteTask(task interface{}) error {
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return r.write("task.json", data)
}

// Capture reads the page source and screenshot from sess and writes
// {label}.xml, {label}.yaml, {label}.png and {label}.jpg.
func (r *Recorder) Capture(ctx context.Context, sess device.Session, label string) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source, err := sess.PageSource()
	if err != nil {
		return nil, fmt.Errorf("read page source: %w", err)
	}
	snap, err := model.Normalize(source)
	if err != nil {
		return nil, fmt.Errorf("normalize page source: %w", err)
	}
	state := &State{
		Label:    label,
		XMLPath:  r.path(label + ".xml"),
		YAMLPath: r.path(label + ".yaml"),
		PNGPath:  r.path(label + ".png"),
		JPEGPath: r.path(label + ".jpg"),
		Snapshot: snap,
		Semantic: snap.SemanticYAML,
	}
	if err := r.write(label+".xml", []byte(snap.FilteredXML)); err != nil {
		return nil, err
	}
	if err := r.write(label+".yaml", []byte(snap.SemanticYAML)); err != nil {
		return nil, err
	}

	raw, err := sess.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("take screenshot: %w", err)
	}
	if err := r.write(label+".png", raw); err != nil {
		return nil, err
	}
	prepared, err := imaging.Prepare(raw, r.images)
	if err != nil {
		return nil, fmt.Errorf("prepare screenshot: %w", err)
	}
	if err := r.write(label+".jpg", prepared.JPEG); err != nil {
		return nil, err
	}
	state.ImageBase64 = prepared.Base64

	r.logger.Debug("captured state",
		zap.String("label", label),
		zap.Int("width", prepared.Width),
		zap.Int("height", prepared.Height))
	return state, nil
}

// WritePrompt writes step_{n}_prompt.md.
func (r *Recorder) WritePrompt(step int, text string) error {
	return r.write(fmt.Sprintf("step_%d_prompt.md", step), []byte(text))
}

// WriteOutcome writes step_{n}.json.
func (r *Recorder) WriteOutcome(step int, outcome interface{}) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	return r.write(fmt.Sprintf("step_%d.json", step), data)
}

// StepLabel is the artifact prefix of step n.
func StepLabel(n int) string {
	return fmt.Sprintf("step_%d", n)
}

func (r *Recorder) path(name string) string {
	return filepath.Join(r.dir, name)
}

func (r *Recorder) write(name string, data []byte) error {
	if err := os.WriteFile(r.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
