package output

import (
	"fmt"

	"github.com/mj1618/ai-testing-tool/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use yaml or json)", s)
	}
}

// SnapshotResult is the output of the `snapshot` command.
type SnapshotResult struct {
	TS       int64            `yaml:"ts"                 json:"ts"`
	Semantic string           `yaml:"semantic,omitempty" json:"semantic,omitempty"`
	Nodes    []model.FlatNode `yaml:"nodes,omitempty"    json:"nodes,omitempty"`
	XMLPath  string           `yaml:"xml,omitempty"      json:"xml,omitempty"`
}

// ScreenshotResult is the output of the `screenshot` command.
type ScreenshotResult struct {
	Path   string `yaml:"path"   json:"path"`
	Width  int    `yaml:"width"  json:"width"`
	Height int    `yaml:"height" json:"height"`
	Bytes  int    `yaml:"bytes"  json:"bytes"`
}

// TaskSummary is one task's entry in RunResult.
type TaskSummary struct {
	Name   string `yaml:"name"            json:"name"`
	Status string `yaml:"status"          json:"status"`
	Steps  int    `yaml:"steps"           json:"steps"`
	Dir    string `yaml:"dir,omitempty"   json:"dir,omitempty"`
	Error  string `yaml:"error,omitempty" json:"error,omitempty"`
}

// RunResult is the output of the `run` command.
type RunResult struct {
	Tasks []TaskSummary `yaml:"tasks" json:"tasks"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		return PrintJSON(v, PrettyOutput)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}
