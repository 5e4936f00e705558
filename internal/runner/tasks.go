// Package runner drives the capture, decide and act loop over a task list.
package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoTasks is returned for a task file without tasks.
var ErrNoTasks = errors.New("no tasks")

// TaskSpec is one entry of the task file.
type TaskSpec struct {
	Name    string `json:"name"    yaml:"name"`
	Details string `json:"details" yaml:"details"`
	Skip    bool   `json:"skip"    yaml:"skip"`
}

// LoadTasks reads a JSON array of tasks, or a YAML list when the file ends in
// .yaml or .yml.
func LoadTasks(path string) ([]TaskSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}

	var tasks []TaskSpec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &tasks)
	default:
		err = json.Unmarshal(data, &tasks)
	}
	if err != nil {
		return nil, fmt.Errorf("parse tasks %s: %w", path, err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoTasks)
	}
	for i, task := range tasks {
		if strings.TrimSpace(task.Name) == "" {
			return nil, fmt.Errorf("task %d: name is required", i+1)
		}
		if strings.ContainsAny(task.Name, `/\`) || task.Name == "." || task.Name == ".." {
			return nil, fmt.Errorf("task %d: name %q is not a valid folder name", i+1, task.Name)
		}
	}
	return tasks, nil
}

// LoadPrompt reads the system prompt file.
func LoadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return string(data), nil
}
