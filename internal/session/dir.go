// Package session persists the per-step artifacts of a test task.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout names a task directory after its start time.
const TimestampLayout = "2006-01-02-15-04-05"

// maxCollisions bounds the -N suffix search.
const maxCollisions = 1000

// NewTaskDir creates {root}/{name}/{timestamp}. When that directory already
// exists a -N suffix is appended.
func NewTaskDir(root, name string, now time.Time) (string, error) {
	if name == "" {
		return "", fmt.Errorf("task name is empty")
	}
	parent := filepath.Join(root, name)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("create task folder: %w", err)
	}
	base := filepath.Join(parent, now.Format(TimestampLayout))
	dir := base
	for i := 1; i <= maxCollisions; i++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("create task folder: %w", err)
		}
		dir = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("create task folder: too many runs of %q at %s", name, now.Format(TimestampLayout))
}
