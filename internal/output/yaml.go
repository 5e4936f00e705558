package output

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	return WriteYAML(os.Stdout, v)
}

// WriteYAML serializes v to w as YAML with two-space indentation.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
