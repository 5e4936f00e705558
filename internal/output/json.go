package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// PrintJSON serializes v to stdout as JSON.
// If pretty is true, uses indentation; otherwise single-line.
func PrintJSON(v interface{}, pretty bool) error {
	return WriteJSON(os.Stdout, v, pretty)
}

// WriteJSON serializes v to w as JSON without HTML escaping.
func WriteJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}
