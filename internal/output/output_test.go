package output

import (
	"bytes"
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestPrintYAML(t *testing.T) {
	result := RunResult{Tasks: []TaskSummary{
		{Name: "login", Status: "finished", Steps: 4, Dir: "reports/login/2024-01-01-00-00-00"},
		{Name: "skipped", Status: "skipped"},
	}}

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := PrintYAML(result)
	w.Close()
	os.Stdout = old

	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	out := buf.String()

	if bytes.Count([]byte(out), []byte("\n")) <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}

	var decoded RunResult
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded.Tasks) != 2 {
		t.Fatalf("tasks: got %d, want 2", len(decoded.Tasks))
	}
	if decoded.Tasks[0].Steps != 4 {
		t.Errorf("steps: got %d, want 4", decoded.Tasks[0].Steps)
	}
}

func TestTaskSummary_OmitEmpty(t *testing.T) {
	data, err := yaml.Marshal(TaskSummary{Name: "a", Status: "skipped"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["dir"]; ok {
		t.Error("empty dir should be omitted")
	}
	if _, ok := m["error"]; ok {
		t.Error("empty error should be omitted")
	}
	if _, ok := m["steps"]; !ok {
		t.Error("steps should always be present")
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"yaml", "json"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("agent"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPrint_UsesOutputFormat(t *testing.T) {
	defer func() { OutputFormat = FormatYAML }()
	OutputFormat = "xml"
	if err := Print(RunResult{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}
