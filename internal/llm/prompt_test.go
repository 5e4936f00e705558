package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSections(t *testing.T) {
	req := Request{
		Task:       "Log in",
		History:    []string{`{"action":"tap","result":"success"}`, `{"action":"wait","result":"success"}`},
		PageSource: "hierarchy: []",
	}
	got := Sections(req)
	assert.Equal(t, []string{
		"# Task \n Log in",
		"# History of Actions \n {\"action\":\"tap\",\"result\":\"success\"}\n{\"action\":\"wait\",\"result\":\"success\"}",
		"# Source of Page \n ```yaml\n hierarchy: [] \n```",
	}, got)
}

func TestPrompt_JoinsWithNewline(t *testing.T) {
	req := Request{Task: "t", PageSource: "p"}
	assert.Equal(t, "# Task \n t\n# History of Actions \n \n# Source of Page \n ```yaml\n p \n```", Prompt(req))
}

func TestImageDataURL(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,QUJD", Request{ImageBase64: "QUJD"}.ImageDataURL())
}
