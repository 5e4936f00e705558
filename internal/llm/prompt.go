// Package llm asks a language model for the next test action.
package llm

import "strings"

// Request is everything the model sees for one step.
type Request struct {
	System      string   // Instructions loaded from the prompt file
	Task        string   // Task details
	History     []string // Serialized outcomes of previous steps, oldest first
	PageSource  string   // Semantic YAML of the current screen
	ImageBase64 string   // Prepared JPEG screenshot
}

// Sections returns the three text sections sent with every request.
func Sections(req Request) []string {
	return []string{
		"# Task \n " + req.Task,
		"# History of Actions \n " + strings.Join(req.History, "\n"),
		"# Source of Page \n ```yaml\n " + req.PageSource + " \n```",
	}
}

// Prompt joins the sections the way they are persisted for each step.
func Prompt(req Request) string {
	return strings.Join(Sections(req), "\n")
}

// ImageDataURL returns the screenshot as an inline JPEG data URL.
func (r Request) ImageDataURL() string {
	return "data:image/jpeg;base64," + r.ImageBase64
}
