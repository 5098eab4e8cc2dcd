// Package render converts question prompt/option Markdown to sanitized
// HTML for the illustrative HTTP boundary only (SPEC_FULL.md §4.1b); it
// never feeds back into scoring. Grounded on the teacher's use of
// gomarkdown/markdown plus microcosm-cc/bluemonday's UGC policy.
package render

import (
	"github.com/gomarkdown/markdown"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// ToHTML renders Markdown text to sanitized HTML.
func ToHTML(text string) string {
	unsafe := markdown.ToHTML([]byte(text), nil, nil)
	return string(policy.SanitizeBytes(unsafe))
}

// Question is the sanitized, render-ready shape of a recommended question
// for display in a browser client.
type Question struct {
	QuestionID  string
	PromptHTML  string
	OptionsHTML [4]string
}

// Render converts a question's prompt and options to sanitized HTML.
func Render(qid, prompt string, options [4]string) Question {
	var rendered [4]string
	for i, opt := range options {
		rendered[i] = ToHTML(opt)
	}
	return Question{
		QuestionID:  qid,
		PromptHTML:  ToHTML(prompt),
		OptionsHTML: rendered,
	}
}
