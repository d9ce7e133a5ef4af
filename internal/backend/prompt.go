package backend

import (
	"strings"
	"text/template"

	"AlgoChat/internal/problem"
)

const systemPromptText = `You are a DSA tutor helping a student with one coding problem.
Only discuss this problem: hints, approach, complexity, debugging and explanation of the solution.
Politely decline unrelated questions.
{{- with .Title}}

## Problem
{{.}}{{end}}
{{- with .Description}}

## Description
{{.}}{{end}}
{{- with .VisibleTestCases}}

## Examples
{{range $i, $tc := .}}{{if $i}}
{{end}}Input: {{$tc.Input}}
Output: {{$tc.Output}}{{with $tc.Explanation}}
Explanation: {{.}}{{end}}
{{end}}{{end}}
{{- with .StartCode}}

## Starter code
{{range .}}[{{.Language}}]
{{.InitialCode}}
{{end}}{{end}}`

const noProblemPrompt = `You are a DSA tutor helping a student with coding problems.
No problem is open yet. Answer general questions about algorithms and data structures,
and ask which problem the student is working on when it matters.`

var systemPrompt = template.Must(template.New("system").Parse(systemPromptText))

// SystemPrompt renders the tutoring instructions for a problem snapshot.
// Sections for absent fields are left out.
func SystemPrompt(snap problem.Snapshot) string {
	if snap.IsEmpty() {
		return noProblemPrompt
	}
	var b strings.Builder
	if err := systemPrompt.Execute(&b, snap); err != nil {
		// The template is fixed and the data is plain strings.
		panic(err)
	}
	return strings.TrimSpace(b.String())
}
