package permission

import (
	"bytes"
	"text/template"
)

// defaultPromptTemplate renders a scope as plain-text worker instructions.
const defaultPromptTemplate = `Scope for worker {{.Worker}}:
{{- if .AllowedPaths}}
You may modify files matching:
{{- range .AllowedPaths}}
  - {{.}}
{{- end}}
{{- else}}
You may modify any file not explicitly denied.
{{- end}}
{{- if .DeniedPaths}}
You must NOT modify files matching:
{{- range .DeniedPaths}}
  - {{.}}
{{- end}}
{{- end}}
{{- if .AllowedCommands}}
You may run commands matching:
{{- range .AllowedCommands}}
  - {{.}}
{{- end}}
{{- end}}
These limits are advisory. Out-of-scope changes will be flagged for review.
`

// promptData contains all data available to scope prompt templates
type promptData struct {
	Worker          string
	AllowedPaths    []string
	DeniedPaths     []string
	AllowedCommands []string
}

// RenderPrompt renders the scope as instructions suitable for inclusion in
// a worker's task prompt, using the default template.
func (s *Scope) RenderPrompt() (string, error) {
	return s.RenderPromptTemplate(defaultPromptTemplate)
}

// RenderPromptTemplate renders the scope through a custom Go text template.
func (s *Scope) RenderPromptTemplate(tmplStr string) (string, error) {
	tmpl, err := template.New("scope-prompt").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	data := promptData{
		Worker:          s.worker,
		AllowedPaths:    s.raw.AllowedPaths,
		DeniedPaths:     s.raw.DeniedPaths,
		AllowedCommands: s.raw.AllowedCommands,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
