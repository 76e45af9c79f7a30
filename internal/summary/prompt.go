package summary

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"
)

//go:embed prompt.tmpl
var defaultPrompt string

var promptFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// Prompt renders task lists into model input.
type Prompt struct {
	tmpl *template.Template
}

type promptData struct {
	Tasks []TaskDigest
}

// DefaultPrompt returns the built-in prompt.
func DefaultPrompt() *Prompt {
	return &Prompt{tmpl: template.Must(template.New("summary").Funcs(promptFuncs).Parse(defaultPrompt))}
}

// LoadPrompt reads a prompt template from path. An empty path selects the
// built-in prompt. Templates receive .Tasks and may call inc.
func LoadPrompt(path string) (*Prompt, error) {
	if path == "" {
		return DefaultPrompt(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v", ErrInvalidConfig, path, err)
	}
	tmpl, err := template.New("summary").Funcs(promptFuncs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

// Render executes the template for tasks.
func (p *Prompt) Render(tasks []TaskDigest) (string, error) {
	if len(tasks) == 0 {
		return "", ErrNoTasks
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, promptData{Tasks: tasks}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
