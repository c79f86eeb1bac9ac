package generation

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

// Templates renders prompt messages from a template set. Each prompt NAME
// defines two templates: "NAME.system" and "NAME.user".
type Templates struct {
	tmpl *template.Template
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

// ParseTemplates parses every file in fsys matching patterns.
func ParseTemplates(fsys fs.FS, patterns ...string) (*Templates, error) {
	t, err := template.New("prompts").Funcs(templateFuncs).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt templates: %v", ErrInvalidConfig, err)
	}
	return &Templates{tmpl: t}, nil
}

// Messages renders the system and user messages of the named prompt.
// A prompt without a system template yields only the user message.
func (t *Templates) Messages(name string, data any) ([]Message, error) {
	var msgs []Message

	if t.tmpl.Lookup(name+".system") != nil {
		system, err := t.render(name+".system", data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}

	user, err := t.render(name+".user", data)
	if err != nil {
		return nil, err
	}
	if user == "" {
		return nil, fmt.Errorf("prompt %s rendered empty", name)
	}
	return append(msgs, Message{Role: RoleUser, Content: user}), nil
}

func (t *Templates) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
