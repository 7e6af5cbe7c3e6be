package prompt

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

var ErrUnknownTemplate = errors.New("unknown prompt template")

// Renderer formats named Go templates with langchaingo's prompt templates.
type Renderer struct {
	templates map[string]string
}

func NewRenderer(templates map[string]string) *Renderer {
	copied := make(map[string]string, len(templates))
	for k, v := range templates {
		copied[k] = v
	}
	return &Renderer{templates: copied}
}

func (r *Renderer) Render(key string, vars map[string]any) (string, error) {
	tpl, ok := r.templates[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, key)
	}

	pt := prompts.PromptTemplate{
		Template:       tpl,
		TemplateFormat: prompts.TemplateFormatGoTemplate,
	}

	out, err := pt.Format(vars)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", key, err)
	}
	return out, nil
}
