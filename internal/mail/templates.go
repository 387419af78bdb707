package mail

import (
	"embed"
	"fmt"
	"sync"

	"github.com/aymerick/raymond"
)

//go:embed templates/*.hbs
var templateFS embed.FS

// Templates renders the handlebars email bodies bundled with the binary.
type Templates struct {
	mu    sync.RWMutex
	cache map[string]*raymond.Template
}

func NewTemplates() *Templates {
	return &Templates{cache: map[string]*raymond.Template{}}
}

// Render executes templates/<name>.hbs with ctx.
func (t *Templates) Render(name string, ctx map[string]any) (string, error) {
	tpl, err := t.load(name)
	if err != nil {
		return "", err
	}
	out, err := tpl.Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("mail: render %s: %w", name, err)
	}
	return out, nil
}

func (t *Templates) load(name string) (*raymond.Template, error) {
	t.mu.RLock()
	tpl, ok := t.cache[name]
	t.mu.RUnlock()
	if ok {
		return tpl, nil
	}
	src, err := templateFS.ReadFile("templates/" + name + ".hbs")
	if err != nil {
		return nil, fmt.Errorf("mail: template %s: %w", name, err)
	}
	tpl, err = raymond.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("mail: parse %s: %w", name, err)
	}
	t.mu.Lock()
	t.cache[name] = tpl
	t.mu.Unlock()
	return tpl, nil
}
