package verification

import (
	"html/template"
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const unavailableText = "Verification is unavailable right now. Please refresh the page or try again later."

// ScriptSet renders widget markup for one page and emits the challenge
// script tag only for the first widget. Not safe for concurrent use.
type ScriptSet struct {
	src     string
	emitted bool
}

func NewScriptSet(src string) *ScriptSet {
	return &ScriptSet{src: src}
}

func (s *ScriptSet) Widget(container, siteKey string) g.Node {
	nodes := make([]g.Node, 0, 2)
	if !s.emitted && s.src != "" {
		s.emitted = true
		nodes = append(nodes, h.Script(h.Src(s.src), h.Async(), h.Defer()))
	}
	nodes = append(nodes, h.Div(
		h.ID(container),
		h.Class("recaptcha-widget"),
		h.Data("sitekey", siteKey),
		h.Data("state", StateUnloaded.String()),
		h.Div(h.Class("recaptcha-slot")),
		h.P(h.Class("recaptcha-unavailable hidden text-sm text-gray-400"), g.Text(unavailableText)),
	))
	return g.Group(nodes)
}

// RenderHTML renders a node for use inside html/template views.
func RenderHTML(n g.Node) (template.HTML, error) {
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
