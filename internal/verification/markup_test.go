package verification_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"

	"matifood/internal/verification"
)

func TestScriptSetEmitsScriptOnce(t *testing.T) {
	set := verification.NewScriptSet("https://www.google.com/recaptcha/api.js?render=explicit")
	out, err := verification.RenderHTML(g.Group([]g.Node{
		set.Widget("contact-captcha", "site-key"),
		set.Widget("newsletter-captcha", "site-key"),
	}))
	require.NoError(t, err)

	s := string(out)
	assert.Equal(t, 1, strings.Count(s, "<script"))
	assert.Contains(t, s, `id="contact-captcha"`)
	assert.Contains(t, s, `id="newsletter-captcha"`)
	assert.Contains(t, s, `data-sitekey="site-key"`)
	assert.Contains(t, s, `data-state="unloaded"`)
	assert.Contains(t, s, "Verification is unavailable")
}

func TestScriptSetWithoutSource(t *testing.T) {
	out, err := verification.RenderHTML(verification.NewScriptSet("").Widget("c", "k"))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script")
}
