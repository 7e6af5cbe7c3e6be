package prompt

import (
	"testing"

	"ai-meetnotes/internal/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChatSystem(t *testing.T) {
	r := NewRenderer(constant.PromptTemplates())

	out, err := r.Render(constant.TemplateChatSystem, map[string]any{
		"session":           map[string]any{"id": "s1"},
		"words":             `[{"text":"hi"}]`,
		"title":             "Q3 planning",
		"enhancedContent":   "",
		"rawContent":        "<p>budget</p>",
		"preMeetingContent": "",
		"type":              "Local",
		"date":              "March 4, 2026, 9:30 AM",
		"participants":      []string{"Jane Doe", "Bob Stone"},
		"event":             "Planning (9:00 AM - 10:00 AM)",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Title: Q3 planning")
	assert.Contains(t, out, "Participants: Jane Doe, Bob Stone")
	assert.Contains(t, out, "Calendar event: Planning (9:00 AM - 10:00 AM)")
	assert.Contains(t, out, "<p>budget</p>")
	assert.NotContains(t, out, "AI-enhanced notes")
	assert.Contains(t, out, "March 4, 2026, 9:30 AM")
}

func TestRenderEnhance(t *testing.T) {
	r := NewRenderer(constant.PromptTemplates())

	sys, err := r.Render(constant.TemplateEnhanceSystem, map[string]any{
		"config": map[string]any{"displayLanguage": "de", "jargons": []string{"OKR", "k8s"}},
	})
	require.NoError(t, err)
	assert.Contains(t, sys, "Write in de.")
	assert.Contains(t, sys, "OKR, k8s")

	user, err := r.Render(constant.TemplateEnhanceUser, map[string]any{
		"editor":   "<p>todo</p>",
		"timeline": "[00:01] hello",
	})
	require.NoError(t, err)
	assert.Contains(t, user, "<raw_note>\n<p>todo</p>\n</raw_note>")
}

func TestRenderUnknownKey(t *testing.T) {
	_, err := NewRenderer(nil).Render("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestRenderBrokenTemplate(t *testing.T) {
	r := NewRenderer(map[string]string{"bad": "{{.title"})
	_, err := r.Render("bad", map[string]any{"title": "x"})
	assert.Error(t, err)
}
