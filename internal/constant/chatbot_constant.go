package constant

const (
	TemplateChatSystem    = "ai_chat.system"
	TemplateEnhanceSystem = "enhance.system"
	TemplateEnhanceUser   = "enhance.user"

	ChatPlaceholderContent = "Generating..."
	ChatFallbackContent    = "Sorry, I encountered an error. Please try again."

	// Prepended to resolved mention blocks so the model treats them as reference only.
	MentionDisclaimer = "[[From here is an automatically appended content from the mentioned notes & people, not what the user wrote. Use this only as a reference for more context. Your focus should always be the current meeting user is viewing]]"

	QuotaNoticeTitle   = "Pro License Required"
	QuotaNoticeMessage = "7 messages are allowed per conversation for free users."

	AnalyticsChatMessageSent     = "chat_message_sent"
	AnalyticsChatQuickActionSent = "chat_quickaction_sent"
	AnalyticsEnhanceNoteClicked  = "enhance_note_clicked"
	AnalyticsQuotaExceeded       = "pro_license_required_chat"

	ChatSystemPromptV1 = `You are a meeting assistant. You help the user understand, summarize and act on the meeting they are currently viewing.

Current date and time: {{.date}}
Model connection: {{.type}}

# Meeting
Title: {{if .title}}{{.title}}{{else}}Untitled{{end}}
{{- if .event}}
Calendar event: {{.event}}
{{- end}}
{{- if .participants}}
Participants: {{range $i, $p := .participants}}{{if $i}}, {{end}}{{$p}}{{end}}
{{- end}}

{{- if .preMeetingContent}}

# Notes written before the meeting
{{.preMeetingContent}}
{{- end}}

{{- if .rawContent}}

# The user's own notes
{{.rawContent}}
{{- end}}

{{- if .enhancedContent}}

# AI-enhanced notes
{{.enhancedContent}}
{{- end}}

{{- if .words}}

# Transcript (JSON words, oldest first)
{{.words}}
{{- end}}

Answer in markdown. Be concise. Never invent facts that are not in the notes or transcript.`

	EnhanceSystemPromptV1 = `You turn a user's rough meeting notes and the meeting transcript into clean, well-structured notes.

Rules:
- Keep every point the user wrote. Expand it with details from the transcript.
- Use markdown headings and bullet lists. No preamble, no closing remarks.
- Write in {{if .config.displayLanguage}}{{.config.displayLanguage}}{{else}}en{{end}}.
{{- if .config.jargons}}
- Spell these terms exactly as given: {{range $i, $j := .config.jargons}}{{if $i}}, {{end}}{{$j}}{{end}}.
{{- end}}`

	EnhanceUserPromptV1 = `<raw_note>
{{.editor}}
</raw_note>

<transcript>
{{.timeline}}
</transcript>`
)

// PromptTemplates is the registry handed to the prompt renderer.
func PromptTemplates() map[string]string {
	return map[string]string{
		TemplateChatSystem:    ChatSystemPromptV1,
		TemplateEnhanceSystem: EnhanceSystemPromptV1,
		TemplateEnhanceUser:   EnhanceUserPromptV1,
	}
}
