// Package prompt renders a validated generation request into the instruction
// text sent to the upstream model. Compilation is a pure string template:
// the model is relied upon to honor the formatting directives, and the
// service never parses or reformats the model's output.
package prompt

import (
	"strings"

	"github.com/roske22/write-wiz/internal/domain"
)

const header = "You are an AI assistant that writes messages and emails.\n\n"

// Compile deterministically renders req into prompt text. Identical requests
// always yield byte-identical output.
//
// The rendered template embeds the message type, the reply flag as "yes"/"no",
// the original message (empty when the request is not a reply), the user's
// free-text intent, tone, and output style, followed by format directives for
// the selected message type.
func Compile(req domain.GenerationRequest) string {
	var b strings.Builder
	b.WriteString(header)

	b.WriteString("Message type: ")
	b.WriteString(string(req.MessageType))
	b.WriteString("\nIs it a reply: ")
	b.WriteString(yesNo(req.IsReply))
	b.WriteString("\nOriginal message: ")
	if req.IsReply {
		b.WriteString(req.OriginalMessage)
	}
	b.WriteString("\nUser wants to say: ")
	b.WriteString(req.UserPrompt)
	b.WriteString("\nTone: ")
	b.WriteString(string(req.Tone))
	b.WriteString("\nOutput style: ")
	b.WriteString(string(req.Style))
	b.WriteString("\n\nFormat requirements:\n")

	switch req.MessageType {
	case domain.MessageTypeEmail:
		b.WriteString("- Include a greeting, body, and closing/signature.\n")
	case domain.MessageTypeChat:
		b.WriteString("- Write a short message without greeting or signature unless the user's intent implies otherwise.\n")
	}
	b.WriteString("- Return only the message, no extra explanation.\n")
	if req.Style == domain.StylePerLine {
		b.WriteString("- Put each sentence on a new line.\n")
	}

	return b.String()
}

// yesNo renders a boolean the way the template expects.
func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
