// Package domain defines the core types for the message-generation service.
// This file holds the generation request shape and its enumerated fields.
package domain

// MessageType selects the kind of text to generate.
type MessageType string

const (
	MessageTypeEmail MessageType = "email"
	MessageTypeChat  MessageType = "chat"
)

// Valid reports whether the message type is one of the supported kinds.
func (m MessageType) Valid() bool {
	return m == MessageTypeEmail || m == MessageTypeChat
}

// Tone is the requested voice of the generated message.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneRomantic     Tone = "romantic"
	ToneConfident    Tone = "confident"
	ToneNeutral      Tone = "neutral"
)

// Valid reports whether the tone is in the allowed set.
func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneCasual, ToneRomantic, ToneConfident, ToneNeutral:
		return true
	}
	return false
}

// Style controls how chat output is laid out. It is meaningful only when
// MessageType is chat.
type Style string

const (
	StyleSingle  Style = "single"
	StylePerLine Style = "sentence-by-sentence"
)

// Valid reports whether the style is in the allowed set.
func (s Style) Valid() bool {
	return s == StyleSingle || s == StylePerLine
}

// GenerationRequest is the client input to the generation pipeline. Every
// enumerated field must resolve to a valid value before the request reaches
// the prompt compiler.
//
// OriginalMessage is only consulted when IsReply is true; its absence on a
// reply is tolerated and treated as empty context.
type GenerationRequest struct {
	MessageType     MessageType `json:"messageType"`
	IsReply         bool        `json:"isReply"`
	OriginalMessage string      `json:"originalMessage"`
	UserPrompt      string      `json:"userPrompt"`
	Tone            Tone        `json:"tone"`
	Style           Style       `json:"style"`
}
