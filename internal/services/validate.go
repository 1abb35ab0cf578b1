// Package services – request validation
//
// ValidateGeneration checks a generation request for completeness and
// cross-field consistency before it reaches the prompt compiler. It is a
// pure function of its input; rules run in a fixed order and the first
// failure wins.
package services

import (
	"strings"

	"github.com/roske22/write-wiz/internal/domain"
)

// ValidateGeneration returns nil when req may be compiled, or the first
// failing rule's error.
//
// Rule order:
//  1. messageType present and valid.
//  2. userPrompt non-empty after trimming.
//  3. tone present and valid.
//  4. style present and valid when messageType is chat.
//
// A reply without an original message is tolerated: the compiler treats the
// missing context as an empty string.
func ValidateGeneration(req domain.GenerationRequest) error {
	if !req.MessageType.Valid() {
		return ErrInvalidMessageType
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		return ErrEmptyPrompt
	}
	if !req.Tone.Valid() {
		return ErrInvalidTone
	}
	if req.MessageType == domain.MessageTypeChat && !req.Style.Valid() {
		return ErrInvalidStyle
	}
	return nil
}
