package services

import (
	"errors"
	"testing"

	"github.com/roske22/write-wiz/internal/domain"
)

// valid returns a request that passes every rule; tests break one field at
// a time.
func valid() domain.GenerationRequest {
	return domain.GenerationRequest{
		MessageType: domain.MessageTypeChat,
		UserPrompt:  "say hi",
		Tone:        domain.ToneCasual,
		Style:       domain.StyleSingle,
	}
}

func TestValidateGeneration_OK(t *testing.T) {
	if err := ValidateGeneration(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	email := valid()
	email.MessageType = domain.MessageTypeEmail
	email.Style = "" // style is meaningful only for chat
	if err := ValidateGeneration(email); err != nil {
		t.Fatalf("email without style should pass: %v", err)
	}
}

func TestValidateGeneration_ReplyWithoutOriginalTolerated(t *testing.T) {
	req := valid()
	req.IsReply = true
	req.OriginalMessage = ""
	if err := ValidateGeneration(req); err != nil {
		t.Fatalf("missing original message on a reply must not fail: %v", err)
	}
}

func TestValidateGeneration_FirstFailureWins(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*domain.GenerationRequest)
		wantErr error
	}{
		{"missing type", func(r *domain.GenerationRequest) { r.MessageType = "" }, ErrInvalidMessageType},
		{"bad type", func(r *domain.GenerationRequest) { r.MessageType = "sms" }, ErrInvalidMessageType},
		{"empty prompt", func(r *domain.GenerationRequest) { r.UserPrompt = "   \t\n" }, ErrEmptyPrompt},
		{"missing tone", func(r *domain.GenerationRequest) { r.Tone = "" }, ErrInvalidTone},
		{"bad tone", func(r *domain.GenerationRequest) { r.Tone = "sarcastic" }, ErrInvalidTone},
		{"chat missing style", func(r *domain.GenerationRequest) { r.Style = "" }, ErrInvalidStyle},
		{"chat bad style", func(r *domain.GenerationRequest) { r.Style = "bullet" }, ErrInvalidStyle},
		{
			// messageType is checked before the prompt, so a request broken
			// on both reports the type.
			"type before prompt",
			func(r *domain.GenerationRequest) { r.MessageType = ""; r.UserPrompt = "" },
			ErrInvalidMessageType,
		},
		{
			"prompt before tone",
			func(r *domain.GenerationRequest) { r.UserPrompt = ""; r.Tone = "" },
			ErrEmptyPrompt,
		},
	}

	for _, tc := range cases {
		req := valid()
		tc.mutate(&req)
		if err := ValidateGeneration(req); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: got %v; want %v", tc.name, err, tc.wantErr)
		}
	}
}
