// Package services – GenerateService
//
// This file implements the generation pipeline behind POST /generate. It
// runs validation, the quota check, prompt compilation, the upstream model
// call, and the quota commit, in that order.
//
// Side-effect ordering matters: the quota check happens before the
// (potentially costly) model call, but the counter moves only after the
// model has produced text that will be returned to the user. A user is
// therefore never billed for a model call that did not happen, and the
// commit-time re-check in QuotaService closes the window between two
// concurrent final-message requests.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// user and request attributes.
package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/roske22/write-wiz/internal/domain"
	"github.com/roske22/write-wiz/internal/prompt"
)

// Completer is the upstream text-generation model seen as an opaque
// function. Implementations make exactly one attempt per call.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QuotaTracker is the quota policy consumed by the generation pipeline.
// *QuotaService is the production implementation.
type QuotaTracker interface {
	CheckAndReserve(ctx context.Context, userID string, tier domain.Tier) error
	Commit(ctx context.Context, userID string, tier domain.Tier) error
}

// GenerateService coordinates the full generation pipeline.
type GenerateService struct {
	Quota QuotaTracker
	Model Completer
}

// NewGenerateService constructs a GenerateService.
func NewGenerateService(quota QuotaTracker, model Completer) *GenerateService {
	return &GenerateService{Quota: quota, Model: model}
}

// Generate validates req, enforces the quota, compiles the prompt, invokes
// the model once, commits the usage increment, and returns the model's raw
// text. Failures surface as the service sentinels: validation errors,
// ErrQuotaExceeded, ErrQuotaUnavailable, or ErrUpstream.
func (s *GenerateService) Generate(ctx context.Context, userID string, tier domain.Tier, req domain.GenerationRequest) (string, error) {
	tr := otel.Tracer("services/GenerateService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("user.tier", string(tier)),
			attribute.String("message.type", string(req.MessageType)),
		),
	)
	defer span.End()

	// Fail fast on malformed input: no quota read, no model call.
	if err := ValidateGeneration(req); err != nil {
		return "", err
	}

	// Advisory limit check before spending money on the model.
	if err := s.Quota.CheckAndReserve(ctx, userID, tier); err != nil {
		return "", err
	}

	text, err := s.Model.Complete(ctx, prompt.Compile(req))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// Authoritative count. An overshoot detected here rejects the request
	// even though the model already answered.
	if err := s.Quota.Commit(ctx, userID, tier); err != nil {
		return "", err
	}

	return text, nil
}
