// Generation HTTP handlers.
//
// This file exposes the service boundary of the generation pipeline:
//   - POST /generate   (validate, check quota, compile, call the model)
//
// Handlers are transport-thin: they resolve identity from the request,
// delegate to the application services, and translate service sentinels into
// distinct HTTP status codes (400 invalid input, 429 quota, 502 upstream,
// 503 broken usage store).
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, key), the handler returns the recorded message
// and sets `Idempotency-Replayed: true` without re-invoking the model or
// touching the quota.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roske22/write-wiz/internal/domain"
	"github.com/roske22/write-wiz/internal/http/middleware"
	"github.com/roske22/write-wiz/internal/repo"
	"github.com/roske22/write-wiz/internal/services"
)

//
// Service contracts (context-aware)
//

// GenerateService runs the full generation pipeline. Implementations must be
// safe for concurrent use and honor the provided context.
type GenerateService interface {
	Generate(ctx context.Context, userID string, tier domain.Tier, req domain.GenerationRequest) (string, error)
}

// UsageService reports a user's standing against the daily quota.
type UsageService interface {
	Usage(ctx context.Context, userID string, tier domain.Tier) (services.UsageSummary, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the generation API. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic; the DB handle is used only for idempotency records.
type Handlers struct {
	genSvc   GenerateService
	usageSvc UsageService

	db      *gorm.DB
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services. db may be
// nil in tests, which disables idempotency replay/store.
func New(genSvc GenerateService, usageSvc UsageService, db *gorm.DB, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{genSvc: genSvc, usageSvc: usageSvc, db: db, idemTTL: idemTTL}
}

// userID resolves the caller identity through the shared middleware
// resolver, so handlers and the idempotency lookup always agree on the key
// under which records are stored.
func userID(c *gin.Context) string {
	return middleware.UserID(c)
}

// userTier extracts the resolved tier from the Gin context or the
// "X-User-Tier" header. Unknown values resolve to free.
func userTier(c *gin.Context) domain.Tier {
	if v, ok := c.Get("userTier"); ok {
		if s, ok := v.(string); ok && s != "" {
			return domain.ParseTier(s)
		}
	}
	if c != nil && c.Request != nil {
		return domain.ParseTier(strings.TrimSpace(c.GetHeader("X-User-Tier")))
	}
	return domain.TierFree
}

//
// DTOs
//

// GenerateRequest is the JSON payload for POST /generate. Field names match
// the public API contract; values are validated by the service layer.
type GenerateRequest struct {
	MessageType     string `json:"messageType"`
	IsReply         bool   `json:"isReply"`
	OriginalMessage string `json:"originalMessage"`
	UserPrompt      string `json:"userPrompt"`
	Tone            string `json:"tone"`
	Style           string `json:"style"`
}

// toDomain converts the wire payload into the service request type.
func (r GenerateRequest) toDomain() domain.GenerationRequest {
	return domain.GenerationRequest{
		MessageType:     domain.MessageType(strings.TrimSpace(r.MessageType)),
		IsReply:         r.IsReply,
		OriginalMessage: r.OriginalMessage,
		UserPrompt:      r.UserPrompt,
		Tone:            domain.Tone(strings.TrimSpace(r.Tone)),
		Style:           domain.Style(strings.TrimSpace(r.Style)),
	}
}

// GenerateResponse is the JSON envelope for a successful generation.
type GenerateResponse struct {
	Message string `json:"message"`
}

//
// Handlers
//

// Generate handles POST /generate: it binds the payload, serves idempotent
// replays, runs the pipeline, and maps each failure class to its status
// code. The upstream model is invoked at most once per non-replayed request.
func (h *Handlers) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	currentUser := userID(c)
	tier := userTier(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		if rec, err := repo.GetIdempotency(ctx, h.db, currentUser, idemKey, time.Now().UTC()); err == nil && rec != nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, rec.Status, GenerateResponse{Message: rec.Message})
			return
		}
	}

	text, err := h.genSvc.Generate(ctx, currentUser, tier, req.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMessageType),
			errors.Is(err, services.ErrEmptyPrompt),
			errors.Is(err, services.ErrInvalidTone),
			errors.Is(err, services.ErrInvalidStyle):
			middleware.CountGeneration(string(tier), "invalid")
			fail(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		case errors.Is(err, services.ErrQuotaExceeded):
			middleware.CountGeneration(string(tier), "quota")
			fail(c, http.StatusTooManyRequests, ErrCodeQuotaExceeded, err.Error())
		case errors.Is(err, services.ErrQuotaUnavailable):
			middleware.CountGeneration(string(tier), "storage")
			fail(c, http.StatusServiceUnavailable, ErrCodeQuotaUnavailable, "usage store unavailable")
		case errors.Is(err, services.ErrUpstream):
			middleware.CountGeneration(string(tier), "upstream")
			fail(c, http.StatusBadGateway, ErrCodeUpstream, "message generation failed")
		default:
			middleware.CountGeneration(string(tier), "error")
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort; a race with a concurrent
	// identical key keeps the first stored result.
	if idemKey != "" && h.db != nil {
		if _, err := repo.CreateIdempotency(ctx, h.db, currentUser, idemKey, text, http.StatusOK, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency store failed")
		}
	}

	middleware.CountGeneration(string(tier), "ok")
	ok(c, http.StatusOK, GenerateResponse{Message: text})
}
