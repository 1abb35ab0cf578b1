// Package services – QuotaService
//
// This file implements the quota tracker: the tier-aware policy that decides
// whether a user may generate another message today, and the commit protocol
// that counts a completed generation. Tier bypass lives only here so the
// policy cannot drift across call sites.
//
// The limit is enforced exactly, not approximately. The check before the
// model call is advisory (it fails fast and avoids a wasted model call); the
// authoritative decision happens at commit time, where the storage layer's
// atomic upsert-increment returns a post-increment count that is re-checked
// against the limit and rolled back on overshoot. No in-process lock is
// involved, so any number of stateless instances can share one store.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/roske22/write-wiz/internal/domain"
)

// FreeDailyLimit is the default number of generations a free-tier user may
// complete per UTC calendar day.
const FreeDailyLimit = 3

// UsageRepo defines the repository contract required by QuotaService.
// Implementations own the atomicity of IncrementUsage; see the repo package
// for the storage protocol.
type UsageRepo interface {
	// GetUsage returns the message count for (userID, date), 0 when absent.
	GetUsage(ctx context.Context, db *gorm.DB, userID, date string) (int, error)

	// IncrementUsage atomically adds one and returns the post-increment count.
	IncrementUsage(ctx context.Context, db *gorm.DB, userID, date string) (int, error)

	// DecrementUsage releases one increment, never driving the count below zero.
	DecrementUsage(ctx context.Context, db *gorm.DB, userID, date string) error
}

// UsageSummary is a read-only snapshot of a user's standing against the
// daily quota, shaped for the usage endpoint.
type UsageSummary struct {
	MessagesUsed      int  `json:"messages_used"`
	MessagesRemaining int  `json:"messages_remaining"` // -1 when unlimited
	LimitReached      bool `json:"limit_reached"`
	Unlimited         bool `json:"unlimited"`
}

// QuotaService enforces the per-user, per-day message quota.
type QuotaService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the usage repository used by this service.
	Repo UsageRepo

	// DailyLimit caps free-tier generations per UTC day.
	DailyLimit int
	// Now supplies the clock; it exists so tests can pin the day boundary.
	Now func() time.Time
}

// NewQuotaService constructs a QuotaService with the default free-tier limit.
func NewQuotaService(db *gorm.DB, r UsageRepo) *QuotaService {
	return &QuotaService{
		DB:         db,
		Repo:       r,
		DailyLimit: FreeDailyLimit,
		Now:        time.Now,
	}
}

// CheckAndReserve decides whether userID may start another generation today.
// Premium and admin tiers are always allowed without touching the store.
// For the free tier it returns ErrQuotaExceeded once the day's count reaches
// the limit, and ErrQuotaUnavailable (fail-closed) when the store cannot be
// read.
func (s *QuotaService) CheckAndReserve(ctx context.Context, userID string, tier domain.Tier) error {
	if tier.Unlimited() {
		return nil
	}

	tr := otel.Tracer("services/QuotaService")
	ctx, span := tr.Start(ctx, "CheckAndReserve",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	used, err := s.Repo.GetUsage(ctx, s.DB, userID, s.today())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuotaUnavailable, err)
	}
	if used >= s.limit() {
		return ErrQuotaExceeded
	}
	return nil
}

// Commit counts one completed generation. Premium and admin tiers are not
// tracked. For the free tier the increment is atomic and the returned count
// is re-checked: if concurrent commits pushed it past the limit, the
// increment is released and ErrQuotaExceeded is returned, so two in-flight
// final-message requests can never both land.
func (s *QuotaService) Commit(ctx context.Context, userID string, tier domain.Tier) error {
	if tier.Unlimited() {
		return nil
	}

	tr := otel.Tracer("services/QuotaService")
	ctx, span := tr.Start(ctx, "Commit",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	day := s.today()
	n, err := s.Repo.IncrementUsage(ctx, s.DB, userID, day)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuotaUnavailable, err)
	}
	if n > s.limit() {
		// Overshot by a concurrent commit; release our increment. A failed
		// release pins the counter one above the limit until the next UTC
		// day, so it must surface in logs even though the caller's outcome
		// is the same either way.
		if derr := s.Repo.DecrementUsage(ctx, s.DB, userID, day); derr != nil {
			log.Error().
				Err(derr).
				Str("user_id", userID).
				Str("date", day).
				Msg("quota rollback failed")
		}
		return ErrQuotaExceeded
	}
	return nil
}

// Usage returns the user's current standing against today's quota.
func (s *QuotaService) Usage(ctx context.Context, userID string, tier domain.Tier) (UsageSummary, error) {
	used, err := s.Repo.GetUsage(ctx, s.DB, userID, s.today())
	if err != nil {
		return UsageSummary{}, fmt.Errorf("%w: %v", ErrQuotaUnavailable, err)
	}
	if tier.Unlimited() {
		return UsageSummary{
			MessagesUsed:      used,
			MessagesRemaining: -1,
			Unlimited:         true,
		}, nil
	}
	remaining := s.limit() - used
	if remaining < 0 {
		remaining = 0
	}
	return UsageSummary{
		MessagesUsed:      used,
		MessagesRemaining: remaining,
		LimitReached:      used >= s.limit(),
	}, nil
}

// limit returns the configured daily cap, defaulting to FreeDailyLimit.
func (s *QuotaService) limit() int {
	if s.DailyLimit > 0 {
		return s.DailyLimit
	}
	return FreeDailyLimit
}

// today computes the current UTC day key.
func (s *QuotaService) today() string {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	return domain.DayKey(now())
}
