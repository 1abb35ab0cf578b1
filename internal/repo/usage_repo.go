// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the per-user,
// per-day UsageRecord counters behind the quota tracker.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no quota policy here, only the
// storage protocol that makes counting race-free.
//
// Concurrency contract:
//
// The read-then-conditionally-write pattern is inherently racy: two
// concurrent requests can both read 0 and both insert, or both pass a stale
// limit check. IncrementUsage therefore performs a single upsert keyed by
// the (user_id, date) unique index, with the increment expressed inside the
// statement itself and the post-increment count carried back via RETURNING.
// Each caller receives the count its own statement produced, so N concurrent
// increments observe N distinct values. Callers enforce limits against that
// post-increment value and call DecrementUsage to roll back an increment
// that overshot.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roske22/write-wiz/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetUsage returns the number of messages used by userID on the given UTC
// day key. An absent record is not an error: it reports 0, matching the
// lazy-creation lifecycle of UsageRecord.
func GetUsage(ctx context.Context, db *gorm.DB, userID, date string) (int, error) {
	var rec domain.UsageRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.MessagesUsed, nil
}

// IncrementUsage adds one message to (userID, date) and returns the
// post-increment count.
//
// The write is a single atomic upsert: insert a fresh row with count 1, or,
// on conflict with the (user_id, date) unique index, bump the existing
// counter inside the UPDATE expression. The RETURNING clause hands back the
// row this statement produced, so the count reflects exactly this call's
// increment and nothing that committed after it. A separate read-back would
// not give that guarantee: it could observe later increments and make two
// callers both see the same overshot value.
func IncrementUsage(ctx context.Context, db *gorm.DB, userID, date string) (int, error) {
	now := time.Now().UTC()
	rec := domain.UsageRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		Date:         date,
		MessagesUsed: 1,
		CreatedAt:    now,
	}

	err := db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"messages_used": gorm.Expr("messages_used + 1"),
				"updated_at":    now,
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "messages_used"}}},
	).Create(&rec).Error
	if err != nil {
		return 0, err
	}
	return rec.MessagesUsed, nil
}

// DecrementUsage releases one previously committed increment for
// (userID, date). It is the rollback half of the increment-then-recheck
// protocol and never drives the counter below zero. Returns ErrNotFound
// when there is nothing to release.
func DecrementUsage(ctx context.Context, db *gorm.DB, userID, date string) error {
	res := db.WithContext(ctx).
		Model(&domain.UsageRecord{}).
		Where("user_id = ? AND date = ? AND messages_used > 0", userID, date).
		Updates(map[string]interface{}{
			"messages_used": gorm.Expr("messages_used - 1"),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
