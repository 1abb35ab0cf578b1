// Package domain defines the persistence models and request types for the
// message-generation service. The persistence types are mapped with GORM and
// form the core data layer of the application.
package domain

import (
	"time"
)

// Tier is the access class of a user controlling quota policy. It is a
// read-only input resolved by the external identity collaborator; this
// service never stores it.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierAdmin   Tier = "admin"
)

// ParseTier normalizes a raw tier string. Unknown or empty values map to
// TierFree so an unrecognized caller never gains unlimited access.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPremium:
		return TierPremium
	case TierAdmin:
		return TierAdmin
	default:
		return TierFree
	}
}

// Unlimited reports whether the tier bypasses the daily message quota.
// Premium and admin are treated identically.
func (t Tier) Unlimited() bool {
	return t == TierPremium || t == TierAdmin
}

// UsageRecord is the per-user, per-day message counter. At most one row
// exists per (user_id, date) pair; the unique index is what makes the
// atomic upsert-increment in the repo layer race-free.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: opaque identifier owned by the identity collaborator.
//   - Date: UTC calendar day in YYYY-MM-DD form.
//   - MessagesUsed: non-negative counter, mutated only by the quota repo.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Rows are created lazily on the first message of the day and never deleted
// by this subsystem; retention is an external policy.
type UsageRecord struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string    `json:"user_id"       gorm:"type:varchar(64);not null;uniqueIndex:ux_usage_user_date,priority:1"`
	Date         string    `json:"date"          gorm:"type:char(10);not null;uniqueIndex:ux_usage_user_date,priority:2"`
	MessagesUsed int       `json:"messages_used" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for UsageRecord.
func (UsageRecord) TableName() string { return "user_usage" }

// DayKey formats a point in time as the UTC calendar-day key used by
// UsageRecord.Date. A record for a previous day is never reused: a new day
// yields a new key and therefore a fresh row.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
