package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/roske22/write-wiz/internal/domain"
)

// ----- Fake repo -----

// fakeUsageRepo emulates the storage contract: increments are atomic with
// respect to each other, exactly like the upsert against the unique index.
type fakeUsageRepo struct {
	mu     sync.Mutex
	counts map[string]int

	getErr error
	incErr error
	decErr error

	getCalls int
	incCalls int
	decCalls int
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: map[string]int{}}
}

func key(userID, date string) string { return userID + "|" + date }

func (r *fakeUsageRepo) GetUsage(ctx context.Context, db *gorm.DB, userID, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.getErr != nil {
		return 0, r.getErr
	}
	return r.counts[key(userID, date)], nil
}

func (r *fakeUsageRepo) IncrementUsage(ctx context.Context, db *gorm.DB, userID, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incCalls++
	if r.incErr != nil {
		return 0, r.incErr
	}
	r.counts[key(userID, date)]++
	return r.counts[key(userID, date)], nil
}

func (r *fakeUsageRepo) DecrementUsage(ctx context.Context, db *gorm.DB, userID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decCalls++
	if r.decErr != nil {
		return r.decErr
	}
	if r.counts[key(userID, date)] > 0 {
		r.counts[key(userID, date)]--
	}
	return nil
}

func (r *fakeUsageRepo) count(userID, date string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key(userID, date)]
}

// pinned returns a quota service whose clock is fixed.
func pinned(r *fakeUsageRepo, at time.Time) *QuotaService {
	s := NewQuotaService(nil, r)
	s.Now = func() time.Time { return at }
	return s
}

var day1 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// ----- Tests -----

func TestNewQuotaService_Defaults(t *testing.T) {
	s := NewQuotaService(nil, newFakeUsageRepo())
	if s.DailyLimit != FreeDailyLimit {
		t.Fatalf("DailyLimit default = %d, got %d", FreeDailyLimit, s.DailyLimit)
	}
	if s.Now == nil {
		t.Fatal("Now must default to the real clock")
	}
}

func TestCheckAndReserve_UnlimitedTiersSkipStore(t *testing.T) {
	r := newFakeUsageRepo()
	s := pinned(r, day1)

	for _, tier := range []domain.Tier{domain.TierPremium, domain.TierAdmin} {
		if err := s.CheckAndReserve(context.Background(), "u1", tier); err != nil {
			t.Fatalf("%s: unexpected error: %v", tier, err)
		}
		if err := s.Commit(context.Background(), "u1", tier); err != nil {
			t.Fatalf("%s: unexpected commit error: %v", tier, err)
		}
	}
	if r.getCalls != 0 || r.incCalls != 0 {
		t.Fatalf("unlimited tiers must not touch the store: gets=%d incs=%d", r.getCalls, r.incCalls)
	}
}

func TestCheckAndReserve_FreeTier(t *testing.T) {
	r := newFakeUsageRepo()
	s := pinned(r, day1)
	ctx := context.Background()

	if err := s.CheckAndReserve(ctx, "u1", domain.TierFree); err != nil {
		t.Fatalf("fresh user should be allowed: %v", err)
	}

	r.counts[key("u1", "2025-03-10")] = FreeDailyLimit
	if err := s.CheckAndReserve(ctx, "u1", domain.TierFree); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("at limit: got %v; want ErrQuotaExceeded", err)
	}
}

func TestCheckAndReserve_StorageFailureFailsClosed(t *testing.T) {
	r := newFakeUsageRepo()
	r.getErr = errors.New("disk on fire")
	s := pinned(r, day1)

	err := s.CheckAndReserve(context.Background(), "u1", domain.TierFree)
	if !errors.Is(err, ErrQuotaUnavailable) {
		t.Fatalf("got %v; want ErrQuotaUnavailable", err)
	}
	// Unlimited tiers never read the store, so they are unaffected.
	if err := s.CheckAndReserve(context.Background(), "u1", domain.TierPremium); err != nil {
		t.Fatalf("premium must pass despite broken store: %v", err)
	}
}

func TestCommit_RollsBackOvershoot(t *testing.T) {
	r := newFakeUsageRepo()
	s := pinned(r, day1)
	ctx := context.Background()

	for i := 0; i < FreeDailyLimit; i++ {
		if err := s.Commit(ctx, "u1", domain.TierFree); err != nil {
			t.Fatalf("commit %d: %v", i+1, err)
		}
	}
	if err := s.Commit(ctx, "u1", domain.TierFree); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("overshoot commit: got %v; want ErrQuotaExceeded", err)
	}
	if got := r.count("u1", "2025-03-10"); got != FreeDailyLimit {
		t.Fatalf("counter = %d after rollback; want %d", got, FreeDailyLimit)
	}
	if r.decCalls != 1 {
		t.Fatalf("decCalls = %d; want 1", r.decCalls)
	}
}

func TestCommit_RollbackFailureStillRejects(t *testing.T) {
	r := newFakeUsageRepo()
	r.decErr = errors.New("release lost")
	s := pinned(r, day1)
	ctx := context.Background()

	r.counts[key("u1", "2025-03-10")] = FreeDailyLimit
	if err := s.Commit(ctx, "u1", domain.TierFree); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("got %v; want ErrQuotaExceeded despite failed rollback", err)
	}
	if r.decCalls != 1 {
		t.Fatalf("decCalls = %d; want 1", r.decCalls)
	}
}

func TestCommit_StorageFailure(t *testing.T) {
	r := newFakeUsageRepo()
	r.incErr = errors.New("no quorum")
	s := pinned(r, day1)

	if err := s.Commit(context.Background(), "u1", domain.TierFree); !errors.Is(err, ErrQuotaUnavailable) {
		t.Fatalf("got %v; want ErrQuotaUnavailable", err)
	}
}

func TestQuota_ConcurrentCommits_ExactLimit(t *testing.T) {
	r := newFakeUsageRepo()
	s := pinned(r, day1)
	ctx := context.Background()

	const n = 12
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Mirror the pipeline: advisory check, then authoritative commit.
			if err := s.CheckAndReserve(ctx, "u1", domain.TierFree); err != nil {
				results <- err
				return
			}
			results <- s.Commit(ctx, "u1", domain.TierFree)
		}()
	}
	wg.Wait()
	close(results)

	okCount, quotaCount := 0, 0
	for err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, ErrQuotaExceeded):
			quotaCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if okCount != FreeDailyLimit {
		t.Fatalf("successes = %d; want exactly %d", okCount, FreeDailyLimit)
	}
	if quotaCount != n-FreeDailyLimit {
		t.Fatalf("quota rejections = %d; want %d", quotaCount, n-FreeDailyLimit)
	}
	if got := r.count("u1", "2025-03-10"); got != FreeDailyLimit {
		t.Fatalf("final counter = %d; want exactly %d", got, FreeDailyLimit)
	}
}

func TestQuota_DayRollover(t *testing.T) {
	r := newFakeUsageRepo()
	s := pinned(r, day1)
	ctx := context.Background()

	for i := 0; i < FreeDailyLimit; i++ {
		if err := s.Commit(ctx, "u1", domain.TierFree); err != nil {
			t.Fatalf("day 1 commit %d: %v", i+1, err)
		}
	}
	if err := s.CheckAndReserve(ctx, "u1", domain.TierFree); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("day 1 exhausted: got %v", err)
	}

	// Next UTC day: a fresh record, full quota again.
	s.Now = func() time.Time { return day1.Add(24 * time.Hour) }
	for i := 0; i < FreeDailyLimit; i++ {
		if err := s.CheckAndReserve(ctx, "u1", domain.TierFree); err != nil {
			t.Fatalf("day 2 check %d: %v", i+1, err)
		}
		if err := s.Commit(ctx, "u1", domain.TierFree); err != nil {
			t.Fatalf("day 2 commit %d: %v", i+1, err)
		}
	}
	if got := r.count("u1", "2025-03-11"); got != FreeDailyLimit {
		t.Fatalf("day 2 counter = %d; want %d", got, FreeDailyLimit)
	}
	if got := r.count("u1", "2025-03-10"); got != FreeDailyLimit {
		t.Fatalf("day 1 counter mutated to %d", got)
	}
}

func TestUsage_Snapshot(t *testing.T) {
	r := newFakeUsageRepo()
	s := pinned(r, day1)
	ctx := context.Background()

	sum, err := s.Usage(ctx, "u1", domain.TierFree)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if sum.MessagesUsed != 0 || sum.MessagesRemaining != FreeDailyLimit || sum.LimitReached {
		t.Fatalf("fresh summary = %+v", sum)
	}

	r.counts[key("u1", "2025-03-10")] = FreeDailyLimit
	sum, err = s.Usage(ctx, "u1", domain.TierFree)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if !sum.LimitReached || sum.MessagesRemaining != 0 {
		t.Fatalf("exhausted summary = %+v", sum)
	}

	sum, err = s.Usage(ctx, "u1", domain.TierPremium)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if !sum.Unlimited || sum.MessagesRemaining != -1 || sum.LimitReached {
		t.Fatalf("premium summary = %+v", sum)
	}
}
