package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quizhub-service/internal/domain"
)

func TestSubmissionLockerExcludesSecondHolder(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locker := NewSubmissionLocker(newClient(mr), time.Minute)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "quiz:q1:submission:u1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !mr.Exists("lock:quiz:q1:submission:u1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, err := locker.Acquire(ctx, "quiz:q1:submission:u1"); !errors.Is(err, domain.ErrLockHeld) {
		t.Fatalf("expected lock held, got %v", err)
	}
	if _, err := locker.Acquire(ctx, "quiz:q1:submission:u2"); err != nil {
		t.Fatalf("other key must be free: %v", err)
	}

	release()
	if mr.Exists("lock:quiz:q1:submission:u1") {
		t.Fatalf("expected redis key to be removed")
	}
	again, err := locker.Acquire(ctx, "quiz:q1:submission:u1")
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	again()
}

func TestSubmissionLockerExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locker := NewSubmissionLocker(newClient(mr), time.Second)
	ctx := context.Background()
	stale, err := locker.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	mr.FastForward(2 * time.Second)
	fresh, err := locker.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("expected expired lock to be free: %v", err)
	}

	// A late release from the stale holder must not free the new holder.
	stale()
	if !mr.Exists("lock:k") {
		t.Fatalf("stale release removed the new lock")
	}
	fresh()
}
