package fn

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	if !ok.IsOk() {
		t.Error("Ok result should be ok")
	}
	v, err := ok.Unwrap()
	if v != 42 || err != nil {
		t.Errorf("Unwrap = (%v, %v)", v, err)
	}

	boom := errors.New("boom")
	bad := Err[int](boom)
	if bad.IsOk() {
		t.Error("Err result should not be ok")
	}
	if _, err := bad.Unwrap(); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	res := Retry(context.Background(), opts, func(context.Context) Result[string] {
		attempts++
		if attempts < 3 {
			return Err[string](errors.New("transient"))
		}
		return Ok("done")
	})

	v, err := res.Unwrap()
	if err != nil || v != "done" {
		t.Fatalf("Unwrap = (%q, %v)", v, err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	boom := errors.New("permanent")
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

	res := Retry(context.Background(), opts, func(context.Context) Result[int] {
		return Err[int](boom)
	})
	if _, err := res.Unwrap(); !errors.Is(err, boom) {
		t.Errorf("expected permanent error, got %v", err)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := RetryOpts{MaxAttempts: 5, InitialWait: time.Minute, MaxWait: time.Minute}

	res := Retry(ctx, opts, func(context.Context) Result[int] {
		return Err[int](errors.New("fail then wait"))
	})
	if _, err := res.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
