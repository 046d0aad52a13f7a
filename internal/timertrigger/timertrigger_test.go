package timertrigger

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oriys/minifaas/internal/domain"
)

type countingInvoker struct {
	calls atomic.Int64
}

func (c *countingInvoker) Invoke(ctx context.Context, input domain.RawFunctionInput) (domain.RawFunctionOutput, error) {
	c.calls.Add(1)
	return domain.RawFunctionOutput{}, nil
}

func TestParseScheduleStripsTrailingYearField(t *testing.T) {
	sched, err := ParseSchedule("* * * * * * *")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	if sched == nil {
		t.Fatal("expected a non-nil schedule")
	}
}

func TestParseScheduleSixField(t *testing.T) {
	sched, err := ParseSchedule("0 * * * * *")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	if sched == nil {
		t.Fatal("expected a non-nil schedule")
	}
}

func TestSchedulerFiresDueSubscription(t *testing.T) {
	s := NewScheduler(time.Second)
	inv := &countingInvoker{}

	sched, err := ParseSchedule("* * * * * *")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}

	now := time.Now()
	s.Subscribe("fn", inv, sched)

	s.Tick(context.Background(), now.Add(2*time.Second))

	if inv.calls.Load() == 0 {
		t.Error("expected at least one invocation after tick past fire time")
	}
}

func TestSchedulerUnsubscribeStopsFiring(t *testing.T) {
	s := NewScheduler(time.Second)
	inv := &countingInvoker{}

	sched, err := ParseSchedule("* * * * * *")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}

	s.Subscribe("fn", inv, sched)
	s.Unsubscribe("fn")

	s.Tick(context.Background(), time.Now().Add(2*time.Second))

	if inv.calls.Load() != 0 {
		t.Errorf("expected no invocations after unsubscribe, got %d", inv.calls.Load())
	}
}
