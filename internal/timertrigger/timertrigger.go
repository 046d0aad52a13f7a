// Package timertrigger drives cron-scheduled invocations. Unlike
// robfig/cron's own Cron type, which runs its own goroutine and job
// registry, TimerTriggerScheduler owns a single explicit tick loop: each
// tick collects every schedule whose next-fire timestamp has passed,
// fires them concurrently, and reschedules. This mirrors the time-wheel
// the control plane specifies rather than handing scheduling off to a
// library-owned loop.
package timertrigger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/logging"
	"github.com/oriys/minifaas/internal/metrics"
)

// cronParser accepts the canonical 6-field form (seconds minute hour dom
// month dow). A trailing 7th field is tolerated and stripped by
// ParseSchedule before reaching this parser — see ParseSchedule.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule parses a cron expression. minifaas accepts an optional
// trailing 7th field (a year component some callers carry over from other
// schedulers) and discards it: the underlying scheduler has no concept of
// year-scoped firing, so keeping the field would silently do nothing useful
// while rejecting it would break otherwise-valid schedules.
func ParseSchedule(expr string) (cron.Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) == 7 {
		expr = strings.Join(fields[:6], " ")
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return sched, nil
}

// Invoker is the subset of FunctionExecutor the scheduler depends on.
type Invoker interface {
	Invoke(ctx context.Context, input domain.RawFunctionInput) (domain.RawFunctionOutput, error)
}

type subscription struct {
	id       string
	invoker  Invoker
	schedule cron.Schedule
}

// Scheduler fires subscribed invokers according to their cron schedule.
// Time advances only through Tick: Run calls it from a ticker in a
// background goroutine, and tests call it directly to control time.
type Scheduler struct {
	mu         sync.Mutex
	schedules  map[string]*subscription
	next       map[int64][]*subscription
	since      time.Time
	resolution time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewScheduler builds a Scheduler with since initialized to now.
func NewScheduler(resolution time.Duration) *Scheduler {
	return &Scheduler{
		schedules:  make(map[string]*subscription),
		next:       make(map[int64][]*subscription),
		since:      time.Now(),
		resolution: resolution,
	}
}

// Subscribe registers invoker under id, computing its first fire time from
// schedule. Re-subscribing an id replaces its previous schedule and clears
// any bucket it was previously waiting in.
func (s *Scheduler) Subscribe(id string, invoker Invoker, schedule cron.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)

	sub := &subscription{id: id, invoker: invoker, schedule: schedule}
	s.schedules[id] = sub
	fireAt := schedule.Next(time.Now()).Unix()
	s.next[fireAt] = append(s.next[fireAt], sub)
}

// Unsubscribe removes id from the schedule map and from whatever future
// bucket it occupies.
func (s *Scheduler) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Scheduler) removeLocked(id string) {
	old, ok := s.schedules[id]
	if !ok {
		return
	}
	delete(s.schedules, id)

	for ts, subs := range s.next {
		filtered := subs[:0]
		for _, sub := range subs {
			if sub != old {
				filtered = append(filtered, sub)
			}
		}
		if len(filtered) == 0 {
			delete(s.next, ts)
		} else {
			s.next[ts] = filtered
		}
	}
}

// Tick collects every bucket with a fire time in (since, t], fires them
// concurrently, reschedules survivors, and advances since to t. Firing
// failures are logged and counted, never retried.
func (s *Scheduler) Tick(ctx context.Context, t time.Time) {
	fired := s.collectDueLocked(t)
	if len(fired) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range fired {
		sub := sub
		g.Go(func() error {
			s.fire(gctx, sub, t)
			return nil
		})
	}
	_ = g.Wait()

	s.rescheduleLocked(fired)
}

func (s *Scheduler) collectDueLocked(t time.Time) []*subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []*subscription
	for ts, subs := range s.next {
		if ts > t.Unix() || time.Unix(ts, 0).Before(s.since) {
			continue
		}
		fired = append(fired, subs...)
		delete(s.next, ts)
	}
	s.since = t
	return fired
}

func (s *Scheduler) rescheduleLocked(fired []*subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, sub := range fired {
		if _, ok := s.schedules[sub.id]; !ok {
			continue
		}
		fireAt := sub.schedule.Next(now).Unix()
		s.next[fireAt] = append(s.next[fireAt], sub)
	}
}

func (s *Scheduler) fire(ctx context.Context, sub *subscription, at time.Time) {
	payload, err := json.Marshal(timerInput{When: strconv.FormatInt(at.Unix(), 10)})
	if err != nil {
		logging.Op().Error("failed to marshal timer input", "schedule", sub.id, "error", err)
		return
	}

	_, err = sub.invoker.Invoke(ctx, domain.RawFunctionInput{Payload: payload})
	metrics.RecordScheduleFire(sub.id, err == nil)
	if err != nil {
		logging.Op().Warn("scheduled invocation failed", "schedule", sub.id, "error", err)
	}
}

type timerInput struct {
	When string `json:"when"`
}

// Run drives Tick on a ticker at the scheduler's configured resolution
// until ctx is cancelled or Stop is called.
func (s *Scheduler) Run(ctx context.Context) {
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.resolution)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case t := <-ticker.C:
				s.Tick(ctx, t)
			}
		}
	}()
}

// Stop halts the Run loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.wg.Wait()
}
