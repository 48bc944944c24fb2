// Package reactor implements a single-threaded event loop: a loop over
// timer expirations and readiness-style event sources,
// dispatching callbacks sequentially with no reentrancy, then draining any
// deferred work queued by a callback (notably the job dispatcher's
// follow-on scheduling).
//
// Go has no portable raw fd multiplexing exposed to package code the way
// the original C kqueue-based reactor did, so readiness sources here are
// channels: anything that can notify readiness — a completion pipe, a
// child-process watcher, a timer — implements Source by exposing a
// <-chan struct{}. A Restarter that does background work in its own
// goroutine re-enters the scheduler by sending on such a channel, exactly
// as the design notes describe marshalling completion onto the reactor
// thread via a pipe fd.
package reactor

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/InitWare/Neo-InitWare/pkg/schederr"
)

// TimerID identifies an armed timer. A OneShot timer's ID is invalid after
// it fires; IDs are never handed out twice.
type TimerID uint64

// SourceID identifies a registered readiness source.
type SourceID uint64

// Source is anything that can signal readiness on a channel.
type Source interface {
	Chan() <-chan struct{}
}

// ChanSource adapts a bare channel to Source.
type ChanSource <-chan struct{}

func (c ChanSource) Chan() <-chan struct{} { return c }

type timerEntry struct {
	id        TimerID
	recurring bool
	interval  time.Duration
	timer     *time.Timer
	cb        func(TimerID)
}

type sourceEntry struct {
	id     SourceID
	source Source
	cb     func()
}

// Loop is the reactor's single-threaded event loop.
type Loop struct {
	logger *slog.Logger

	timers  map[TimerID]*timerEntry
	sources map[SourceID]*sourceEntry
	nextT   TimerID
	nextS   SourceID

	deferCh chan func()
	stopCh  chan struct{}
}

// New creates an idle Loop. Call Run to start it.
func New(logger *slog.Logger) *Loop {
	return &Loop{
		logger:  logger.With("component", "reactor"),
		timers:  make(map[TimerID]*timerEntry),
		sources: make(map[SourceID]*sourceEntry),
		deferCh: make(chan func(), 64),
		stopCh:  make(chan struct{}),
	}
}

// AddTimer arms a timer. If recurring, cb fires every interval until
// DelTimer is called; otherwise it fires once and the entry is removed
// before cb runs (consistent with "a OneShot timer's handle is invalid
// after it fires").
func (l *Loop) AddTimer(recurring bool, interval time.Duration, cb func(TimerID)) (TimerID, error) {
	if interval <= 0 {
		return 0, schederr.Wrap(schederr.CodeOsError, "", "add_timer", fmt.Errorf("non-positive interval"))
	}
	l.nextT++
	id := l.nextT
	entry := &timerEntry{id: id, recurring: recurring, interval: interval, cb: cb}
	entry.timer = time.NewTimer(interval)
	l.timers[id] = entry
	return id, nil
}

// DelTimer disarms a timer. Returns false if id is unknown (NotFound).
func (l *Loop) DelTimer(id TimerID) bool {
	entry, ok := l.timers[id]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(l.timers, id)
	return true
}

// AddSource registers a readiness source. cb runs once per readiness
// signal received on src.Chan().
func (l *Loop) AddSource(src Source, cb func()) SourceID {
	l.nextS++
	id := l.nextS
	l.sources[id] = &sourceEntry{id: id, source: src, cb: cb}
	return id
}

// DelSource unregisters a readiness source. Returns false if id is
// unknown.
func (l *Loop) DelSource(id SourceID) bool {
	if _, ok := l.sources[id]; !ok {
		return false
	}
	delete(l.sources, id)
	return true
}

// Defer enqueues fn to run on the loop thread after the current callback
// (if any) returns, before the next event is awaited. Safe to call from
// any goroutine — this is the mechanism background restarter goroutines
// use to marshal job_complete back onto the reactor thread.
func (l *Loop) Defer(fn func()) {
	select {
	case l.deferCh <- fn:
	case <-l.stopCh:
	}
}

// Stop asks Run to return at the next opportunity.
func (l *Loop) Stop() {
	close(l.stopCh)
}

// Run blocks, dispatching one event per iteration, until ctx is cancelled
// or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("reactor started")
	for {
		if stopped := l.runOnce(ctx); stopped {
			return ctx.Err()
		}
		l.drainDeferred()
	}
}

// runOnce waits for exactly one event and dispatches its callback. It
// returns true if the loop should stop.
func (l *Loop) runOnce(ctx context.Context) bool {
	cases := []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(l.stopCh)},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(l.deferCh)},
	}
	const fixedCases = 3

	timerIDs := make([]TimerID, 0, len(l.timers))
	for id, entry := range l.timers {
		timerIDs = append(timerIDs, id)
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(entry.timer.C)})
	}
	sourceIDs := make([]SourceID, 0, len(l.sources))
	for id, entry := range l.sources {
		sourceIDs = append(sourceIDs, id)
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(entry.source.Chan())})
	}

	chosen, recv, _ := reflect.Select(cases)
	switch {
	case chosen == 0, chosen == 1:
		return true
	case chosen == 2:
		if fn, ok := recv.Interface().(func()); ok {
			fn()
		}
		return false
	}

	idx := chosen - fixedCases
	if idx < len(timerIDs) {
		id := timerIDs[idx]
		entry, ok := l.timers[id]
		if !ok {
			return false // raced with DelTimer inside a prior callback this iteration
		}
		if !entry.recurring {
			delete(l.timers, id)
		} else {
			entry.timer.Reset(entry.interval)
		}
		entry.cb(id)
		return false
	}

	idx -= len(timerIDs)
	id := sourceIDs[idx]
	if entry, ok := l.sources[id]; ok {
		entry.cb()
	}
	return false
}

func (l *Loop) drainDeferred() {
	for {
		select {
		case fn := <-l.deferCh:
			fn()
		default:
			return
		}
	}
}
