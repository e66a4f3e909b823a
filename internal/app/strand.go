package app

import (
	"sync"

	"lostfound-server/pkg/logger"
)

// strand serializes every mutation of game state onto a single goroutine,
// the same per-instance goroutine-plus-channel pattern the server used for
// its dungeon instances. Callers never touch model state directly; they
// submit a closure and block on its result.
type strand struct {
	jobs chan func()
	wg   sync.WaitGroup
	stop chan struct{}
}

func newStrand() *strand {
	s := &strand{
		jobs: make(chan func(), 64),
		stop: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *strand) run() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobs:
			job()
		case <-s.stop:
			for {
				select {
				case job := <-s.jobs:
					job()
				default:
					return
				}
			}
		}
	}
}

// Close stops the strand goroutine once any queued jobs have drained.
func (s *strand) Close() {
	close(s.stop)
	s.wg.Wait()
}

// submit runs fn on the strand and returns its result, blocking the caller.
func submit[T any](s *strand, fn func() (T, *Error)) (T, *Error) {
	type result struct {
		v   T
		err *Error
	}
	done := make(chan result, 1)
	s.jobs <- func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.WithField("panic", r).Error("recovered panic in strand job")
				done <- result{err: internal("recovered from panic: %v", r)}
			}
		}()
		v, err := fn()
		done <- result{v, err}
	}
	r := <-done
	return r.v, r.err
}

// submitVoid is submit for jobs with no return value besides an error.
func submitVoid(s *strand, fn func() *Error) *Error {
	_, err := submit(s, func() (struct{}, *Error) {
		return struct{}{}, fn()
	})
	return err
}
