// Package resource reconciles a local cache with a remote fetch and reports the
// outcome as a stream of Loading/Success/Failure envelopes.
package resource

import (
	"context"
	"errors"
	"log/slog"
)

// ErrClosed is reported by Await when a stream ends without a settled result
var ErrClosed = errors.New("resource stream closed")

// Status tags a Result
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the envelope consumers receive. Data is the cached value at the
// time of emission: stale while Loading, fresh on Success, last known on Failure.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Loading wraps stale data shown while a refresh is in flight
func Loading[T any](data T) Result[T] {
	return Result[T]{Status: StatusLoading, Data: data}
}

// Success wraps data confirmed fresh
func Success[T any](data T) Result[T] {
	return Result[T]{Status: StatusSuccess, Data: data}
}

// Failure pairs an error with the last cached data
func Failure[T any](err error, data T) Result[T] {
	return Result[T]{Status: StatusError, Data: data, Err: err}
}

// Resource describes one cache-backed read path.
//
// Query and Fetch are required. Watch is the cache's live view: it should
// fire after each committed write; without it the stream ends once settled.
// ShouldFetch lets callers skip the network when the cache is fresh enough.
type Resource[T, R any] struct {
	Query       func(ctx context.Context) (T, error)
	Watch       func(ctx context.Context) <-chan struct{}
	Fetch       func(ctx context.Context) (R, error)
	Save        func(ctx context.Context, fetched R) error
	ShouldFetch func(cached T) bool
	Logger      *slog.Logger
}

// Stream starts the resource and returns its envelopes. The channel is
// closed when ctx is cancelled or, without a Watch, once a result settles.
func (r *Resource[T, R]) Stream(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go r.run(ctx, out)
	return out
}

func (r *Resource[T, R]) run(ctx context.Context, out chan<- Result[T]) {
	defer close(out)

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Subscribe before fetching so the save's own change is observed.
	var changes <-chan struct{}
	if r.Watch != nil {
		changes = r.Watch(ctx)
	}

	cached, err := r.Query(ctx)
	if err != nil {
		send(ctx, out, Failure(err, cached))
		return
	}

	var fetchErr error
	if r.ShouldFetch == nil || r.ShouldFetch(cached) {
		if !send(ctx, out, Loading(cached)) {
			return
		}

		fetchErr = r.fetchAndSave(ctx)
		if fetchErr != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("resource fetch failed, serving cache", "error", fetchErr)
			if !send(ctx, out, Failure(fetchErr, cached)) {
				return
			}
		} else {
			drain(changes)
			fresh, err := r.Query(ctx)
			if err != nil {
				send(ctx, out, Failure(err, cached))
				return
			}
			if !send(ctx, out, Success(fresh)) {
				return
			}
		}
	} else if !send(ctx, out, Success(cached)) {
		return
	}

	if changes == nil {
		return
	}

	wrap := func(data T) Result[T] {
		if fetchErr != nil {
			return Failure(fetchErr, data)
		}
		return Success(data)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			data, err := r.Query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("resource query failed", "error", err)
				if !send(ctx, out, Failure(err, data)) {
					return
				}
				continue
			}
			if !send(ctx, out, wrap(data)) {
				return
			}
		}
	}
}

// fetchAndSave runs the remote call and persists its payload.
// The cache is only touched when Fetch succeeds.
func (r *Resource[T, R]) fetchAndSave(ctx context.Context) error {
	fetched, err := r.Fetch(ctx)
	if err != nil {
		return err
	}
	if r.Save == nil {
		return nil
	}
	return r.Save(ctx, fetched)
}

// Await returns the first settled (non-loading) result of a stream.
// Cancel the stream's context afterwards to release it.
func Await[T any](ctx context.Context, results <-chan Result[T]) Result[T] {
	var last Result[T]
	for {
		select {
		case <-ctx.Done():
			return Failure(ctx.Err(), last.Data)
		case res, ok := <-results:
			if !ok {
				if last.Status == StatusLoading {
					return Failure(ErrClosed, last.Data)
				}
				return last
			}
			last = res
			if res.Status != StatusLoading {
				return res
			}
		}
	}
}

func send[T any](ctx context.Context, out chan<- Result[T], res Result[T]) bool {
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

// drain discards a pending change signal
func drain(changes <-chan struct{}) {
	if changes == nil {
		return
	}
	select {
	case <-changes:
	default:
	}
}
