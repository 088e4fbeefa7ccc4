package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/resource"
)

// SyncResult is the outcome of refreshing one list
type SyncResult struct {
	MediaType domain.MediaType
	Category  domain.Category
	Count     int
	Err       error
}

// SyncAll refreshes the first page of every category of the given media types
// concurrently. Failures are reported per list and never abort the others.
// No media types means both.
func (s *Service) SyncAll(ctx context.Context, types ...domain.MediaType) []SyncResult {
	return s.SyncAllWithProgress(ctx, nil, types...)
}

// SyncAllWithProgress is SyncAll reporting each finished list to progress
func (s *Service) SyncAllWithProgress(ctx context.Context, progress domain.ProgressFunc, types ...domain.MediaType) []SyncResult {
	if len(types) == 0 {
		types = []domain.MediaType{domain.MediaTypeMovie, domain.MediaTypeTV}
	}

	var jobs []SyncResult
	for _, mt := range types {
		for _, cat := range domain.Categories(mt) {
			jobs = append(jobs, SyncResult{MediaType: mt, Category: cat})
		}
	}

	s.logger.Info("starting sync", "lists", len(jobs), "workers", s.opts.SyncWorkers)
	start := time.Now()

	results := make([]SyncResult, len(jobs))
	var mu sync.Mutex
	done := 0

	p := pool.New().WithMaxGoroutines(s.opts.SyncWorkers)
	for i, job := range jobs {
		p.Go(func() {
			res := s.syncOne(ctx, job.MediaType, job.Category)

			mu.Lock()
			defer mu.Unlock()
			results[i] = res
			done++
			if progress != nil {
				progress(done, len(jobs))
			}
		})
	}
	p.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("sync complete", "lists", len(results), "failed", failed, "duration", time.Since(start))
	return results
}

func (s *Service) syncOne(ctx context.Context, mt domain.MediaType, cat domain.Category) SyncResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res := resource.Await(ctx, s.feed(mt, cat, true).Stream(ctx))
	if res.Err != nil {
		s.logger.Warn("failed to sync list", "error", res.Err, "mediaType", mt, "category", cat)
	}
	return SyncResult{MediaType: mt, Category: cat, Count: len(res.Data), Err: res.Err}
}
