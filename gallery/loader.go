package gallery

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"golang.org/x/sync/errgroup"
)

// Loader fetches a batch of resources with at most Concurrency loads in
// flight. Admission is in manifest order.
type Loader struct {
	Fetcher     Fetcher
	Concurrency int
	// OnProgress, if set, is called after every completed load from the
	// loading goroutine.
	OnProgress func(done, total int)
}

// Load returns one slot per id, in the same order. A slot is nil when its
// resource failed to load; that failure is logged and never stops siblings.
// Load returns once every admitted load has completed. Cancelling ctx stops
// further admissions and leaves the remaining slots nil.
func (l *Loader) Load(ctx context.Context, ids []string) []*Resource {
	results := make([]*Resource, len(ids))
	if len(ids) == 0 {
		return results
	}

	limit := l.Concurrency
	if limit < 1 {
		limit = 1
	}

	var (
		mu   sync.Mutex
		done int
	)
	completed := func() {
		mu.Lock()
		done++
		n := done
		mu.Unlock()
		if l.OnProgress != nil {
			l.OnProgress(n, len(ids))
		}
	}

	// Workers never return an error, so the group context only carries
	// the caller's cancellation.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := l.Fetcher.Fetch(gctx, id)
			if err != nil {
				fyne.LogError("could not load gallery image "+id, err)
				res = nil
			}
			results[i] = res
			completed()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
