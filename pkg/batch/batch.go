// Package batch runs one task per work item and reports aggregate progress.
package batch

import (
	"context"

	"github.com/dtnitsch/whatif/models"
	"golang.org/x/sync/errgroup"
)

// Run calls fn once per item with at most limit calls in flight (limit <= 0
// means no bound). The returned channel receives one Progress per processed
// item, Completed counting 1..len(items) whatever order items finish in, and
// closes after the last one. A failing item still counts as processed.
//
// If ctx is cancelled, items not yet started are skipped and the channel
// closes early.
func Run[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) <-chan models.Progress {
	out := make(chan models.Progress)
	total := len(items)

	done := make(chan error, total)
	go func() {
		g := new(errgroup.Group)
		if limit > 0 {
			g.SetLimit(limit)
		}
		for _, item := range items {
			if ctx.Err() != nil {
				break
			}
			item := item
			g.Go(func() error {
				done <- fn(ctx, item)
				return nil
			})
		}
		_ = g.Wait()
		close(done)
	}()

	go func() {
		defer close(out)
		p := models.Progress{Total: total}
		for err := range done {
			p.Completed++
			if err != nil {
				p.Failed++
			}
			select {
			case out <- p:
			case <-ctx.Done():
				// nobody may be listening anymore; drain so workers can finish
				for range done {
				}
				return
			}
		}
	}()

	return out
}

// Collect drains a progress stream and returns its last event. A stream that
// closes without events yields a zero Progress.
func Collect(progress <-chan models.Progress, each func(models.Progress)) models.Progress {
	var last models.Progress
	for p := range progress {
		if each != nil {
			each(p)
		}
		last = p
	}
	return last
}
