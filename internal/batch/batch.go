// Package batch processes many independent snapshot files concurrently.
// Every file gets its own field; nothing is shared between calls.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/windloads/segpress/internal/log"
	"golang.org/x/sync/errgroup"
)

// Run calls fn on every path with at most workers calls in flight, one per
// CPU when workers is 0. The results keep the order of paths. The first
// failure cancels the context passed to the calls not yet finished and is
// returned.
func Run[T any](ctx context.Context, paths []string, workers int, fn func(ctx context.Context, path string) (T, error)) ([]T, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	start := time.Now()
	results := make([]T, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			v, err := fn(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = v
			log.Debugw("processed", "path", path, "elapsed", time.Since(t))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Infow("batch done", "files", len(paths), "workers", workers, "elapsed", time.Since(start))
	return results, nil
}
