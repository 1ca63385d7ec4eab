package simulation

// concurrent.go: worker pool para las operaciones batch.
//
// Work is cut into chunks of fixed size. Each chunk carries its own seed, so
// the outcome of a chunk does not depend on which worker runs it, and results
// are collected back into chunk order before any reduction.

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/exp/rand"
)

// chunk is one unit of work: items [start, start+size) generated from seed.
type chunk struct {
	index int
	start int
	size  int
	seed  uint64
}

// splitChunks cuts total items into chunks of at most size items.
func splitChunks(total, size int, seeds []uint64) []chunk {
	chunks := make([]chunk, 0, len(seeds))
	for i, start := 0, 0; start < total; i, start = i+1, start+size {
		n := size
		if start+n > total {
			n = total - start
		}
		chunks = append(chunks, chunk{index: i, start: start, size: n, seed: seeds[i]})
	}
	return chunks
}

func chunkCount(total, size int) int {
	return (total + size - 1) / size
}

// runChunks executes fn for every chunk on a bounded pool of workers and
// returns the results indexed by chunk. Cancelling ctx stops workers from
// picking up new chunks; the context error is returned.
func runChunks[T any](ctx context.Context, chunks []chunk, workers int, fn func(c chunk, rng *rand.Rand) T) ([]T, error) {
	if workers > len(chunks) {
		workers = len(chunks)
	}

	type result struct {
		index int
		value T
	}

	workCh := make(chan chunk, len(chunks))
	resultCh := make(chan result, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range workCh {
				if ctx.Err() != nil {
					continue
				}
				resultCh <- result{index: c.index, value: fn(c, newRand(c.seed))}
			}
		}()
	}

	for _, c := range chunks {
		workCh <- c
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make([]T, len(chunks))
	done := 0
	for r := range resultCh {
		out[r.index] = r.value
		done++
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("chunked simulation complete",
		"chunks", len(chunks),
		"completed", done,
		"workers", workers,
	)
	return out, nil
}
