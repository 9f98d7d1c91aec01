package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/s0up4200/openstates/collection"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.batchSize = size
	}
}

// ConcurrentEvaluator evaluates filters over records, splitting large
// inputs into chunks that run on a worker pool
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.workerCount <= 0 {
		e.workerCount = 1
	}
	if e.batchSize <= 0 {
		e.batchSize = 1
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate returns the records matched by filter, in input order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, records []*collection.Collection) ([]*collection.Collection, error) {
	if len(records) == 0 {
		return []*collection.Collection{}, nil
	}

	if len(records) < e.batchSize {
		return e.evaluateSequential(filter, records), nil
	}

	return e.evaluateConcurrent(ctx, filter, records)
}

func (e *ConcurrentEvaluator) evaluateSequential(filter CompiledFilter, records []*collection.Collection) []*collection.Collection {
	matches := make([]*collection.Collection, 0, len(records)/4)
	for _, record := range records {
		if filter.Evaluate(record) {
			matches = append(matches, record)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, records []*collection.Collection) ([]*collection.Collection, error) {
	chunkSize := max(len(records)/e.workerCount, e.batchSize)
	chunks := (len(records) + chunkSize - 1) / chunkSize

	// each chunk writes only its own slot
	results := make([][]*collection.Collection, chunks)
	var wg sync.WaitGroup

	for index := 0; index < chunks; index++ {
		start := index * chunkSize
		chunk := records[start:min(start+chunkSize, len(records))]

		wg.Add(1)
		err := e.pool.Submit(ctx, func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}
			results[index] = e.evaluateSequential(filter, chunk)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, matches := range results {
		total += len(matches)
	}

	all := make([]*collection.Collection, 0, total)
	for _, matches := range results {
		all = append(all, matches...)
	}

	return all, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
