package driver

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of checking one file in a batch.
type FileResult struct {
	Path     string
	Report   *Report // nil when Err is set
	Err      error
	WorkerID int // Slot the file was checked on; -1 if it never started
}

// PoolStats summarizes a batch.
type PoolStats struct {
	TotalJobs     int
	CompletedJobs int           // Files that loaded and were checked
	FailedJobs    int           // Files that could not be read or had syntax errors
	TotalTime     time.Duration // Sum of per-file times
	AverageTime   time.Duration
	WorkerCount   int
}

// filePool checks files with at most numWorkers in flight.
type filePool struct {
	d       *Driver
	slots   chan int // Free worker ids
	results []*FileResult

	stats      PoolStats
	statsMutex sync.Mutex
}

// CheckFiles checks paths concurrently, each with its own checker pass.
// Results are in the order of paths. Files not started before ctx is done
// get ctx's error.
func (d *Driver) CheckFiles(ctx context.Context, paths []string) ([]*FileResult, PoolStats) {
	numWorkers := d.opts.Jobs
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}
	p := &filePool{
		d:       d,
		slots:   make(chan int, numWorkers),
		results: make([]*FileResult, len(paths)),
		stats:   PoolStats{TotalJobs: len(paths), WorkerCount: numWorkers},
	}
	for i := 0; i < numWorkers; i++ {
		p.slots <- i
	}

	var g errgroup.Group
	g.SetLimit(max(numWorkers, 1))
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p.check(ctx, i, path)
			return nil
		})
	}
	// Failures are per file, so no job returns an error.
	_ = g.Wait()

	for i, r := range p.results {
		if r == nil {
			p.results[i] = &FileResult{Path: paths[i], Err: ctx.Err(), WorkerID: -1}
		}
	}
	if done := p.stats.CompletedJobs + p.stats.FailedJobs; done > 0 {
		p.stats.AverageTime = p.stats.TotalTime / time.Duration(done)
	}
	d.logger.Debug("batch finished",
		"files", p.stats.TotalJobs,
		"completed", p.stats.CompletedJobs,
		"failed", p.stats.FailedJobs,
		"workers", p.stats.WorkerCount)
	return p.results, p.stats
}

// check runs one file on a free slot. Each index is written by exactly one
// job.
func (p *filePool) check(ctx context.Context, index int, path string) {
	if ctx.Err() != nil {
		return
	}
	id := <-p.slots
	defer func() { p.slots <- id }()

	start := time.Now()
	report, err := p.d.CheckFile(path)
	elapsed := time.Since(start)

	p.statsMutex.Lock()
	if err == nil {
		p.stats.CompletedJobs++
	} else {
		p.stats.FailedJobs++
	}
	p.stats.TotalTime += elapsed
	p.statsMutex.Unlock()

	p.results[index] = &FileResult{Path: path, Report: report, Err: err, WorkerID: id}
}
