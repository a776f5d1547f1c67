package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/sightline/oerror"
)

var workerQueue = make(chan func(), runtime.NumCPU())

func init() {
	for i := 0; i < runtime.NumCPU(); i++ {
		go worker()
	}
}

func worker() {
	for f := range workerQueue {
		run(f)
	}
}

// run calls f, reporting a panic to sentry instead of taking the worker down with it.
func run(f func()) {
	defer func() {
		if err := recover(); err != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(oerror.New("worker job crashed: %v", err))
			hub.Flush(time.Second * 5)
		}
	}()
	f()
}

// Submit queues f to be run by one of the workers. To be used by a function that may be CPU intensive.
func Submit(f func()) {
	workerQueue <- f
}

// Map runs fn for every element of in on the workers and returns the results in the order of in.
// The result of an element whose fn panicked is the zero value.
func Map[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, len(in))
	var wg sync.WaitGroup
	wg.Add(len(in))
	for i, v := range in {
		Submit(func() {
			defer wg.Done()
			out[i] = fn(v)
		})
	}
	wg.Wait()
	return out
}
